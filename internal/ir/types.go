package ir

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// ChannelID is the 32-bit identity every note channel reduces to.
// The front buffer and all channel-keyed lookups use it.
type ChannelID int32

// Channel is any integer type a host uses to enumerate note channels.
// The conversion to ChannelID is total, so no runtime conversion can fail.
type Channel interface {
	constraints.Integer
}

// Identity reduces a host channel value to its ChannelID.
func Identity[C Channel](c C) ChannelID {
	return ChannelID(int32(c))
}

// EventKind distinguishes the event variants.
type EventKind int

const (
	// KindNote is a Note event (playable or background).
	KindNote EventKind = iota + 1
	// KindTempo is a tempo-control event.
	KindTempo
)

func (k EventKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindTempo:
		return "tempo"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is the sealed variant of chart content: Note[C] or Tempo.
type Event interface {
	ID() int64
	Position() float64
	Instantiable() bool
	Playable() bool
	Kind() EventKind

	// sealed restricts implementers to this package.
	sealed()
}

// ChannelEvent is an Event that belongs to a channel. Every Note[C]
// satisfies it regardless of C.
type ChannelEvent interface {
	Event
	ChannelID() ChannelID
}

// Note is a chart note on a host-defined channel.
//
// Notes are always instantiable. They are playable unless marked as
// background (a reserved channel for samples that play on their own).
type Note[C Channel] struct {
	id         int64
	position   float64
	channel    C
	sample     string
	background bool
}

// NewNote creates a playable note.
func NewNote[C Channel](id int64, position float64, channel C) Note[C] {
	return Note[C]{id: id, position: position, channel: channel}
}

// WithSample returns a copy of the note carrying a sample id.
func (n Note[C]) WithSample(sampleID string) Note[C] {
	n.sample = sampleID
	return n
}

// AsBackground returns a copy of the note mapped to the background channel.
// Background notes are instantiated and executed but never judged.
func (n Note[C]) AsBackground() Note[C] {
	n.background = true
	return n
}

func (n Note[C]) ID() int64 { return n.id }
func (n Note[C]) Position() float64 { return n.position }
func (n Note[C]) Instantiable() bool { return true }
func (n Note[C]) Playable() bool { return !n.background }
func (n Note[C]) Kind() EventKind { return KindNote }
func (n Note[C]) Channel() C { return n.channel }
func (n Note[C]) Background() bool { return n.background }
func (n Note[C]) ChannelID() ChannelID { return Identity(n.channel) }
func (n Note[C]) sealed() {}

// SampleID returns the note's sample id and whether one is set.
func (n Note[C]) SampleID() (string, bool) {
	return n.sample, n.sample != ""
}

// InitialTempoID is the id carried by the tempo a Transport starts a render
// with. It never appears in a chart.
const InitialTempoID int64 = -1

// Tempo is a tempo-control event.
//
//   - bpm 0 means "no change, inherit the current bpm"
//   - skip jumps the position forward by that many measures
//   - stop holds the position for that many measures
type Tempo struct {
	id       int64
	position float64
	bpm      float64
	skip     float64
	stop     float64
}

// NewTempo creates a tempo event with no skip or stop.
func NewTempo(id int64, position, bpm float64) Tempo {
	return Tempo{id: id, position: position, bpm: bpm}
}

// InitialTempo is the tempo in effect before any chart tempo event applies.
func InitialTempo(bpm float64) Tempo {
	return Tempo{id: InitialTempoID, bpm: bpm}
}

// WithSkip returns a copy with the given skip, in measures.
func (t Tempo) WithSkip(skip float64) Tempo {
	t.skip = skip
	return t
}

// WithStop returns a copy with the given stop, in measures.
func (t Tempo) WithStop(stop float64) Tempo {
	t.stop = stop
	return t
}

// Inherit returns a copy whose bpm is replaced by current when the tempo
// does not set one.
func (t Tempo) Inherit(current float64) Tempo {
	if t.bpm <= 0 {
		t.bpm = current
	}
	return t
}

func (t Tempo) ID() int64 { return t.id }
func (t Tempo) Position() float64 { return t.position }
func (t Tempo) Instantiable() bool { return false }
func (t Tempo) Playable() bool { return false }
func (t Tempo) Kind() EventKind { return KindTempo }
func (t Tempo) BPM() float64 { return t.bpm }
func (t Tempo) Skip() float64 { return t.skip }
func (t Tempo) Stop() float64 { return t.stop }
func (t Tempo) sealed() {}

// RenderState is the snapshot of "now" captured once per tick. It is a
// value, so readers holding one are unaffected by later tempo changes.
type RenderState struct {
	Position float64
	Tempo    Tempo
}

// Result is the outcome of judging one event.
type Result[A comparable] struct {
	Accuracy A
	// Position is the render position the judgment was made at.
	Position float64
	// Latency is the event's distance from Position in seconds.
	// Positive means the event was still ahead.
	Latency  float64
}
