package chartio

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/profile"
)

// percussionChannel is General MIDI channel 10, zero-based.
const percussionChannel = 9

// defaultMIDIBPM is the tempo a Standard MIDI File has until its first
// tempo meta event.
const defaultMIDIBPM = 120.0

// SMFOptions controls Standard MIDI File import.
type SMFOptions struct {
	Title      string
	Artist     string
	Difficulty chart.Difficulty
	Level      int
}

func (o SMFOptions) difficulty() chart.Difficulty {
	if o.Difficulty == "" {
		return "normal"
	}
	return o.Difficulty
}

type midiEvent struct {
	ticks int64
	track int
	index int
	tempo bool
	bpm   float64
	key   uint8
	ch    uint8
}

// ImportSMF converts a Standard MIDI File into a single-difficulty chart.
//
// Positions are measured in 4/4 measures of metric ticks. Every note-on
// with a non-zero velocity becomes a note on lane key%8+1; percussion
// channel notes become background notes. Tempo meta events become tempo
// events, except one at tick 0 which sets the chart bpm.
func ImportSMF(r io.Reader, opts SMFOptions) (*chart.Chart, error) {
	sm, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI: %w", err)
	}
	ticks, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, fmt.Errorf("unsupported MIDI time format %v: only metric ticks are supported", sm.TimeFormat)
	}
	measure := 4 * float64(ticks)

	var events []midiEvent
	for ti, track := range sm.Tracks {
		var abs int64
		for i, ev := range track {
			abs += int64(ev.Delta)

			var bpm float64
			var ch, key, vel uint8
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				events = append(events, midiEvent{ticks: abs, track: ti, index: i, tempo: true, bpm: bpm})
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				events = append(events, midiEvent{ticks: abs, track: ti, index: i, key: key, ch: ch})
			}
		}
	}

	// Tempos sort before notes at the same tick.
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.ticks != b.ticks {
			return a.ticks < b.ticks
		}
		if a.tempo != b.tempo {
			return a.tempo
		}
		if a.track != b.track {
			return a.track < b.track
		}
		return a.index < b.index
	})

	bpm := defaultMIDIBPM
	var out []ir.Event
	var id int64
	for _, ev := range events {
		if ev.tempo && ev.ticks == 0 {
			bpm = ev.bpm
			continue
		}
		id++
		position := float64(ev.ticks) / measure
		if ev.tempo {
			out = append(out, ir.NewTempo(id, position, ev.bpm))
			continue
		}
		out = append(out, laneNote(id, position, ev.ch, ev.key))
	}

	c := chart.New(bpm)
	c.Title = norm.NFC.String(opts.Title)
	c.Artist = norm.NFC.String(opts.Artist)
	d := opts.difficulty()
	c.SetLevel(d, opts.Level)
	c.AddEvents(d, out...)
	return c, nil
}

func laneNote(id int64, position float64, ch, key uint8) ir.Note[profile.Lane] {
	if ch == percussionChannel {
		return ir.NewNote(id, position, profile.Background).AsBackground()
	}
	return ir.NewNote(id, position, profile.Lane(int(key)%profile.Lanes+1))
}
