// Package frontbuf tracks, per channel, the earliest unresolved playable
// note: the event an input on that channel should affect.
//
// "Front" means closest to being judged, not most recently seen. A channel
// keeps its entry while that entry is unresolved and strictly earlier than
// any candidate. A channel can therefore stay on a low-position event that
// never completes; Invalidate is the only way to clear it by force.
//
// Completed entries are evicted lazily, when read.
package frontbuf

import (
	"sort"

	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/tracker"
)

// Buffer maps channel identities to their front event state.
// Buffer is not safe for concurrent use.
type Buffer[A comparable] struct {
	fronts map[ir.ChannelID]*tracker.EventState[A]
}

// New creates an empty buffer.
func New[A comparable]() *Buffer[A] {
	return &Buffer[A]{fronts: make(map[ir.ChannelID]*tracker.EventState[A])}
}

// Update offers a state as its channel's front. Completed states and
// events that are not playable notes are ignored.
func (b *Buffer[A]) Update(s *tracker.EventState[A]) {
	if s == nil || s.Completed() {
		return
	}
	ev, ok := s.Event().(ir.ChannelEvent)
	if !ok || !ev.Playable() {
		return
	}

	ch := ev.ChannelID()
	if cur, ok := b.fronts[ch]; ok && cur != nil && !cur.Completed() &&
		cur.Event().Position() < ev.Position() {
		return
	}
	b.fronts[ch] = s
}

// Fronts evicts completed entries and returns the remaining front states
// sorted ascending by event position. Ties order by channel.
func (b *Buffer[A]) Fronts() []*tracker.EventState[A] {
	out := make([]*tracker.EventState[A], 0, len(b.fronts))
	for ch, s := range b.fronts {
		if s == nil || s.Completed() {
			delete(b.fronts, ch)
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Event().Position(), out[j].Event().Position()
		if pi != pj {
			return pi < pj
		}
		return channelOf(out[i]) < channelOf(out[j])
	})
	return out
}

// FrontsOf returns the front states whose events are Note[C], in the same
// order as Fronts.
func FrontsOf[C ir.Channel, A comparable](b *Buffer[A]) []*tracker.EventState[A] {
	all := b.Fronts()
	out := make([]*tracker.EventState[A], 0, len(all))
	for _, s := range all {
		if _, ok := s.Event().(ir.Note[C]); ok {
			out = append(out, s)
		}
	}
	return out
}

// FrontFor returns the front state of one channel. A completed entry is
// evicted and reported as absent.
func (b *Buffer[A]) FrontFor(ch ir.ChannelID) (*tracker.EventState[A], bool) {
	s, ok := b.fronts[ch]
	if !ok {
		return nil, false
	}
	if s == nil || s.Completed() {
		delete(b.fronts, ch)
		return nil, false
	}
	return s, true
}

// Invalidate clears a channel's entry so the next Update repopulates it.
func (b *Buffer[A]) Invalidate(ch ir.ChannelID) {
	delete(b.fronts, ch)
}

// Reset clears every channel.
func (b *Buffer[A]) Reset() {
	b.fronts = make(map[ir.ChannelID]*tracker.EventState[A])
}

func channelOf[A comparable](s *tracker.EventState[A]) ir.ChannelID {
	return s.Event().(ir.ChannelEvent).ChannelID()
}
