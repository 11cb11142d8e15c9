// Package chart stores the events of a song, one ordered sequence per
// difficulty.
//
// Events are kept in insertion order and sorted by position lazily, the
// first time they are read after a mutation. Counts are maintained
// incrementally as events are added, never by rescanning.
//
// A Chart is owned by the host. A Transport borrows it for the duration of
// a render session. Chart is not safe for concurrent use.
package chart

import (
	"sort"

	"github.com/roach88/beatline/internal/ir"
)

// Difficulty names one event sequence of a chart.
type Difficulty string

// Chart holds the starting bpm and the per-difficulty event sequences.
type Chart struct {
	Title  string
	Artist string
	BPM    float64

	order  []Difficulty
	sheets map[Difficulty]*sheet
}

// sheet is the event sequence of one difficulty.
type sheet struct {
	events   []ir.Event
	sorted   bool
	count    int
	playable int
	level    int
}

// New creates an empty chart starting at bpm.
func New(bpm float64) *Chart {
	return &Chart{
		BPM:    bpm,
		sheets: make(map[Difficulty]*sheet),
	}
}

func (c *Chart) sheet(d Difficulty) *sheet {
	s, ok := c.sheets[d]
	if !ok {
		s = &sheet{sorted: true}
		c.sheets[d] = s
		c.order = append(c.order, d)
	}
	return s
}

// AddEvents appends events to a difficulty and invalidates its sort order.
// Total and playable counts grow by what each event reports about itself.
func (c *Chart) AddEvents(d Difficulty, events ...ir.Event) {
	s := c.sheet(d)
	for _, ev := range events {
		s.events = append(s.events, ev)
		s.count++
		if ev.Playable() {
			s.playable++
		}
	}
	if len(events) > 0 {
		s.sorted = false
	}
}

// Events returns a snapshot of a difficulty's events sorted ascending by
// position. Ties keep insertion order. The sort runs at most once per
// mutation; repeated calls reuse it.
func (c *Chart) Events(d Difficulty) []ir.Event {
	s, ok := c.sheets[d]
	if !ok {
		return []ir.Event{}
	}
	if !s.sorted {
		sort.SliceStable(s.events, func(i, j int) bool {
			return s.events[i].Position() < s.events[j].Position()
		})
		s.sorted = true
	}
	out := make([]ir.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Tempos returns the tempo events of a difficulty in position order.
func (c *Chart) Tempos(d Difficulty) []ir.Tempo {
	var tempos []ir.Tempo
	for _, ev := range c.Events(d) {
		if t, ok := ev.(ir.Tempo); ok {
			tempos = append(tempos, t)
		}
	}
	return tempos
}

// EventCount returns the number of events in a difficulty, 0 if unknown.
func (c *Chart) EventCount(d Difficulty) int {
	if s, ok := c.sheets[d]; ok {
		return s.count
	}
	return 0
}

// PlayableEventCount returns the number of playable events in a
// difficulty, 0 if unknown.
func (c *Chart) PlayableEventCount(d Difficulty) int {
	if s, ok := c.sheets[d]; ok {
		return s.playable
	}
	return 0
}

// SetLevel records the display level of a difficulty.
func (c *Chart) SetLevel(d Difficulty, level int) {
	c.sheet(d).level = level
}

// Level returns the display level of a difficulty, 0 if unknown.
func (c *Chart) Level(d Difficulty) int {
	if s, ok := c.sheets[d]; ok {
		return s.level
	}
	return 0
}

// Difficulties lists difficulty keys in the order they were first used.
func (c *Chart) Difficulties() []Difficulty {
	out := make([]Difficulty, len(c.order))
	copy(out, c.order)
	return out
}

// Has reports whether the chart defines a difficulty.
func (c *Chart) Has(d Difficulty) bool {
	_, ok := c.sheets[d]
	return ok
}
