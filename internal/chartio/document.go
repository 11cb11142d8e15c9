package chartio

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/profile"
)

// Document is the serialized form of a chart.
type Document struct {
	Title        string           `yaml:"title" json:"title"`
	Artist       string           `yaml:"artist,omitempty" json:"artist,omitempty"`
	BPM          float64          `yaml:"bpm" json:"bpm"`
	Difficulties map[string]Sheet `yaml:"difficulties" json:"difficulties"`
}

// Sheet is the serialized event sequence of one difficulty.
type Sheet struct {
	Level  int     `yaml:"level,omitempty" json:"level,omitempty"`
	Notes  []Note  `yaml:"notes,omitempty" json:"notes,omitempty"`
	Tempos []Tempo `yaml:"tempos,omitempty" json:"tempos,omitempty"`
}

// Note is a serialized note. Lane 0 is the background lane.
type Note struct {
	ID       int64   `yaml:"id,omitempty" json:"id,omitempty"`
	Position float64 `yaml:"position" json:"position"`
	Lane     int32   `yaml:"lane" json:"lane"`
	Sample   string  `yaml:"sample,omitempty" json:"sample,omitempty"`
}

// Tempo is a serialized tempo event. BPM 0 keeps the current bpm.
type Tempo struct {
	ID       int64   `yaml:"id,omitempty" json:"id,omitempty"`
	Position float64 `yaml:"position" json:"position"`
	BPM      float64 `yaml:"bpm,omitempty" json:"bpm,omitempty"`
	Skip     float64 `yaml:"skip,omitempty" json:"skip,omitempty"`
	Stop     float64 `yaml:"stop,omitempty" json:"stop,omitempty"`
}

// Build converts a document into a chart, assigning missing ids and
// rejecting invalid values.
func Build(doc Document) (*chart.Chart, error) {
	if !(doc.BPM > 0) || math.IsInf(doc.BPM, 0) {
		return nil, ir.NewConfigError(ir.ErrCodeInvalidBPM, "chart bpm must be positive, got %g", doc.BPM)
	}

	names := make([]string, 0, len(doc.Difficulties))
	for name := range doc.Difficulties {
		names = append(names, name)
	}
	sort.Strings(names)

	ids, err := newIDAllocator(doc, names)
	if err != nil {
		return nil, err
	}

	c := chart.New(doc.BPM)
	c.Title = norm.NFC.String(doc.Title)
	c.Artist = norm.NFC.String(doc.Artist)

	for _, name := range names {
		sheet := doc.Difficulties[name]
		d := chart.Difficulty(norm.NFC.String(name))
		c.SetLevel(d, sheet.Level)

		events := make([]ir.Event, 0, len(sheet.Tempos)+len(sheet.Notes))
		for i, t := range sheet.Tempos {
			ev, err := buildTempo(ids.assign(t.ID), t)
			if err != nil {
				return nil, fmt.Errorf("%s: tempos[%d]: %w", name, i, err)
			}
			events = append(events, ev)
		}
		for i, n := range sheet.Notes {
			ev, err := buildNote(ids.assign(n.ID), n)
			if err != nil {
				return nil, fmt.Errorf("%s: notes[%d]: %w", name, i, err)
			}
			events = append(events, ev)
		}
		c.AddEvents(d, events...)
	}
	return c, nil
}

func buildTempo(id int64, t Tempo) (ir.Event, error) {
	if err := checkPosition(t.Position); err != nil {
		return nil, err
	}
	if t.BPM < 0 || math.IsNaN(t.BPM) || math.IsInf(t.BPM, 0) {
		return nil, fmt.Errorf("bpm must be non-negative, got %g", t.BPM)
	}
	if t.Skip < 0 || math.IsNaN(t.Skip) {
		return nil, fmt.Errorf("skip must be non-negative, got %g", t.Skip)
	}
	if t.Stop < 0 || math.IsNaN(t.Stop) {
		return nil, fmt.Errorf("stop must be non-negative, got %g", t.Stop)
	}
	return ir.NewTempo(id, t.Position, t.BPM).WithSkip(t.Skip).WithStop(t.Stop), nil
}

func buildNote(id int64, n Note) (ir.Event, error) {
	if err := checkPosition(n.Position); err != nil {
		return nil, err
	}
	lane := profile.Lane(n.Lane)
	if !lane.Valid() {
		return nil, fmt.Errorf("lane must be within 0..%d, got %d", profile.Lanes, n.Lane)
	}
	note := ir.NewNote(id, n.Position, lane)
	if n.Sample != "" {
		note = note.WithSample(norm.NFC.String(n.Sample))
	}
	if lane == profile.Background {
		note = note.AsBackground()
	}
	return note, nil
}

func checkPosition(p float64) error {
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Errorf("position must be finite and non-negative, got %g", p)
	}
	return nil
}

// idAllocator hands out explicit ids unchanged and numbers the rest after
// the largest explicit id.
type idAllocator struct {
	next int64
}

func newIDAllocator(doc Document, names []string) (*idAllocator, error) {
	seen := make(map[int64]string)
	var max int64
	claim := func(id int64, where string) error {
		if id < 0 {
			return fmt.Errorf("%s: event id must be non-negative, got %d", where, id)
		}
		if id == 0 {
			return nil
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%s: duplicate event id %d (first used at %s)", where, id, prev)
		}
		seen[id] = where
		if id > max {
			max = id
		}
		return nil
	}

	for _, name := range names {
		sheet := doc.Difficulties[name]
		for i, t := range sheet.Tempos {
			if err := claim(t.ID, fmt.Sprintf("%s: tempos[%d]", name, i)); err != nil {
				return nil, err
			}
		}
		for i, n := range sheet.Notes {
			if err := claim(n.ID, fmt.Sprintf("%s: notes[%d]", name, i)); err != nil {
				return nil, err
			}
		}
	}
	return &idAllocator{next: max + 1}, nil
}

func (a *idAllocator) assign(id int64) int64 {
	if id != 0 {
		return id
	}
	id = a.next
	a.next++
	return id
}

// FromChart converts a chart back into a document. Notes must use the
// profile.Lane channel type.
func FromChart(c *chart.Chart) (Document, error) {
	doc := Document{
		Title:        c.Title,
		Artist:       c.Artist,
		BPM:          c.BPM,
		Difficulties: make(map[string]Sheet),
	}
	for _, d := range c.Difficulties() {
		sheet := Sheet{Level: c.Level(d)}
		for _, ev := range c.Events(d) {
			switch e := ev.(type) {
			case ir.Tempo:
				sheet.Tempos = append(sheet.Tempos, Tempo{
					ID:       e.ID(),
					Position: e.Position(),
					BPM:      e.BPM(),
					Skip:     e.Skip(),
					Stop:     e.Stop(),
				})
			case ir.Note[profile.Lane]:
				n := Note{ID: e.ID(), Position: e.Position(), Lane: int32(e.Channel())}
				if s, ok := e.SampleID(); ok {
					n.Sample = s
				}
				sheet.Notes = append(sheet.Notes, n)
			default:
				return Document{}, fmt.Errorf("%s: event %d: unsupported event type %T", d, ev.ID(), ev)
			}
		}
		doc.Difficulties[string(d)] = sheet
	}
	return doc, nil
}
