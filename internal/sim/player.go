// Package sim plays charts without a human: an autoplay Host that presses
// each note at a scripted offset, and loops that drive a Transport from a
// virtual or wall clock until the render completes.
package sim

import (
	"fmt"

	"github.com/roach88/beatline/internal/engine"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/judgment"
	"github.com/roach88/beatline/internal/profile"
)

// Player is an autoplay engine.Host over the built-in profile.
//
// Offsets are input errors in seconds, positive meaning late, assigned to
// notes in the order they reach the front buffer and cycled. With no
// offsets every note is pressed on time. Notes that slip past every window
// are judged Miss; the first such judgment that fails is kept and returned
// by Press and Err.
type Player struct {
	transport *engine.Transport[profile.Accuracy]
	offsets   []float64
	assigned  map[int64]float64

	handles      int
	instantiated []int64
	executed     []int64
	exceeded     []int64
	records      []engine.Record[profile.Accuracy]
	completed    bool
	completedSeq int64
	err          error
}

// NewPlayer creates a player with the given input offsets.
func NewPlayer(offsets ...float64) *Player {
	return &Player{
		offsets:  offsets,
		assigned: make(map[int64]float64),
	}
}

// Attach binds the player to the transport it hosts.
func (p *Player) Attach(t *engine.Transport[profile.Accuracy]) {
	p.transport = t
}

// Reset forgets everything recorded for the previous session.
func (p *Player) Reset() {
	p.assigned = make(map[int64]float64)
	p.handles = 0
	p.instantiated = nil
	p.executed = nil
	p.exceeded = nil
	p.records = nil
	p.completed = false
	p.completedSeq = 0
	p.err = nil
}

func (p *Player) Instantiate(ev ir.Event, _ ir.RenderState) any {
	p.handles++
	p.instantiated = append(p.instantiated, ev.ID())
	return p.handles
}

func (p *Player) Execute(ev ir.Event, _ ir.RenderState) {
	p.executed = append(p.executed, ev.ID())
}

func (p *Player) Judged(rec engine.Record[profile.Accuracy]) {
	p.records = append(p.records, rec)
}

func (p *Player) ProximityExceeded(_ int64, ev ir.Event) {
	p.exceeded = append(p.exceeded, ev.ID())
	if p.transport != nil {
		if _, err := p.transport.JudgeAs(ev, profile.Miss, 1); err != nil && p.err == nil {
			p.err = fmt.Errorf("failed to judge event %d as miss: %w", ev.ID(), err)
		}
	}
}

func (p *Player) Completed(seq int64) {
	p.completed = true
	p.completedSeq = seq
}

// Press judges every front note whose scripted press time has arrived and
// returns how many were committed.
func (p *Player) Press() (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	if p.transport == nil {
		return 0, nil
	}
	state := p.transport.RenderState()

	pressed := 0
	for _, s := range engine.FrontEventsOf[profile.Lane](p.transport) {
		ev := s.Event()
		if judgment.Latency(ev, state) > -p.offsetFor(ev.ID()) {
			continue
		}
		ok, err := p.transport.Judge(ev, 1)
		if err != nil {
			return pressed, err
		}
		if ok {
			pressed++
		}
	}
	return pressed, nil
}

func (p *Player) offsetFor(id int64) float64 {
	if off, ok := p.assigned[id]; ok {
		return off
	}
	var off float64
	if len(p.offsets) > 0 {
		off = p.offsets[len(p.assigned)%len(p.offsets)]
	}
	p.assigned[id] = off
	return off
}

// Instantiated returns the ids handed to Instantiate, in call order.
func (p *Player) Instantiated() []int64 { return append([]int64(nil), p.instantiated...) }

// Executed returns the ids handed to Execute, in call order.
func (p *Player) Executed() []int64 { return append([]int64(nil), p.executed...) }

// Exceeded returns the ids reported as proximity-exceeded.
func (p *Player) Exceeded() []int64 { return append([]int64(nil), p.exceeded...) }

// Records returns every judgment committed while hosting.
func (p *Player) Records() []engine.Record[profile.Accuracy] {
	return append([]engine.Record[profile.Accuracy](nil), p.records...)
}

// Done reports whether the transport signalled completion.
func (p *Player) Done() bool { return p.completed }

// Err returns the first miss judgment that failed, if any.
func (p *Player) Err() error { return p.err }

// CompletionSeq returns the seq of the completion notification, or 0.
func (p *Player) CompletionSeq() int64 { return p.completedSeq }
