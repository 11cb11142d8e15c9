package engine

import (
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/tracker"
)

// Tick advances the session by one step. It is a no-op unless rendering,
// not paused, and ready.
func (t *Transport[A]) Tick() {
	if t.status != StatusRendering || !t.ready {
		return
	}

	state := t.RenderState()
	t.judgment.Refresh(state)

	outstanding := 0
	for _, ev := range t.events {
		s := t.tracker.GetOrCreate(ev)
		if s.Completed() {
			continue
		}
		t.visit(s, state)
		if !s.Completed() {
			outstanding++
		}
	}

	if outstanding == 0 {
		t.complete()
	}
}

func (t *Transport[A]) visit(s *tracker.EventState[A], state ir.RenderState) {
	ev := s.Event()
	t.front.Update(s)

	latency := ev.Position() - state.Position
	proximity := t.config.InstantiationProximity

	switch {
	case ev.Instantiable() && !s.Instantiated() && (proximity == 0 || latency <= proximity):
		s.MarkInstantiated(t.host.Instantiate(ev, state))
	case !ev.Playable() && latency <= 0:
		t.execute(s, state)
	}

	if ev.Playable() && !s.Completed() && t.judgment.CheckProximityExceeded(ev) {
		t.host.ProximityExceeded(t.seq.Next(), ev)
	}
}

func (t *Transport[A]) execute(s *tracker.EventState[A], state ir.RenderState) {
	tempo, ok := s.Event().(ir.Tempo)
	if !ok {
		t.host.Execute(s.Event(), state)
		s.Complete()
		return
	}

	if s == t.tempoState || t.stopPending() {
		return
	}
	t.applyTempo(tempo, s)
	t.host.Execute(tempo, state)
}

func (t *Transport[A]) complete() {
	t.status = StatusCompleted
	seq := t.seq.Next()

	snap := t.score.Snapshot()
	t.logger.Info("render completed",
		"session", t.session,
		"seq", seq,
		"score", snap.Score,
		"max_combo", snap.MaxCombo,
		"judged", len(t.records))
	t.host.Completed(seq)
}
