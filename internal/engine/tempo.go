package engine

import (
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/timing"
	"github.com/roach88/beatline/internal/tracker"
)

// raw is the unclamped position at wall time now.
func (t *Transport[A]) raw(now float64) float64 {
	return (now-t.refTime)/240*t.tempo.BPM() + t.refPosition
}

// positionAt applies the stop hold on top of raw. Crossing the end of the
// hold releases the stop, which mutates the reference time.
func (t *Transport[A]) positionAt(now float64) float64 {
	raw := t.raw(now)
	if !t.stopPending() {
		return raw
	}

	hold := t.tempo.Position() + t.tempo.Skip()
	if raw < hold+t.tempo.Stop() {
		return hold
	}
	t.releaseStop()
	return t.raw(now)
}

func (t *Transport[A]) stopPending() bool {
	return t.tempoState != nil && !t.tempoState.Completed() && t.tempo.Stop() > 0
}

func (t *Transport[A]) releaseStop() {
	t.refTime += timing.PositionToSeconds(t.tempo.Stop(), t.tempo.BPM())
	t.tempoState.Complete()
	t.logger.Debug("stop released",
		"session", t.session,
		"tempo", t.tempo.ID(),
		"stop", t.tempo.Stop())
}

// applyTempo replaces the active tempo.
//
// A BPM change re-anchors the reference at the new tempo's position using
// the old BPM, keeping raw continuous at that position. Skip rewinds the
// reference time by skip at the new BPM. A tempo without a stop completes
// at once; one with a stop completes when the hold is released.
func (t *Transport[A]) applyTempo(next ir.Tempo, state *tracker.EventState[A]) {
	prev := t.tempo
	next = next.Inherit(prev.BPM())

	if next.BPM() != prev.BPM() {
		t.refTime += timing.PositionToSeconds(next.Position()-t.refPosition, prev.BPM())
		t.refPosition = next.Position()
	}
	if next.Skip() > 0 {
		t.refTime -= timing.PositionToSeconds(next.Skip(), next.BPM())
	}

	t.tempo = next
	t.tempoState = state
	if next.Stop() == 0 {
		state.Complete()
	}

	t.logger.Debug("tempo applied",
		"session", t.session,
		"tempo", next.ID(),
		"position", next.Position(),
		"bpm", next.BPM(),
		"skip", next.Skip(),
		"stop", next.Stop())
}
