package engine

import (
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/judgment"
)

// Judge classifies ev against the current render state and commits the
// result with the given hit count.
//
// Returns false without error when there is no session, the event is not
// playable or already completed, or the classification is the default
// accuracy (not yet in range). A non-positive hit count is a configuration error
// and changes nothing.
func (t *Transport[A]) Judge(ev ir.Event, hits int) (bool, error) {
	if err := t.checkJudge(hits); err != nil {
		return false, err
	}
	if t.status == StatusIdle {
		return false, nil
	}
	result := t.judgment.EvaluateAt(ev, t.RenderState())
	return t.commit(ev, result, hits)
}

// JudgeAs commits an explicit accuracy for ev, bypassing classification.
// The no-op rules of Judge apply.
func (t *Transport[A]) JudgeAs(ev ir.Event, accuracy A, hits int) (bool, error) {
	if err := t.checkJudge(hits); err != nil {
		return false, err
	}
	if t.status == StatusIdle {
		return false, nil
	}
	state := t.RenderState()
	result := ir.Result[A]{
		Accuracy: accuracy,
		Position: state.Position,
		Latency:  judgment.Latency(ev, state),
	}
	return t.commit(ev, result, hits)
}

func (t *Transport[A]) checkJudge(hits int) error {
	if hits <= 0 {
		return ir.NewConfigError(ir.ErrCodeInvalidHits, "hits must be positive, got %d", hits)
	}
	if t.judgment == nil || t.score == nil {
		return ir.NewConfigError(ir.ErrCodeNotConfigured, "judgment and score must be configured before judge")
	}
	return nil
}

func (t *Transport[A]) commit(ev ir.Event, result ir.Result[A], hits int) (bool, error) {
	if !ev.Playable() || result.Accuracy == t.judgment.Default() {
		return false, nil
	}
	s := t.tracker.GetOrCreate(ev)
	if s.Completed() {
		return false, nil
	}

	if err := t.score.Update(result.Accuracy, hits); err != nil {
		return false, err
	}
	s.CompleteWith(result)

	rec := Record[A]{Seq: t.seq.Next(), Event: ev, Result: result, Hits: hits}
	t.records = append(t.records, rec)

	t.logger.Debug("event judged",
		"session", t.session,
		"seq", rec.Seq,
		"event", ev.ID(),
		"accuracy", result.Accuracy,
		"latency", result.Latency)
	t.host.Judged(rec)
	return true, nil
}
