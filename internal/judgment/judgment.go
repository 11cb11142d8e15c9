// Package judgment classifies the timing distance between an event and the
// current render position into a discrete accuracy grade.
//
// Evaluators are tried in registration order and the first match wins. If
// none match, an event that is already due (distance <= 0) grades as the
// lowest accuracy and one still ahead grades as the default accuracy,
// meaning "not yet in range". Windows must be registered without gaps
// between adjacent bands or events fall through to those fallbacks; the
// engine does not check this.
package judgment

import (
	"math"

	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/timing"
)

// Match is the outcome of one evaluator.
type Match struct {
	Matched bool
	// Latency is the event's distance from now in seconds.
	Latency float64
}

// Evaluator decides whether an event falls inside one accuracy band.
type Evaluator func(ev ir.Event, state ir.RenderState) Match

// Latency returns the event's distance from the render position in seconds
// at the render tempo. Positive means the event is still ahead.
func Latency(ev ir.Event, state ir.RenderState) float64 {
	return timing.PositionToSeconds(ev.Position()-state.Position, state.Tempo.BPM())
}

// Window returns an evaluator matching events within ±seconds of now.
func Window(seconds float64) Evaluator {
	return func(ev ir.Event, state ir.RenderState) Match {
		latency := Latency(ev, state)
		return Match{Matched: math.Abs(latency) <= seconds, Latency: latency}
	}
}

type rule[A comparable] struct {
	accuracy A
	eval     Evaluator
}

// Judgment is an ordered rule set over accuracy type A.
// Judgment is not safe for concurrent use.
type Judgment[A comparable] struct {
	highest A
	lowest  A
	def     A
	rules   []rule[A]
	state   ir.RenderState
}

// New creates a judgment with no evaluators. def is the reserved "no
// judgment" accuracy and can never have an evaluator.
func New[A comparable](highest, lowest, def A) *Judgment[A] {
	return &Judgment[A]{highest: highest, lowest: lowest, def: def}
}

// Highest returns the best accuracy.
func (j *Judgment[A]) Highest() A { return j.highest }

// Lowest returns the worst accuracy, given to events that are due but
// matched no evaluator.
func (j *Judgment[A]) Lowest() A { return j.lowest }

// Default returns the reserved "not in range" accuracy.
func (j *Judgment[A]) Default() A { return j.def }

// Register adds a symmetric window of ±seconds for accuracy.
func (j *Judgment[A]) Register(accuracy A, seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) {
		return ir.NewConfigError(ir.ErrCodeInvalidWindow,
			"window for %v must be non-negative, got %v", accuracy, seconds)
	}
	return j.RegisterFunc(accuracy, Window(seconds))
}

// RegisterFunc adds a custom evaluator for accuracy. Registering an
// accuracy again replaces its evaluator and keeps its original place in
// the order.
func (j *Judgment[A]) RegisterFunc(accuracy A, eval Evaluator) error {
	if accuracy == j.def {
		return ir.NewConfigError(ir.ErrCodeReservedAccuracy,
			"the default accuracy %v cannot have an evaluator", accuracy)
	}
	if eval == nil {
		return ir.NewConfigError(ir.ErrCodeNilConfigurator,
			"evaluator for %v is nil", accuracy)
	}
	for i := range j.rules {
		if j.rules[i].accuracy == accuracy {
			j.rules[i].eval = eval
			return nil
		}
	}
	j.rules = append(j.rules, rule[A]{accuracy: accuracy, eval: eval})
	return nil
}

// Accuracies returns the registered accuracies in evaluation order.
func (j *Judgment[A]) Accuracies() []A {
	out := make([]A, len(j.rules))
	for i, r := range j.rules {
		out[i] = r.accuracy
	}
	return out
}

// Refresh caches the render snapshot used by Evaluate and the proximity
// checks.
func (j *Judgment[A]) Refresh(state ir.RenderState) {
	j.state = state
}

// State returns the cached render snapshot.
func (j *Judgment[A]) State() ir.RenderState {
	return j.state
}

// Evaluate classifies ev against the cached snapshot.
func (j *Judgment[A]) Evaluate(ev ir.Event) ir.Result[A] {
	return j.EvaluateAt(ev, j.state)
}

// EvaluateAt classifies ev against an explicit snapshot.
func (j *Judgment[A]) EvaluateAt(ev ir.Event, state ir.RenderState) ir.Result[A] {
	for _, r := range j.rules {
		m := r.eval(ev, state)
		if m.Matched {
			return ir.Result[A]{Accuracy: r.accuracy, Position: state.Position, Latency: m.Latency}
		}
	}

	accuracy := j.def
	if ev.Position()-state.Position <= 0 {
		accuracy = j.lowest
	}
	return ir.Result[A]{Accuracy: accuracy, Position: state.Position, Latency: Latency(ev, state)}
}

// CheckProximityExceeded reports whether ev can no longer be judged better
// than the lowest accuracy.
func (j *Judgment[A]) CheckProximityExceeded(ev ir.Event) bool {
	return j.Evaluate(ev).Accuracy == j.lowest
}

// CheckProximity reports whether ev is inside some accuracy window right
// now.
func (j *Judgment[A]) CheckProximity(ev ir.Event) bool {
	a := j.Evaluate(ev).Accuracy
	return a != j.def && a != j.lowest
}
