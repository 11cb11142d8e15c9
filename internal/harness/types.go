package harness

import (
	"math"

	"github.com/roach88/beatline/internal/profile"
	"github.com/roach88/beatline/internal/score"
)

// Trace event types.
const (
	TraceInstantiate = "instantiate"
	TraceExecute     = "execute"
	TraceJudged      = "judged"
	TraceExceeded    = "exceeded"
	TraceCompleted   = "completed"
)

// TraceEvent is one host notification observed during a run.
// Which fields are meaningful depends on Type.
type TraceEvent struct {
	Type     string  `json:"type"`
	Seq      int64   `json:"seq,omitempty"`
	Event    int64   `json:"event,omitempty"`
	Kind     string  `json:"kind,omitempty"`
	Accuracy string  `json:"accuracy,omitempty"`
	Hits     int     `json:"hits,omitempty"`
	Position float64 `json:"position,omitempty"`
	Latency  float64 `json:"latency,omitempty"`
}

// canonical returns the fields of the event's type as a map for
// ir.MarshalCanonical.
func (e TraceEvent) canonical() map[string]any {
	m := map[string]any{"type": e.Type}
	switch e.Type {
	case TraceInstantiate:
		m["event"] = e.Event
		m["position"] = round(e.Position)
	case TraceExecute:
		m["event"] = e.Event
		m["kind"] = e.Kind
		m["position"] = round(e.Position)
	case TraceJudged:
		m["seq"] = e.Seq
		m["event"] = e.Event
		m["accuracy"] = e.Accuracy
		m["hits"] = e.Hits
		m["latency"] = round(e.Latency)
	case TraceExceeded:
		m["seq"] = e.Seq
		m["event"] = e.Event
	case TraceCompleted:
		m["seq"] = e.Seq
	}
	return m
}

// round keeps traces stable across float noise in position arithmetic.
func round(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	Session    string `json:"session"`
	Difficulty string `json:"difficulty"`

	// Trace contains every host notification in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation mismatches. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Score     score.Snapshot[profile.Accuracy] `json:"score"`
	Position  float64                          `json:"position"`
	Completed bool                             `json:"completed"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends a notification to the trace.
func (r *Result) addTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
