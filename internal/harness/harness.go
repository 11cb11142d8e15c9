package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/chartio"
	"github.com/roach88/beatline/internal/engine"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/profile"
	"github.com/roach88/beatline/internal/testutil"
)

// positionTolerance absorbs float noise when checking expect.position.
const positionTolerance = 1e-9

// Harness is the scenario execution engine.
// It runs scenarios with a manual clock and a fixed session id.
type Harness struct {
	transport *engine.Transport[profile.Accuracy]
	clock     *testutil.ManualClock
	logger    *slog.Logger
	result    *Result
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the inline chart and load the profile
// 2. Configure a Transport and render the difficulty at clock 0
// 3. Apply steps in order, recording every host notification
// 4. Check expectations against the final state
//
// An error is returned when the scenario cannot be executed at all.
// Expectation mismatches are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	c, err := chartio.Build(scenario.Chart)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart: %w", err)
	}
	prof, err := scenarioProfile(scenario)
	if err != nil {
		return nil, err
	}
	difficulty, err := scenarioDifficulty(scenario, c)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		clock:  testutil.NewManualClock(0),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result: NewResult(),
	}
	h.transport = engine.New[profile.Accuracy](h.clock, h,
		engine.WithLogger(h.logger),
		engine.WithSessionIDs(testutil.NewFixedSessionGenerator(scenario.Session)),
	)

	if err := h.transport.ConfigureJudgment(profile.Perfect, profile.Miss, profile.None, prof.ConfigureJudgment); err != nil {
		return nil, fmt.Errorf("failed to configure judgment: %w", err)
	}
	if err := h.transport.ConfigureScore(profile.None, prof.ConfigureScore); err != nil {
		return nil, fmt.Errorf("failed to configure score: %w", err)
	}
	if err := h.transport.Render(c, difficulty, scenario.Config); err != nil {
		return nil, fmt.Errorf("failed to render: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := h.apply(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.action(), err)
		}
		h.logger.Info("step completed",
			"step", i,
			"action", step.action(),
			"position", h.transport.Position(),
		)
	}

	result := h.result
	result.Session = h.transport.Session()
	result.Difficulty = string(difficulty)
	result.Score = h.transport.Score()
	result.Position = h.transport.Position()
	result.Completed = h.transport.Completed()
	checkExpect(scenario.Expect, result)
	return result, nil
}

func scenarioProfile(s *Scenario) (profile.Profile, error) {
	if s.Profile.Kind == 0 {
		return profile.Default(), nil
	}
	data, err := yaml.Marshal(&s.Profile)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("failed to encode profile: %w", err)
	}
	return profile.Load(bytes.NewReader(data))
}

func scenarioDifficulty(s *Scenario, c *chart.Chart) (chart.Difficulty, error) {
	if s.Difficulty != "" {
		d := chart.Difficulty(norm.NFC.String(s.Difficulty))
		if !c.Has(d) {
			return "", fmt.Errorf("difficulty %q not in chart", s.Difficulty)
		}
		return d, nil
	}
	ds := c.Difficulties()
	if len(ds) != 1 {
		return "", fmt.Errorf("difficulty is required when the chart has %d", len(ds))
	}
	return ds[0], nil
}

// apply performs one step.
func (h *Harness) apply(step Step) error {
	t := h.transport
	switch step.action() {
	case "advance":
		h.clock.Advance(step.Advance)
	case "tick":
		for i := 0; i < step.Tick; i++ {
			t.Tick()
		}
	case "press":
		s, ok := t.FrontEventFor(ir.Identity(profile.Lane(*step.Press)))
		if !ok {
			h.logger.Debug("press on empty lane", "lane", *step.Press)
			return nil
		}
		_, err := t.Judge(s.Event(), 1)
		return err
	case "judge":
		ev, ok := findEvent(t.Events(), step.Judge.ID)
		if !ok {
			return fmt.Errorf("event %d not in difficulty", step.Judge.ID)
		}
		acc, err := profile.ParseAccuracy(step.Judge.Accuracy)
		if err != nil {
			return err
		}
		hits := step.Judge.Hits
		if hits == 0 {
			hits = 1
		}
		_, err = t.JudgeAs(ev, acc, hits)
		return err
	case "pause":
		t.Pause()
	case "resume":
		t.Resume()
	case "ready":
		t.SetReady(*step.Ready)
	default:
		return fmt.Errorf("exactly one action is required")
	}
	return nil
}

func findEvent(events []ir.Event, id int64) (ir.Event, bool) {
	for _, ev := range events {
		if ev.ID() == id {
			return ev, true
		}
	}
	return nil, false
}

// Instantiate implements engine.Host.
func (h *Harness) Instantiate(ev ir.Event, state ir.RenderState) any {
	h.result.addTrace(TraceEvent{Type: TraceInstantiate, Event: ev.ID(), Position: state.Position})
	return ev.ID()
}

// Execute implements engine.Host.
func (h *Harness) Execute(ev ir.Event, state ir.RenderState) {
	h.result.addTrace(TraceEvent{
		Type:     TraceExecute,
		Event:    ev.ID(),
		Kind:     ev.Kind().String(),
		Position: state.Position,
	})
}

// Judged implements engine.Host.
func (h *Harness) Judged(rec engine.Record[profile.Accuracy]) {
	h.result.addTrace(TraceEvent{
		Type:     TraceJudged,
		Seq:      rec.Seq,
		Event:    rec.Event.ID(),
		Accuracy: rec.Result.Accuracy.String(),
		Hits:     rec.Hits,
		Latency:  rec.Result.Latency,
	})
}

// ProximityExceeded implements engine.Host. The event is judged miss.
func (h *Harness) ProximityExceeded(seq int64, ev ir.Event) {
	h.result.addTrace(TraceEvent{Type: TraceExceeded, Seq: seq, Event: ev.ID()})
	if _, err := h.transport.JudgeAs(ev, profile.Miss, 1); err != nil {
		h.logger.Error("miss judgment failed", "event", ev.ID(), "error", err)
	}
}

// Completed implements engine.Host.
func (h *Harness) Completed(seq int64) {
	h.result.addTrace(TraceEvent{Type: TraceCompleted, Seq: seq})
}

// checkExpect compares the final state against the expectations.
func checkExpect(e Expect, r *Result) {
	if e.Score != nil && *e.Score != r.Score.Score {
		r.AddError(fmt.Sprintf("score: expected %d, got %d", *e.Score, r.Score.Score))
	}
	if e.Combo != nil && *e.Combo != r.Score.Combo {
		r.AddError(fmt.Sprintf("combo: expected %d, got %d", *e.Combo, r.Score.Combo))
	}
	if e.MaxCombo != nil && *e.MaxCombo != r.Score.MaxCombo {
		r.AddError(fmt.Sprintf("max_combo: expected %d, got %d", *e.MaxCombo, r.Score.MaxCombo))
	}
	if e.Percentage != nil && math.Abs(*e.Percentage-r.Score.Percentage) > positionTolerance {
		r.AddError(fmt.Sprintf("percentage: expected %g, got %g", *e.Percentage, r.Score.Percentage))
	}
	for name, want := range e.Hits {
		acc, err := profile.ParseAccuracy(name)
		if err != nil {
			r.AddError(fmt.Sprintf("hits: %v", err))
			continue
		}
		if got := r.Score.Hits[acc]; got != want {
			r.AddError(fmt.Sprintf("hits[%s]: expected %d, got %d", name, want, got))
		}
	}
	if e.Completed != nil && *e.Completed != r.Completed {
		r.AddError(fmt.Sprintf("completed: expected %t, got %t", *e.Completed, r.Completed))
	}
	if e.Position != nil && math.Abs(*e.Position-r.Position) > positionTolerance {
		r.AddError(fmt.Sprintf("position: expected %g, got %g", *e.Position, r.Position))
	}
}
