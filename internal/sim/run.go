package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/beatline/internal/engine"
	"github.com/roach88/beatline/internal/profile"
	"github.com/roach88/beatline/internal/score"
)

// ErrStepLimit is returned when a run hits its step limit before the
// render completes.
var ErrStepLimit = errors.New("step limit reached before render completed")

// ErrNotRendering is returned when a run starts on a transport that has no
// session.
var ErrNotRendering = errors.New("transport is not rendering")

// VirtualClock is a wall clock that only moves when advanced. It lets a
// whole chart play in as long as the CPU takes.
type VirtualClock struct {
	mu  sync.Mutex
	now float64
}

// Now returns the virtual time in seconds.
func (c *VirtualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the virtual time forward.
func (c *VirtualClock) Advance(seconds float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds > 0 {
		c.now += seconds
	}
	return c.now
}

// Advancer moves a clock forward by a number of seconds.
type Advancer interface {
	Advance(seconds float64) float64
}

// Result summarizes one finished run.
type Result struct {
	Session string
	Steps   int
	Score   score.Snapshot[profile.Accuracy]
	Records []engine.Record[profile.Accuracy]
}

func result(t *engine.Transport[profile.Accuracy], steps int) Result {
	return Result{
		Session: t.Session(),
		Steps:   steps,
		Score:   t.Score(),
		Records: t.Records(),
	}
}

// step ticks, then lets the player press.
func step(t *engine.Transport[profile.Accuracy], p *Player) error {
	t.Tick()
	if err := p.Err(); err != nil {
		return err
	}
	if t.Completed() {
		return nil
	}
	_, err := p.Press()
	return err
}

// Run drives an already-rendered transport over a virtual clock, advancing
// it by stepSeconds per step. maxSteps of 0 means no limit.
func Run(ctx context.Context, t *engine.Transport[profile.Accuracy], p *Player, clock Advancer, stepSeconds float64, maxSteps int) (Result, error) {
	if !(stepSeconds > 0) {
		return Result{}, fmt.Errorf("step must be positive, got %g", stepSeconds)
	}
	if t.Status() == engine.StatusIdle {
		return Result{}, ErrNotRendering
	}

	steps := 0
	for !t.Completed() {
		if err := ctx.Err(); err != nil {
			return result(t, steps), err
		}
		if maxSteps > 0 && steps >= maxSteps {
			return result(t, steps), ErrStepLimit
		}
		if err := step(t, p); err != nil {
			return result(t, steps), err
		}
		steps++
		if !t.Completed() {
			clock.Advance(stepSeconds)
		}
	}
	return result(t, steps), nil
}

// RunRealtime drives a transport whose clock is the wall clock, one step
// per interval, until completion or cancellation.
func RunRealtime(ctx context.Context, t *engine.Transport[profile.Accuracy], p *Player, interval time.Duration) (Result, error) {
	if interval <= 0 {
		return Result{}, fmt.Errorf("interval must be positive, got %s", interval)
	}
	if t.Status() == engine.StatusIdle {
		return Result{}, ErrNotRendering
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	steps := 0
	for !t.Completed() {
		if err := step(t, p); err != nil {
			return result(t, steps), err
		}
		steps++
		if t.Completed() {
			break
		}
		select {
		case <-ctx.Done():
			return result(t, steps), ctx.Err()
		case <-ticker.C:
		}
	}
	return result(t, steps), nil
}
