package engine

import (
	"log/slog"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/frontbuf"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/judgment"
	"github.com/roach88/beatline/internal/score"
	"github.com/roach88/beatline/internal/timing"
	"github.com/roach88/beatline/internal/tracker"
)

// Status is the Transport lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusRendering
	StatusPaused
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRendering:
		return "rendering"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Transport is the position state machine for one chart at a time.
//
// Lifecycle: idle → rendering → (paused ⇄ rendering) → completed.
// Render may be called again from any state to start a new session.
//
// Thread-safety: none. All methods must be called from one goroutine.
//
// INVARIANTS:
//   - events is sorted by position and never reordered during a session
//   - an EventState, once completed, is never instantiated, executed or
//     judged again
//   - judgment, score and front are replaced wholesale on reconfiguration
type Transport[A comparable] struct {
	clock    timing.Clock
	host     Host[A]
	logger   *slog.Logger
	seq      *Clock
	sessions SessionIDGenerator

	judgment *judgment.Judgment[A]
	score    *score.State[A]
	front    *frontbuf.Buffer[A]
	tracker  *tracker.Tracker[A]

	status     Status
	ready      bool
	chart      *chart.Chart
	difficulty chart.Difficulty
	config     RenderConfig
	events     []ir.Event
	session    string
	records    []Record[A]

	tempo       ir.Tempo
	tempoState  *tracker.EventState[A] // nil for the chart's initial tempo
	refTime     float64
	refPosition float64

	pinned   float64
	pausedAt float64
}

// New creates an idle Transport reading wall time from clock and
// delegating instantiation, execution and notifications to host.
func New[A comparable](clock timing.Clock, host Host[A], opts ...Option) *Transport[A] {
	o := options{
		logger:   slog.Default(),
		sessions: UUIDv7Generator{},
		seq:      NewClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if host == nil {
		host = NopHost[A]{}
	}

	return &Transport[A]{
		clock:    clock,
		host:     host,
		logger:   o.logger,
		seq:      o.seq,
		sessions: o.sessions,
		front:    frontbuf.New[A](),
		tracker:  tracker.New[A](),
		ready:    true,
		config:   DefaultRenderConfig(),
	}
}

// ConfigureJudgment replaces the judgment engine with a fresh one over the
// given grades, populated by configure. On error the previous judgment is
// kept.
func (t *Transport[A]) ConfigureJudgment(highest, lowest, def A, configure func(*judgment.Judgment[A]) error) error {
	if configure == nil {
		return ir.NewConfigError(ir.ErrCodeNilConfigurator, "judgment configurator is nil")
	}
	j := judgment.New(highest, lowest, def)
	if err := configure(j); err != nil {
		return err
	}
	if t.status != StatusIdle {
		j.Refresh(t.RenderState())
	}
	t.judgment = j
	return nil
}

// ConfigureScore replaces the score accumulator with a fresh one populated
// by configure. A session in progress keeps its chart binding but restarts
// its counters.
func (t *Transport[A]) ConfigureScore(def A, configure func(*score.State[A]) error) error {
	if configure == nil {
		return ir.NewConfigError(ir.ErrCodeNilConfigurator, "score configurator is nil")
	}
	s := score.New(def)
	if err := configure(s); err != nil {
		return err
	}
	if t.chart != nil {
		s.Bind(t.chart, t.difficulty)
	}
	t.score = s
	return nil
}

// Render starts a session over the events of c at difficulty d. The
// tracker, front buffer and score counters are reset, and position starts
// at -cfg.RenderDelay.
func (t *Transport[A]) Render(c *chart.Chart, d chart.Difficulty, cfg RenderConfig) error {
	if t.judgment == nil || t.score == nil {
		return ir.NewConfigError(ir.ErrCodeNotConfigured, "judgment and score must be configured before render")
	}
	if c == nil || !(c.BPM > 0) {
		bpm := 0.0
		if c != nil {
			bpm = c.BPM
		}
		return ir.NewConfigError(ir.ErrCodeInvalidBPM, "chart bpm must be positive, got %g", bpm)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	t.chart = c
	t.difficulty = d
	t.config = cfg
	t.events = c.Events(d)
	t.tracker.Reset()
	t.front.Reset()
	t.score.Reset()
	t.score.Bind(c, d)
	t.records = nil

	t.tempo = ir.InitialTempo(c.BPM)
	t.tempoState = nil
	t.refPosition = 0
	t.refTime = t.clock.Now() + timing.PositionToSeconds(cfg.RenderDelay, c.BPM)

	t.session = t.sessions.Generate()
	t.status = StatusRendering
	t.judgment.Refresh(t.RenderState())

	t.logger.Info("render started",
		"session", t.session,
		"title", c.Title,
		"difficulty", string(d),
		"events", len(t.events),
		"bpm", c.BPM)
	return nil
}

// Position returns the current music position in measures.
func (t *Transport[A]) Position() float64 {
	switch t.status {
	case StatusIdle:
		return 0
	case StatusPaused:
		return t.pinned
	}
	return t.positionAt(t.clock.Now())
}

// RenderState snapshots the current position and tempo.
func (t *Transport[A]) RenderState() ir.RenderState {
	return ir.RenderState{Position: t.Position(), Tempo: t.tempo}
}

// Pause pins the observable position. No-op unless rendering.
func (t *Transport[A]) Pause() {
	if t.status != StatusRendering {
		return
	}
	t.pinned = t.Position()
	t.pausedAt = t.clock.Now()
	t.status = StatusPaused
	t.logger.Debug("paused", "session", t.session, "position", t.pinned)
}

// Resume unpins the position, shifting the reference time by the paused
// wall duration so position continues from the pinned value. No-op unless
// paused.
func (t *Transport[A]) Resume() {
	if t.status != StatusPaused {
		return
	}
	t.refTime += t.clock.Now() - t.pausedAt
	t.status = StatusRendering
	t.logger.Debug("resumed", "session", t.session, "position", t.pinned)
}

// SetReady gates Tick. A Transport is ready by default; hosts clear it
// while assets load.
func (t *Transport[A]) SetReady(ready bool) {
	t.ready = ready
}

// Ready reports the readiness gate.
func (t *Transport[A]) Ready() bool { return t.ready }

// Status returns the lifecycle state.
func (t *Transport[A]) Status() Status { return t.status }

// Completed reports whether every event of the session is resolved.
func (t *Transport[A]) Completed() bool { return t.status == StatusCompleted }

// Session returns the id assigned by the last Render, or "".
func (t *Transport[A]) Session() string { return t.session }

// Config returns the active render configuration.
func (t *Transport[A]) Config() RenderConfig { return t.config }

// Chart returns the chart and difficulty being rendered.
func (t *Transport[A]) Chart() (*chart.Chart, chart.Difficulty) { return t.chart, t.difficulty }

// Tempo returns the active tempo.
func (t *Transport[A]) Tempo() ir.Tempo { return t.tempo }

// Judgment returns the configured judgment engine, or nil.
func (t *Transport[A]) Judgment() *judgment.Judgment[A] { return t.judgment }

// Events returns the session's events in position order.
func (t *Transport[A]) Events() []ir.Event {
	out := make([]ir.Event, len(t.events))
	copy(out, t.events)
	return out
}

// EventState returns the lifecycle record of an event id. Records exist
// only for events the session has visited.
func (t *Transport[A]) EventState(id int64) (*tracker.EventState[A], bool) {
	return t.tracker.Get(id)
}

// FrontEvents returns the front event of every channel, sorted by position.
func (t *Transport[A]) FrontEvents() []*tracker.EventState[A] {
	return t.front.Fronts()
}

// FrontEventFor returns the front event of one channel.
func (t *Transport[A]) FrontEventFor(ch ir.ChannelID) (*tracker.EventState[A], bool) {
	return t.front.FrontFor(ch)
}

// InvalidateFront clears one channel's front entry; the next tick
// repopulates it.
func (t *Transport[A]) InvalidateFront(ch ir.ChannelID) {
	t.front.Invalidate(ch)
}

// FrontEventsOf returns the front events whose notes use channel type C.
func FrontEventsOf[C ir.Channel, A comparable](t *Transport[A]) []*tracker.EventState[A] {
	return frontbuf.FrontsOf[C](t.front)
}

// Score snapshots the score accumulator. It is the zero Snapshot before
// ConfigureScore.
func (t *Transport[A]) Score() score.Snapshot[A] {
	if t.score == nil {
		return score.Snapshot[A]{}
	}
	return t.score.Snapshot()
}

// Records returns the judgments committed this session, in seq order.
func (t *Transport[A]) Records() []Record[A] {
	out := make([]Record[A], len(t.records))
	copy(out, t.records)
	return out
}
