package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/judgment"
	"github.com/roach88/beatline/internal/score"
	"github.com/roach88/beatline/internal/testutil"
)

type grade int

const (
	none grade = iota
	miss
	great
	perfect
)

const difficulty chart.Difficulty = "normal"

// recorder logs every host callback. With missLate set it judges
// proximity-exceeded notes at miss, the way a real host would.
type recorder struct {
	t        *Transport[grade]
	missLate bool
	handles  int
	log      []string
}

func (r *recorder) Instantiate(ev ir.Event, _ ir.RenderState) any {
	r.handles++
	r.log = append(r.log, fmt.Sprintf("instantiate %d", ev.ID()))
	return r.handles
}

func (r *recorder) Execute(ev ir.Event, _ ir.RenderState) {
	r.log = append(r.log, fmt.Sprintf("execute %d", ev.ID()))
}

func (r *recorder) Judged(rec Record[grade]) {
	r.log = append(r.log, fmt.Sprintf("judged %d %d seq=%d", rec.Event.ID(), rec.Result.Accuracy, rec.Seq))
}

func (r *recorder) ProximityExceeded(seq int64, ev ir.Event) {
	r.log = append(r.log, fmt.Sprintf("exceeded %d seq=%d", ev.ID(), seq))
	if r.missLate {
		_, _ = r.t.JudgeAs(ev, miss, 1)
	}
}

func (r *recorder) Completed(seq int64) {
	r.log = append(r.log, fmt.Sprintf("completed seq=%d", seq))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTransport(t *testing.T) (*Transport[grade], *testutil.ManualClock, *recorder) {
	t.Helper()
	clock := testutil.NewManualClock(0)
	host := &recorder{}
	tr := New[grade](clock, host,
		WithLogger(discardLogger()),
		WithSessionIDs(NewFixedGenerator("session-1", "session-2")))
	host.t = tr

	require.NoError(t, tr.ConfigureJudgment(perfect, miss, none, func(j *judgment.Judgment[grade]) error {
		if err := j.Register(perfect, 0.25); err != nil {
			return err
		}
		return j.Register(great, 0.5)
	}))
	require.NoError(t, tr.ConfigureScore(none, func(s *score.State[grade]) error {
		s.Register(perfect, 100)
		s.Register(great, 50)
		s.SetComboBreaker(miss, true)
		return nil
	}))
	return tr, clock, host
}

func immediate() RenderConfig {
	return RenderConfig{Speed: 1}
}

func chartOf(events ...ir.Event) *chart.Chart {
	c := chart.New(120)
	c.AddEvents(difficulty, events...)
	return c
}

// at120 converts a position to seconds at the chart tempo.
func at120(position float64) float64 {
	return position * 2
}

func TestRender_RequiresConfiguration(t *testing.T) {
	tr := New[grade](testutil.NewManualClock(0), nil, WithLogger(discardLogger()))
	err := tr.Render(chartOf(), difficulty, immediate())
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeNotConfigured))
	assert.Equal(t, StatusIdle, tr.Status())
}

func TestRender_RejectsInvalidInput(t *testing.T) {
	tr, _, _ := newTransport(t)

	err := tr.Render(chart.New(0), difficulty, immediate())
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeInvalidBPM))

	err = tr.Render(nil, difficulty, immediate())
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeInvalidBPM))

	err = tr.Render(chartOf(), difficulty, RenderConfig{InstantiationProximity: -1})
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeInvalidWindow))
}

func TestConfigure_NilAndFailingConfigurators(t *testing.T) {
	tr, _, _ := newTransport(t)
	before := tr.Judgment()

	err := tr.ConfigureJudgment(perfect, miss, none, nil)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeNilConfigurator))
	err = tr.ConfigureScore(none, nil)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeNilConfigurator))

	err = tr.ConfigureJudgment(perfect, miss, none, func(j *judgment.Judgment[grade]) error {
		return j.Register(none, 1)
	})
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeReservedAccuracy))
	assert.Same(t, before, tr.Judgment(), "failed reconfiguration keeps the previous judgment")
}

func TestPosition_RenderDelay(t *testing.T) {
	tr, clock, _ := newTransport(t)
	assert.Equal(t, 0.0, tr.Position(), "idle position")

	require.NoError(t, tr.Render(chartOf(), difficulty, RenderConfig{RenderDelay: 1}))
	assert.InDelta(t, -1.0, tr.Position(), 1e-9)

	clock.Advance(at120(1))
	assert.InDelta(t, 0.0, tr.Position(), 1e-9)

	clock.Advance(1)
	assert.InDelta(t, 0.5, tr.Position(), 1e-9)
	assert.Equal(t, "session-1", tr.Session())
}

func TestTempo_BPMChangeIsContinuous(t *testing.T) {
	tr, clock, _ := newTransport(t)
	tempo := ir.NewTempo(10, 1, 240)
	require.NoError(t, tr.Render(chartOf(tempo), difficulty, immediate()))

	clock.Advance(at120(1) + 0.0002)
	before := tr.Position()
	tr.Tick()
	after := tr.Position()

	assert.Equal(t, 240.0, tr.Tempo().BPM())
	assert.InDelta(t, before, after, 0.001, "no jump across the bpm boundary")

	// One second at 240 bpm is one measure.
	clock.Advance(1)
	assert.InDelta(t, after+1, tr.Position(), 1e-9)

	s, ok := tr.EventState(10)
	require.True(t, ok)
	assert.True(t, s.Completed())
}

func TestTempo_ZeroBPMInherits(t *testing.T) {
	tr, clock, _ := newTransport(t)
	require.NoError(t, tr.Render(chartOf(ir.NewTempo(10, 0.5, 0)), difficulty, immediate()))

	clock.Advance(at120(0.5) + 0.01)
	tr.Tick()
	assert.Equal(t, 120.0, tr.Tempo().BPM())
	assert.Equal(t, int64(10), tr.Tempo().ID())
}

func TestTempo_SkipJumpsForward(t *testing.T) {
	tr, clock, _ := newTransport(t)
	skip := ir.NewTempo(10, 1, 0).WithSkip(0.5)
	require.NoError(t, tr.Render(chartOf(skip, ir.NewNote(1, 4, 1)), difficulty, immediate()))

	clock.Advance(at120(1) + 0.002)
	before := tr.Position()
	tr.Tick()
	after := tr.Position()

	assert.InDelta(t, before+0.5, after, 1e-9, "skip advances position without elapsed time")
}

func TestTempo_StopHoldsPosition(t *testing.T) {
	tr, clock, _ := newTransport(t)
	stop := ir.NewTempo(10, 1, 0).WithStop(0.5)
	require.NoError(t, tr.Render(chartOf(stop, ir.NewNote(1, 4, 1)), difficulty, immediate()))

	clock.Advance(at120(1) + 0.01)
	tr.Tick()
	assert.Equal(t, 1.0, tr.Position(), "stop clamps to its position")

	s, ok := tr.EventState(10)
	require.True(t, ok)
	assert.False(t, s.Completed(), "stop pending until the hold elapses")

	clock.Advance(0.88)
	tr.Tick()
	assert.Equal(t, 1.0, tr.Position())

	// The hold is 0.5 measures, one second at 120 bpm.
	clock.Advance(0.21)
	assert.InDelta(t, 1.05, tr.Position(), 1e-9)
	assert.True(t, s.Completed())

	clock.Advance(1)
	assert.InDelta(t, 1.55, tr.Position(), 1e-9)
}

func TestTempo_StopAfterSkipHoldsAtLandingPosition(t *testing.T) {
	tr, clock, _ := newTransport(t)
	tempo := ir.NewTempo(10, 1, 0).WithSkip(1).WithStop(0.25)
	require.NoError(t, tr.Render(chartOf(tempo, ir.NewNote(1, 4, 1)), difficulty, immediate()))

	clock.Advance(at120(1) + 0.01)
	tr.Tick()
	assert.Equal(t, 2.0, tr.Position())
}

func TestPauseResume(t *testing.T) {
	tr, clock, host := newTransport(t)
	require.NoError(t, tr.Render(chartOf(ir.NewNote(1, 3, 1)), difficulty, RenderConfig{InstantiationProximity: 1}))

	clock.Advance(1)
	tr.Pause()
	assert.Equal(t, StatusPaused, tr.Status())
	pinned := tr.Position()
	assert.InDelta(t, 0.5, pinned, 1e-9)

	clock.Advance(10)
	tr.Tick()
	assert.Equal(t, pinned, tr.Position(), "paused position ignores the clock")
	assert.Empty(t, host.log, "tick is a no-op while paused")

	tr.Pause()
	tr.Resume()
	assert.Equal(t, StatusRendering, tr.Status())
	assert.InDelta(t, pinned, tr.Position(), 1e-9, "resume continues from the pinned value")

	clock.Advance(1)
	assert.InDelta(t, pinned+0.5, tr.Position(), 1e-9)

	tr.Resume()
	assert.Equal(t, StatusRendering, tr.Status(), "resume outside pause is a no-op")
}

func TestTick_NotReady(t *testing.T) {
	tr, clock, host := newTransport(t)
	require.NoError(t, tr.Render(chartOf(ir.NewNote(1, 1, 1)), difficulty, immediate()))

	tr.SetReady(false)
	clock.Advance(1)
	tr.Tick()
	assert.Empty(t, host.log)

	tr.SetReady(true)
	tr.Tick()
	assert.Equal(t, []string{"instantiate 1"}, host.log)
}

func TestTick_InstantiationProximity(t *testing.T) {
	tr, clock, host := newTransport(t)
	require.NoError(t, tr.Render(chartOf(ir.NewNote(1, 2, 1), ir.NewNote(2, 4, 1)), difficulty,
		RenderConfig{InstantiationProximity: 1}))

	tr.Tick()
	assert.Empty(t, host.log)

	clock.Advance(at120(1.5))
	tr.Tick()
	tr.Tick()
	assert.Equal(t, []string{"instantiate 1"}, host.log, "instantiated once, only within proximity")

	s, ok := tr.EventState(1)
	require.True(t, ok)
	assert.True(t, s.Instantiated())
	assert.Equal(t, 1, s.Handle())
}

func TestTick_ZeroProximityInstantiatesEverything(t *testing.T) {
	tr, _, host := newTransport(t)
	require.NoError(t, tr.Render(chartOf(ir.NewNote(1, 2, 1), ir.NewNote(2, 40, 1)), difficulty, immediate()))

	tr.Tick()
	assert.Equal(t, []string{"instantiate 1", "instantiate 2"}, host.log)
}

func TestTick_BackgroundNoteExecutesWhenDue(t *testing.T) {
	tr, clock, host := newTransport(t)
	bg := ir.NewNote(1, 1, 0).AsBackground()
	require.NoError(t, tr.Render(chartOf(bg), difficulty, immediate()))

	tr.Tick()
	clock.Advance(at120(0.5))
	tr.Tick()
	assert.Equal(t, []string{"instantiate 1"}, host.log)

	clock.Advance(at120(0.6))
	tr.Tick()
	assert.Equal(t, []string{"instantiate 1", "execute 1", "completed seq=1"}, host.log)
	assert.Empty(t, tr.FrontEvents(), "background notes never reach the front buffer")
}

func TestTick_ProximityExceededJudgedAtMiss(t *testing.T) {
	tr, clock, host := newTransport(t)
	host.missLate = true
	require.NoError(t, tr.Render(chartOf(ir.NewNote(1, 1, 1)), difficulty, immediate()))

	clock.Advance(at120(1.5))
	tr.Tick()

	assert.Equal(t, []string{
		"instantiate 1",
		"exceeded 1 seq=1",
		"judged 1 1 seq=2",
		"completed seq=3",
	}, host.log)
	assert.True(t, tr.Completed())

	snap := tr.Score()
	assert.Equal(t, 1, snap.Hits[miss])
	assert.Equal(t, 0, snap.Combo)
}

func TestTick_ProximityExceededRepeatsUntilJudged(t *testing.T) {
	tr, clock, host := newTransport(t)
	require.NoError(t, tr.Render(chartOf(ir.NewNote(1, 1, 1)), difficulty, immediate()))

	clock.Advance(at120(1.5))
	tr.Tick()
	tr.Tick()
	assert.Equal(t, []string{"instantiate 1", "exceeded 1 seq=1", "exceeded 1 seq=2"}, host.log)
	assert.False(t, tr.Completed())
}

func TestJudge_ClassifiesAndScores(t *testing.T) {
	tr, clock, host := newTransport(t)
	note := ir.NewNote(1, 1, 1)
	require.NoError(t, tr.Render(chartOf(note, ir.NewNote(2, 2, 1)), difficulty, immediate()))
	tr.Tick()

	clock.Advance(at120(1.05))
	ok, err := tr.Judge(note, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	s, found := tr.EventState(1)
	require.True(t, found)
	assert.True(t, s.Completed())
	res, hasResult := s.Result()
	require.True(t, hasResult)
	assert.Equal(t, perfect, res.Accuracy)
	assert.InDelta(t, -0.1, res.Latency, 1e-9)
	assert.InDelta(t, 1.05, res.Position, 1e-9)

	snap := tr.Score()
	assert.Equal(t, 100, snap.Score)
	assert.Equal(t, 1, snap.Combo)

	require.Len(t, tr.Records(), 1)
	assert.Equal(t, int64(1), tr.Records()[0].Seq)
	assert.Contains(t, host.log, "judged 1 3 seq=1")
}

func TestJudge_CompletedIsNoop(t *testing.T) {
	tr, clock, _ := newTransport(t)
	note := ir.NewNote(1, 1, 1)
	require.NoError(t, tr.Render(chartOf(note), difficulty, immediate()))
	clock.Advance(at120(1))

	ok, err := tr.Judge(note, 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tr.Judge(note, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = tr.JudgeAs(note, great, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 100, tr.Score().Score, "completed events never score twice")
}

func TestJudge_DefaultIsNoop(t *testing.T) {
	tr, _, host := newTransport(t)
	note := ir.NewNote(1, 3, 1)
	require.NoError(t, tr.Render(chartOf(note), difficulty, immediate()))

	ok, err := tr.Judge(note, 1)
	require.NoError(t, err)
	assert.False(t, ok, "note far in the future classifies as default")

	ok, err = tr.JudgeAs(note, none, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, found := tr.EventState(1)
	assert.False(t, found)
	assert.Empty(t, host.log)
}

func TestJudge_RejectsNonPositiveHits(t *testing.T) {
	tr, clock, _ := newTransport(t)
	note := ir.NewNote(1, 1, 1)
	require.NoError(t, tr.Render(chartOf(note), difficulty, immediate()))
	clock.Advance(at120(1))

	_, err := tr.Judge(note, 0)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeInvalidHits))
	_, err = tr.JudgeAs(note, perfect, -2)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeInvalidHits))

	var cfgErr *ir.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Empty(t, tr.Records())
}

func TestJudge_MultipleHits(t *testing.T) {
	tr, clock, _ := newTransport(t)
	note := ir.NewNote(1, 1, 1)
	require.NoError(t, tr.Render(chartOf(note), difficulty, immediate()))
	clock.Advance(at120(1))

	ok, err := tr.JudgeAs(note, perfect, 3)
	require.NoError(t, err)
	require.True(t, ok)

	snap := tr.Score()
	assert.Equal(t, 300, snap.Score)
	assert.Equal(t, 3, snap.Combo)
}

func TestJudge_TempoIsNotJudgeable(t *testing.T) {
	tr, _, _ := newTransport(t)
	tempo := ir.NewTempo(10, 0, 200)
	require.NoError(t, tr.Render(chartOf(tempo), difficulty, immediate()))

	ok, err := tr.JudgeAs(tempo, perfect, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJudge_Idle(t *testing.T) {
	tr, _, _ := newTransport(t)
	ok, err := tr.Judge(ir.NewNote(1, 0, 1), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFrontEventFor_AdvancesAfterCompletion(t *testing.T) {
	tr, clock, _ := newTransport(t)
	first := ir.NewNote(1, 1.0, 1)
	second := ir.NewNote(2, 2.0, 1)
	require.NoError(t, tr.Render(chartOf(second, first), difficulty, immediate()))

	tr.Tick()
	front, ok := tr.FrontEventFor(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), front.Event().ID())

	clock.Advance(at120(1))
	_, err := tr.JudgeAs(first, great, 1)
	require.NoError(t, err)
	_, ok = tr.FrontEventFor(1)
	assert.False(t, ok, "completed front is evicted on read")

	tr.Tick()
	front, ok = tr.FrontEventFor(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), front.Event().ID())
}

func TestFrontEvents_SortedAcrossChannels(t *testing.T) {
	tr, _, _ := newTransport(t)
	require.NoError(t, tr.Render(chartOf(
		ir.NewNote(1, 2.0, 1),
		ir.NewNote(2, 1.0, 2),
		ir.NewNote(3, 1.5, 3),
		ir.NewTempo(10, 0.5, 0),
	), difficulty, immediate()))

	tr.Tick()
	var ids []int64
	for _, s := range FrontEventsOf[int](tr) {
		ids = append(ids, s.Event().ID())
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)
	assert.Empty(t, FrontEventsOf[int32](tr), "filtered by channel type")
}

func TestInvalidateFront(t *testing.T) {
	tr, _, _ := newTransport(t)
	require.NoError(t, tr.Render(chartOf(ir.NewNote(1, 1, 1)), difficulty, immediate()))
	tr.Tick()

	tr.InvalidateFront(1)
	_, ok := tr.FrontEventFor(1)
	assert.False(t, ok)

	tr.Tick()
	_, ok = tr.FrontEventFor(1)
	assert.True(t, ok)
}

func TestCompletion(t *testing.T) {
	tr, clock, host := newTransport(t)
	note := ir.NewNote(1, 0.5, 1)
	require.NoError(t, tr.Render(chartOf(note, ir.NewTempo(10, 0.25, 0)), difficulty, immediate()))

	clock.Advance(at120(0.5))
	tr.Tick()
	assert.False(t, tr.Completed())

	_, err := tr.Judge(note, 1)
	require.NoError(t, err)
	tr.Tick()
	assert.True(t, tr.Completed())

	tr.Tick()
	assert.Equal(t, "completed seq=2", host.log[len(host.log)-1])
	assert.Len(t, host.log, 4, "completion fires once")
}

func TestCompletion_EmptyChart(t *testing.T) {
	tr, _, host := newTransport(t)
	require.NoError(t, tr.Render(chartOf(), difficulty, immediate()))
	tr.Tick()
	assert.True(t, tr.Completed())
	assert.Equal(t, []string{"completed seq=1"}, host.log)
}

func TestRender_RestartsSession(t *testing.T) {
	tr, clock, _ := newTransport(t)
	note := ir.NewNote(1, 1, 1)
	c := chartOf(note)
	require.NoError(t, tr.Render(c, difficulty, immediate()))
	clock.Advance(at120(1))
	_, err := tr.Judge(note, 1)
	require.NoError(t, err)

	require.NoError(t, tr.Render(c, difficulty, immediate()))
	assert.Equal(t, "session-2", tr.Session())
	assert.Equal(t, 0, tr.Score().Score)
	assert.Empty(t, tr.Records())
	_, found := tr.EventState(1)
	assert.False(t, found, "tracker reset between sessions")
	assert.InDelta(t, 0.0, tr.Position(), 1e-9)
}
