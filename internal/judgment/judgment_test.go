package judgment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/timing"
)

type grade int

const (
	none grade = iota
	miss
	great
	perfect
)

// at120 returns a snapshot at position pos with a 120 bpm tempo,
// where one measure is two seconds.
func at120(pos float64) ir.RenderState {
	return ir.RenderState{Position: pos, Tempo: ir.InitialTempo(120)}
}

// noteAtSeconds places a note the given number of seconds after position 0
// at 120 bpm.
func noteAtSeconds(s float64) ir.Event {
	return ir.NewNote[int](1, timing.SecondsToPosition(s, 120), 1)
}

func newJudgment(t *testing.T) *Judgment[grade] {
	t.Helper()
	j := New(perfect, miss, none)
	require.NoError(t, j.Register(perfect, 0.25))
	require.NoError(t, j.Register(great, 0.5))
	return j
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	j := newJudgment(t)
	j.Refresh(at120(0))

	res := j.Evaluate(noteAtSeconds(0.1))
	assert.Equal(t, perfect, res.Accuracy)
	assert.InDelta(t, 0.1, res.Latency, 1e-9)
	assert.Equal(t, 0.0, res.Position)

	assert.Equal(t, great, j.Evaluate(noteAtSeconds(-0.4)).Accuracy)
	assert.Equal(t, perfect, j.Evaluate(noteAtSeconds(0.25)).Accuracy, "window bound is inclusive")
}

func TestEvaluate_Fallbacks(t *testing.T) {
	j := newJudgment(t)
	j.Refresh(at120(0))

	ahead := j.Evaluate(noteAtSeconds(10))
	assert.Equal(t, none, ahead.Accuracy, "far future falls back to default")
	assert.InDelta(t, 10, ahead.Latency, 1e-9)

	assert.Equal(t, miss, j.Evaluate(noteAtSeconds(-10)).Accuracy, "long past falls back to lowest")
}

func TestEvaluate_ZeroDistanceIsDue(t *testing.T) {
	j := New(perfect, miss, none)
	j.Refresh(at120(1))
	assert.Equal(t, miss, j.Evaluate(ir.NewNote[int](1, 1, 1)).Accuracy)
}

func TestEvaluate_RegistrationOrder(t *testing.T) {
	j := New(perfect, miss, none)
	// A wide band registered first shadows the narrow one.
	require.NoError(t, j.Register(great, 0.5))
	require.NoError(t, j.Register(perfect, 0.25))
	j.Refresh(at120(0))

	assert.Equal(t, great, j.Evaluate(noteAtSeconds(0.1)).Accuracy)
	assert.Equal(t, []grade{great, perfect}, j.Accuracies())
}

func TestRegister_ReplaceKeepsOrder(t *testing.T) {
	j := newJudgment(t)
	require.NoError(t, j.Register(perfect, 0.05))

	assert.Equal(t, []grade{perfect, great}, j.Accuracies())
	j.Refresh(at120(0))
	assert.Equal(t, great, j.Evaluate(noteAtSeconds(0.1)).Accuracy)
}

func TestRegister_RejectsDefault(t *testing.T) {
	j := New(perfect, miss, none)

	err := j.Register(none, 1)
	require.Error(t, err)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeReservedAccuracy))
	assert.Empty(t, j.Accuracies())
}

func TestRegister_RejectsNegativeWindow(t *testing.T) {
	j := New(perfect, miss, none)
	err := j.Register(perfect, -0.1)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeInvalidWindow))
}

func TestRegisterFunc_RejectsNil(t *testing.T) {
	j := New(perfect, miss, none)
	err := j.RegisterFunc(perfect, nil)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeNilConfigurator))
}

func TestRegisterFunc_Custom(t *testing.T) {
	j := New(perfect, miss, none)
	// Only late hits count.
	require.NoError(t, j.RegisterFunc(great, func(ev ir.Event, st ir.RenderState) Match {
		l := Latency(ev, st)
		return Match{Matched: l <= 0 && l > -1, Latency: l}
	}))
	j.Refresh(at120(0))

	assert.Equal(t, great, j.Evaluate(noteAtSeconds(-0.5)).Accuracy)
	assert.Equal(t, none, j.Evaluate(noteAtSeconds(0.5)).Accuracy)
}

func TestProximityChecks(t *testing.T) {
	j := newJudgment(t)
	j.Refresh(at120(0))

	inside := noteAtSeconds(0.3)
	assert.True(t, j.CheckProximity(inside))
	assert.False(t, j.CheckProximityExceeded(inside))

	ahead := noteAtSeconds(3)
	assert.False(t, j.CheckProximity(ahead))
	assert.False(t, j.CheckProximityExceeded(ahead))

	gone := noteAtSeconds(-3)
	assert.False(t, j.CheckProximity(gone))
	assert.True(t, j.CheckProximityExceeded(gone))
}

func TestEvaluateAt_UsesTempo(t *testing.T) {
	j := newJudgment(t)
	ev := ir.NewNote[int](1, 0.1, 1)

	// 0.1 measures is 0.2s at 120 bpm but 0.4s at 60 bpm.
	assert.Equal(t, perfect, j.EvaluateAt(ev, at120(0)).Accuracy)
	slow := ir.RenderState{Position: 0, Tempo: ir.InitialTempo(60)}
	assert.Equal(t, great, j.EvaluateAt(ev, slow).Accuracy)
}

func TestAccessors(t *testing.T) {
	j := New(perfect, miss, none)
	assert.Equal(t, perfect, j.Highest())
	assert.Equal(t, miss, j.Lowest())
	assert.Equal(t, none, j.Default())

	st := at120(2)
	j.Refresh(st)
	assert.Equal(t, st, j.State())
}
