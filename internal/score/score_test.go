package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/ir"
)

type grade int

const (
	none grade = iota
	miss
	good
	perfect
)

func newState() *State[grade] {
	s := New(none)
	s.Register(perfect, 100)
	s.Register(good, 50)
	s.SetComboBreaker(miss, true)
	return s
}

func TestUpdate_MultipleHits(t *testing.T) {
	s := newState()
	require.NoError(t, s.Update(perfect, 3))

	assert.Equal(t, 300, s.Score())
	assert.Equal(t, 3, s.Combo())
	assert.Equal(t, 3, s.MaxCombo())
	assert.Equal(t, 3, s.Hits(perfect))
}

func TestUpdate_ComboBreakerKeepsMax(t *testing.T) {
	s := newState()
	require.NoError(t, s.Update(perfect, 1))
	require.NoError(t, s.Update(good, 1))
	require.NoError(t, s.Update(miss, 1))

	assert.Equal(t, 0, s.Combo())
	assert.Equal(t, 2, s.MaxCombo(), "max combo survives a break")
	assert.Equal(t, 150, s.Score(), "unregistered accuracy scores 0")
	assert.Equal(t, 1, s.Hits(miss))
}

func TestUpdate_DefaultIsNoop(t *testing.T) {
	s := newState()
	require.NoError(t, s.Update(none, 5))
	assert.Equal(t, Snapshot[grade]{Hits: map[grade]int{}}, s.Snapshot())
}

func TestUpdate_RejectsNonPositiveHits(t *testing.T) {
	s := newState()
	for _, hits := range []int{0, -1} {
		err := s.Update(perfect, hits)
		require.Error(t, err)
		assert.True(t, ir.HasConfigCode(err, ir.ErrCodeInvalidHits))
	}
	assert.Equal(t, 0, s.Hits(perfect))
}

func TestRegister_LastWriteWins(t *testing.T) {
	s := newState()
	s.Register(perfect, 10)
	require.NoError(t, s.Update(perfect, 1))
	assert.Equal(t, 10, s.Score())
}

func TestRegisterFunc_ChartAware(t *testing.T) {
	c := chart.New(120)
	c.SetLevel("hard", 7)

	s := New(none)
	require.NoError(t, s.RegisterFunc(perfect, func(c *chart.Chart, d chart.Difficulty) int {
		return 10 * c.Level(d)
	}))
	s.Bind(c, "hard")
	require.NoError(t, s.Update(perfect, 2))

	assert.Equal(t, 140, s.Score())
}

func TestRegisterFunc_RejectsNil(t *testing.T) {
	err := New(none).RegisterFunc(perfect, nil)
	assert.True(t, ir.HasConfigCode(err, ir.ErrCodeNilConfigurator))
}

func TestComboBreaker_Toggle(t *testing.T) {
	s := newState()
	assert.True(t, s.IsComboBreaker(miss))
	s.SetComboBreaker(miss, false)
	assert.False(t, s.IsComboBreaker(miss))
}

func TestPercentage(t *testing.T) {
	c := chart.New(120)
	for i := int64(1); i <= 4; i++ {
		c.AddEvents("normal", ir.NewNote[int](i, float64(i), 1))
	}
	c.AddEvents("normal", ir.NewNote[int](5, 5, 0).AsBackground())

	s := newState()
	s.SetWeight(perfect, 1)
	s.SetWeight(good, 0.5)
	s.Bind(c, "normal")

	require.NoError(t, s.Update(perfect, 1))
	assert.InDelta(t, 25, s.Percentage(), 1e-9)
	require.NoError(t, s.Update(good, 1))
	assert.InDelta(t, 37.5, s.Percentage(), 1e-9)
	require.NoError(t, s.Update(miss, 1))
	assert.InDelta(t, 37.5, s.Percentage(), 1e-9, "unweighted accuracy adds nothing")
}

func TestPercentage_UnboundIsZero(t *testing.T) {
	s := newState()
	s.SetWeight(perfect, 1)
	require.NoError(t, s.Update(perfect, 1))
	assert.Equal(t, 0.0, s.Percentage())
}

func TestReset(t *testing.T) {
	s := newState()
	require.NoError(t, s.Update(perfect, 4))
	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.Combo)
	assert.Equal(t, 0, snap.MaxCombo)
	assert.Empty(t, snap.Hits)

	require.NoError(t, s.Update(perfect, 1))
	assert.Equal(t, 100, s.Score(), "rules survive reset")
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := newState()
	require.NoError(t, s.Update(perfect, 1))
	snap := s.Snapshot()
	snap.Hits[perfect] = 99
	assert.Equal(t, 1, s.Hits(perfect))
}
