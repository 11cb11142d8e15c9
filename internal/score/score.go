// Package score accumulates hit counts, combo, and score for one render
// session.
package score

import (
	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/ir"
)

// Func computes the points one hit of an accuracy is worth on a chart.
// The chart may be nil when the state was never bound.
type Func func(c *chart.Chart, d chart.Difficulty) int

// Points returns a Func worth a fixed number of points.
func Points(n int) Func {
	return func(*chart.Chart, chart.Difficulty) int { return n }
}

// State is the score/combo accumulator over accuracy type A.
// State is not safe for concurrent use.
type State[A comparable] struct {
	def        A
	score      int
	combo      int
	maxCombo   int
	hits       map[A]int
	breakers   map[A]bool
	scoring    map[A]Func
	weights    map[A]float64
	percentage float64

	chart      *chart.Chart
	difficulty chart.Difficulty
}

// Snapshot is a copy of the accumulated values.
type Snapshot[A comparable] struct {
	Score      int
	Combo      int
	MaxCombo   int
	Hits       map[A]int
	Percentage float64
}

// New creates an empty accumulator. Updates with def are ignored.
func New[A comparable](def A) *State[A] {
	return &State[A]{
		def:      def,
		hits:     make(map[A]int),
		breakers: make(map[A]bool),
		scoring:  make(map[A]Func),
		weights:  make(map[A]float64),
	}
}

// Register sets a fixed number of points per hit of accuracy.
func (s *State[A]) Register(accuracy A, points int) {
	s.scoring[accuracy] = Points(points)
}

// RegisterFunc sets a chart-aware scoring rule. The last registration for
// an accuracy wins.
func (s *State[A]) RegisterFunc(accuracy A, fn Func) error {
	if fn == nil {
		return ir.NewConfigError(ir.ErrCodeNilConfigurator, "scoring function for %v is nil", accuracy)
	}
	s.scoring[accuracy] = fn
	return nil
}

// SetComboBreaker marks or unmarks accuracy as resetting the combo.
func (s *State[A]) SetComboBreaker(accuracy A, breaks bool) {
	if breaks {
		s.breakers[accuracy] = true
		return
	}
	delete(s.breakers, accuracy)
}

// IsComboBreaker reports whether accuracy resets the combo.
func (s *State[A]) IsComboBreaker(accuracy A) bool {
	return s.breakers[accuracy]
}

// SetWeight sets how much one hit of accuracy contributes to the
// percentage, where 1 is a full hit.
func (s *State[A]) SetWeight(accuracy A, weight float64) {
	s.weights[accuracy] = weight
}

// Bind attaches the chart and difficulty passed to scoring functions and
// used as the percentage denominator.
func (s *State[A]) Bind(c *chart.Chart, d chart.Difficulty) {
	s.chart = c
	s.difficulty = d
}

// Update records hits of accuracy. Updates with the default accuracy are
// ignored; a non-positive hit count is rejected and changes nothing.
func (s *State[A]) Update(accuracy A, hits int) error {
	if accuracy == s.def {
		return nil
	}
	if hits <= 0 {
		return ir.NewConfigError(ir.ErrCodeInvalidHits, "hits must be positive, got %d", hits)
	}

	s.hits[accuracy] += hits
	if s.breakers[accuracy] {
		s.combo = 0
	} else {
		s.combo += hits
	}
	if s.combo > s.maxCombo {
		s.maxCombo = s.combo
	}
	if fn, ok := s.scoring[accuracy]; ok {
		s.score += fn(s.chart, s.difficulty) * hits
	}
	s.percentage = s.computePercentage()
	return nil
}

func (s *State[A]) computePercentage() float64 {
	if s.chart == nil || len(s.weights) == 0 {
		return 0
	}
	total := s.chart.PlayableEventCount(s.difficulty)
	if total == 0 {
		return 0
	}
	var weighted float64
	for accuracy, n := range s.hits {
		weighted += float64(n) * s.weights[accuracy]
	}
	return weighted / float64(total) * 100
}

// Reset zeroes counters, score, combo, and max combo. Rules, weights, and
// the bound chart are kept.
func (s *State[A]) Reset() {
	s.score = 0
	s.combo = 0
	s.maxCombo = 0
	s.percentage = 0
	s.hits = make(map[A]int)
}

// Score returns the accumulated score.
func (s *State[A]) Score() int { return s.score }

// Combo returns the running combo.
func (s *State[A]) Combo() int { return s.combo }

// MaxCombo returns the best combo reached.
func (s *State[A]) MaxCombo() int { return s.maxCombo }

// Hits returns the hit count of accuracy.
func (s *State[A]) Hits(accuracy A) int { return s.hits[accuracy] }

// Percentage returns the weighted-hit percentage over all playable events.
func (s *State[A]) Percentage() float64 { return s.percentage }

// Snapshot copies the accumulated values.
func (s *State[A]) Snapshot() Snapshot[A] {
	hits := make(map[A]int, len(s.hits))
	for k, v := range s.hits {
		hits[k] = v
	}
	return Snapshot[A]{
		Score:      s.score,
		Combo:      s.combo,
		MaxCombo:   s.maxCombo,
		Hits:       hits,
		Percentage: s.percentage,
	}
}
