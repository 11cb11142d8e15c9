package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/chartio"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/timing"
)

// DifficultySummary describes one difficulty of a chart.
type DifficultySummary struct {
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	Events   int     `json:"events"`
	Playable int     `json:"playable"`
	Tempos   int     `json:"tempos"`
	Duration float64 `json:"duration_seconds"`
}

// ChartSummary describes a loaded chart.
type ChartSummary struct {
	Path         string              `json:"path"`
	Title        string              `json:"title"`
	Artist       string              `json:"artist,omitempty"`
	BPM          float64             `json:"bpm"`
	Hash         string              `json:"hash"`
	Difficulties []DifficultySummary `json:"difficulties"`
}

// loadChart reads a chart file and classifies failures into error codes.
func loadChart(path string) (*chart.Chart, string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, ErrCodeNotFound, fmt.Errorf("chart file not found: %s", path)
	}
	c, err := chartio.LoadFile(path)
	if err != nil {
		if ir.IsConfigError(err) {
			return nil, ErrCodeConfig, err
		}
		return nil, ErrCodeDecode, err
	}
	return c, "", nil
}

// summarizeChart computes per-difficulty counts and durations.
func summarizeChart(path string, c *chart.Chart) (ChartSummary, error) {
	hash, err := c.Hash()
	if err != nil {
		return ChartSummary{}, fmt.Errorf("failed to hash chart: %w", err)
	}

	summary := ChartSummary{
		Path:         path,
		Title:        c.Title,
		Artist:       c.Artist,
		BPM:          c.BPM,
		Hash:         hash,
		Difficulties: make([]DifficultySummary, 0, len(c.Difficulties())),
	}
	for _, d := range c.Difficulties() {
		summary.Difficulties = append(summary.Difficulties, summarizeDifficulty(c, d))
	}
	return summary, nil
}

func summarizeDifficulty(c *chart.Chart, d chart.Difficulty) DifficultySummary {
	events := c.Events(d)
	tempos := c.Tempos(d)

	var duration float64
	if len(events) > 0 {
		last := events[len(events)-1].Position()
		duration = timing.SecondsAt(last, c.BPM, tempos)
	}
	return DifficultySummary{
		Name:     string(d),
		Level:    c.Level(d),
		Events:   c.EventCount(d),
		Playable: c.PlayableEventCount(d),
		Tempos:   len(tempos),
		Duration: duration,
	}
}

// pickDifficulty returns name when given, otherwise the chart's first
// difficulty.
func pickDifficulty(c *chart.Chart, name string) (chart.Difficulty, error) {
	if name != "" {
		d := chart.Difficulty(name)
		if !c.Has(d) {
			return "", fmt.Errorf("difficulty %q not in chart (have %v)", name, c.Difficulties())
		}
		return d, nil
	}
	ds := c.Difficulties()
	if len(ds) == 0 {
		return "", errors.New("chart has no difficulties")
	}
	return ds[0], nil
}
