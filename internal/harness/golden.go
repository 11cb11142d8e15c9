package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/beatline/internal/ir"
)

// GoldenDir is where golden traces live, relative to the test package.
const GoldenDir = "testdata/golden"

// Snapshot renders a result as golden-file bytes: a header line, one line
// per trace event and a score summary line, each canonical JSON.
func Snapshot(name string, result *Result) ([]byte, error) {
	var buf bytes.Buffer
	write := func(v map[string]any) error {
		line, err := ir.MarshalCanonical(v)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
		return nil
	}

	if err := write(map[string]any{
		"scenario":   name,
		"session":    result.Session,
		"difficulty": result.Difficulty,
	}); err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	for i, e := range result.Trace {
		if err := write(e.canonical()); err != nil {
			return nil, fmt.Errorf("snapshot trace[%d]: %w", i, err)
		}
	}

	hits := make(map[string]any, len(result.Score.Hits))
	for acc, n := range result.Score.Hits {
		hits[acc.String()] = n
	}
	if err := write(map[string]any{
		"type":       "summary",
		"score":      result.Score.Score,
		"combo":      result.Score.Combo,
		"max_combo":  result.Score.MaxCombo,
		"percentage": round(result.Score.Percentage),
		"hits":       hits,
		"completed":  result.Completed,
	}); err != nil {
		return nil, fmt.Errorf("snapshot summary: %w", err)
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
