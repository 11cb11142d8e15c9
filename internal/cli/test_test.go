package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")
	harnessGolden    = filepath.Join("..", "harness", "testdata", "golden")
)

func TestTestCommandPassesWithGolden(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{harnessScenarios, "--golden", harnessGolden})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ perfect_run")
	assert.Contains(t, buf.String(), "✓ All scenarios passed")
}

func TestTestCommandJSONFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{harnessScenarios, "--golden", harnessGolden, "--filter", "tempo_*"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "tempo_stop", resp.Data.Scenarios[0].Name)
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{harnessScenarios, "--golden", golden, "--update"})
	require.NoError(t, cmd.Execute())

	written, err := os.ReadFile(filepath.Join(golden, "perfect_run.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(harnessGolden, "perfect_run.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	// Corrupt one golden file; only that scenario fails.
	require.NoError(t, os.WriteFile(filepath.Join(golden, "pause_resume.golden"), []byte("{}\n"), 0644))

	buf := &bytes.Buffer{}
	cmd = NewTestCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{harnessScenarios, "--golden", golden})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTestCommandFailingExpectation(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: wrong_score
description: "Expects a score the run cannot produce"
chart:
  title: One
  bpm: 120
  difficulties:
    normal:
      notes:
        - {id: 1, position: 1.0, lane: 1}
steps:
  - tick: 1
  - advance: 2
  - tick: 1
  - advance: 2
  - tick: 1
  - press: 1
expect:
  score: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_score.yaml"), []byte(scenario), 0644))

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ wrong_score")
	assert.Contains(t, buf.String(), "score")
}

func TestTestCommandEmptyAndMissing(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No scenarios found.")

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"/nonexistent/scenarios"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
