package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "file name must match scenario name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Format(t *testing.T) {
	result := NewResult()
	result.Session = "s"
	result.Difficulty = "normal"
	result.addTrace(TraceEvent{Type: TraceInstantiate, Event: 4, Position: -0.1 + 1e-12})
	result.addTrace(TraceEvent{Type: TraceCompleted, Seq: 2})

	data, err := Snapshot("fmt", result)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `{"difficulty":"normal","scenario":"fmt","session":"s"}`, lines[0])
	assert.Equal(t, `{"event":4,"position":-0.1,"type":"instantiate"}`, lines[1])
	assert.Equal(t, `{"seq":2,"type":"completed"}`, lines[2])
	assert.Equal(t, `{"combo":0,"completed":false,"hits":{},"max_combo":0,"percentage":0,"score":0,"type":"summary"}`, lines[3])
}
