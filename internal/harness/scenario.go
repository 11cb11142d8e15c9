package harness

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/beatline/internal/chartio"
	"github.com/roach88/beatline/internal/engine"
	"github.com/roach88/beatline/internal/profile"
)

// Scenario defines a scripted render session and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the fixed session id. Defaults to testutil.DefaultSessionID.
	Session string `yaml:"session,omitempty"`

	// Difficulty selects the sheet to render. May be omitted when the chart
	// has exactly one difficulty.
	Difficulty string `yaml:"difficulty,omitempty"`

	// Config overlays engine.DefaultRenderConfig when loaded from YAML.
	Config engine.RenderConfig `yaml:"config,omitempty"`

	// Profile optionally overrides the built-in profile. It is decoded
	// with profile.Load, so unknown fields are rejected there.
	Profile yaml.Node `yaml:"profile,omitempty"`

	// Chart is the inline chart document.
	Chart chartio.Document `yaml:"chart"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Expect is checked after the last step. Unset fields are not checked.
	Expect Expect `yaml:"expect,omitempty"`
}

// Step is one scenario action. Exactly one field must be set.
type Step struct {
	// Advance moves the clock forward by this many seconds.
	Advance float64 `yaml:"advance,omitempty"`

	// Tick runs the Transport this many times.
	Tick int `yaml:"tick,omitempty"`

	// Press judges the front note of this lane.
	Press *int32 `yaml:"press,omitempty"`

	// Judge commits an explicit accuracy for an event.
	Judge *JudgeStep `yaml:"judge,omitempty"`

	Pause  bool  `yaml:"pause,omitempty"`
	Resume bool  `yaml:"resume,omitempty"`
	Ready  *bool `yaml:"ready,omitempty"`
}

// JudgeStep commits Accuracy for the event with ID.
type JudgeStep struct {
	ID       int64  `yaml:"id"`
	Accuracy string `yaml:"accuracy"`
	Hits     int    `yaml:"hits,omitempty"` // defaults to 1
}

// Expect lists the final-state values to check.
type Expect struct {
	Score      *int           `yaml:"score,omitempty"`
	Combo      *int           `yaml:"combo,omitempty"`
	MaxCombo   *int           `yaml:"max_combo,omitempty"`
	Percentage *float64       `yaml:"percentage,omitempty"`
	Hits       map[string]int `yaml:"hits,omitempty"`
	Completed  *bool          `yaml:"completed,omitempty"`
	Position   *float64       `yaml:"position,omitempty"`
}

// action names the step's action, or "" when none or several are set.
func (s Step) action() string {
	var names []string
	if s.Advance != 0 {
		names = append(names, "advance")
	}
	if s.Tick != 0 {
		names = append(names, "tick")
	}
	if s.Press != nil {
		names = append(names, "press")
	}
	if s.Judge != nil {
		names = append(names, "judge")
	}
	if s.Pause {
		names = append(names, "pause")
	}
	if s.Resume {
		names = append(names, "resume")
	}
	if s.Ready != nil {
		names = append(names, "ready")
	}
	if len(names) != 1 {
		return ""
	}
	return names[0]
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario document. Config fields that are not
// given keep their engine.DefaultRenderConfig values.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Config: engine.DefaultRenderConfig()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Chart.Difficulties) == 0 {
		return fmt.Errorf("chart must define at least one difficulty")
	}
	if s.Difficulty != "" {
		if !hasDifficulty(s.Chart, s.Difficulty) {
			return fmt.Errorf("difficulty %q not in chart", s.Difficulty)
		}
	} else if len(s.Chart.Difficulties) > 1 {
		return fmt.Errorf("difficulty is required when the chart has several")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for name := range s.Expect.Hits {
		if _, err := profile.ParseAccuracy(name); err != nil {
			return fmt.Errorf("expect.hits: %w", err)
		}
	}
	return nil
}

// hasDifficulty compares names the way chartio.Build stores them, NFC
// normalized.
func hasDifficulty(doc chartio.Document, name string) bool {
	want := norm.NFC.String(name)
	for d := range doc.Difficulties {
		if norm.NFC.String(d) == want {
			return true
		}
	}
	return false
}

func validateStep(index int, s Step) error {
	switch s.action() {
	case "":
		return fmt.Errorf("steps[%d]: exactly one action is required", index)
	case "advance":
		if s.Advance < 0 {
			return fmt.Errorf("steps[%d]: advance must be positive, got %g", index, s.Advance)
		}
	case "tick":
		if s.Tick < 0 {
			return fmt.Errorf("steps[%d]: tick must be positive, got %d", index, s.Tick)
		}
	case "press":
		if !profile.Lane(*s.Press).Valid() || *s.Press == int32(profile.Background) {
			return fmt.Errorf("steps[%d]: press lane %d out of range", index, *s.Press)
		}
	case "judge":
		if _, err := profile.ParseAccuracy(s.Judge.Accuracy); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		if s.Judge.Hits < 0 {
			return fmt.Errorf("steps[%d]: hits must be positive, got %d", index, s.Judge.Hits)
		}
	}
	return nil
}
