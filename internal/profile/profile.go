package profile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/beatline/internal/judgment"
	"github.com/roach88/beatline/internal/score"
)

// Profile holds the judgment windows and scoring tables for the built-in
// accuracies. Map keys are accuracy names.
type Profile struct {
	Name          string             `yaml:"name"`
	Windows       map[string]float64 `yaml:"windows"`
	Points        map[string]int     `yaml:"points"`
	Weights       map[string]float64 `yaml:"weights"`
	ComboBreakers []string           `yaml:"combo_breakers"`
}

// Default returns the built-in profile.
func Default() Profile {
	return Profile{
		Name: "default",
		Windows: map[string]float64{
			"perfect": 0.040,
			"great":   0.080,
			"good":    0.120,
			"bad":     0.160,
		},
		Points: map[string]int{
			"perfect": 1000,
			"great":   700,
			"good":    400,
			"bad":     100,
			"miss":    0,
		},
		Weights: map[string]float64{
			"perfect": 1.0,
			"great":   0.75,
			"good":    0.5,
			"bad":     0.25,
			"miss":    0,
		},
		ComboBreakers: []string{"bad", "miss"},
	}
}

// Load decodes a profile document and overlays it on Default. Unknown
// fields and unknown accuracy names are rejected.
func Load(r io.Reader) (Profile, error) {
	var override Profile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&override); err != nil && err != io.EOF {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}

	if err := override.canonicalize(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}
	p := Default().merge(override)
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

// LoadFile reads a profile from path.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}
	return Load(bytes.NewReader(data))
}

func (p Profile) merge(o Profile) Profile {
	out := Profile{
		Name:          p.Name,
		Windows:       copyMap(p.Windows),
		Points:        copyMap(p.Points),
		Weights:       copyMap(p.Weights),
		ComboBreakers: append([]string(nil), p.ComboBreakers...),
	}
	if o.Name != "" {
		out.Name = o.Name
	}
	for k, v := range o.Windows {
		out.Windows[k] = v
	}
	for k, v := range o.Points {
		out.Points[k] = v
	}
	for k, v := range o.Weights {
		out.Weights[k] = v
	}
	if o.ComboBreakers != nil {
		out.ComboBreakers = append([]string(nil), o.ComboBreakers...)
	}
	return out
}

// canonicalize rewrites accuracy keys to their canonical names so overrides
// replace defaults regardless of spelling.
func (p *Profile) canonicalize() error {
	var err error
	if p.Windows, err = canonicalKeys("windows", p.Windows); err != nil {
		return err
	}
	if p.Points, err = canonicalKeys("points", p.Points); err != nil {
		return err
	}
	if p.Weights, err = canonicalKeys("weights", p.Weights); err != nil {
		return err
	}
	for i, name := range p.ComboBreakers {
		a, err := ParseAccuracy(name)
		if err != nil {
			return fmt.Errorf("combo_breakers: %w", err)
		}
		p.ComboBreakers[i] = a.String()
	}
	return nil
}

func canonicalKeys[V any](field string, m map[string]V) (map[string]V, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]V, len(m))
	seen := make(map[Accuracy]string, len(m))
	for name, v := range m {
		a, err := ParseAccuracy(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		if prev, ok := seen[a]; ok {
			return nil, fmt.Errorf("%s: %q and %q name the same accuracy", field, prev, name)
		}
		seen[a] = name
		out[a.String()] = v
	}
	return out, nil
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate checks every accuracy name and window. Two keys naming the same
// accuracy are an error.
func (p Profile) Validate() error {
	for field, names := range map[string][]string{
		"windows": keysOf(p.Windows),
		"points":  keysOf(p.Points),
		"weights": keysOf(p.Weights),
	} {
		if err := checkDuplicates(field, names); err != nil {
			return err
		}
	}
	for name, w := range p.Windows {
		a, err := ParseAccuracy(name)
		if err != nil {
			return fmt.Errorf("windows: %w", err)
		}
		if a == None {
			return fmt.Errorf("windows: %q is the default accuracy", name)
		}
		if w < 0 {
			return fmt.Errorf("windows: %s must be non-negative, got %g", name, w)
		}
	}
	for name := range p.Points {
		if _, err := ParseAccuracy(name); err != nil {
			return fmt.Errorf("points: %w", err)
		}
	}
	for name := range p.Weights {
		if _, err := ParseAccuracy(name); err != nil {
			return fmt.Errorf("weights: %w", err)
		}
	}
	for _, name := range p.ComboBreakers {
		if _, err := ParseAccuracy(name); err != nil {
			return fmt.Errorf("combo_breakers: %w", err)
		}
	}
	return nil
}

// ConfigureJudgment registers the profile windows, best accuracy first so
// the tightest window matches before the wider ones.
func (p Profile) ConfigureJudgment(j *judgment.Judgment[Accuracy]) error {
	windows, err := parseKeys(p.Windows)
	if err != nil {
		return err
	}
	sort.Slice(windows, func(a, b int) bool { return windows[a].acc > windows[b].acc })
	for _, w := range windows {
		if err := j.Register(w.acc, w.val); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureScore registers points, weights, and combo breakers.
func (p Profile) ConfigureScore(s *score.State[Accuracy]) error {
	points, err := parseKeys(p.Points)
	if err != nil {
		return err
	}
	for _, pt := range points {
		s.Register(pt.acc, pt.val)
	}
	weights, err := parseKeys(p.Weights)
	if err != nil {
		return err
	}
	for _, w := range weights {
		s.SetWeight(w.acc, w.val)
	}
	for _, name := range p.ComboBreakers {
		a, err := ParseAccuracy(name)
		if err != nil {
			return err
		}
		s.SetComboBreaker(a, true)
	}
	return nil
}

// NewJudgment returns a judgment over the built-in accuracies configured
// from p.
func (p Profile) NewJudgment() (*judgment.Judgment[Accuracy], error) {
	j := judgment.New(Perfect, Miss, None)
	if err := p.ConfigureJudgment(j); err != nil {
		return nil, err
	}
	return j, nil
}

// NewScore returns a score accumulator configured from p.
func (p Profile) NewScore() (*score.State[Accuracy], error) {
	s := score.New(None)
	if err := p.ConfigureScore(s); err != nil {
		return nil, err
	}
	return s, nil
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func checkDuplicates(field string, names []string) error {
	seen := make(map[Accuracy]string, len(names))
	for _, name := range names {
		a, err := ParseAccuracy(name)
		if err != nil {
			continue
		}
		if prev, ok := seen[a]; ok {
			return fmt.Errorf("%s: %q and %q name the same accuracy", field, prev, name)
		}
		seen[a] = name
	}
	return nil
}

type entry[V any] struct {
	acc Accuracy
	val V
}

func parseKeys[V any](m map[string]V) ([]entry[V], error) {
	out := make([]entry[V], 0, len(m))
	for name, v := range m {
		a, err := ParseAccuracy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, entry[V]{acc: a, val: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].acc < out[j].acc })
	return out, nil
}
