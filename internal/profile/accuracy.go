// Package profile defines the built-in accuracy grades, lane channels, and
// the default judgment and scoring tables, overridable from YAML files.
package profile

import (
	"fmt"
	"strings"
)

// Accuracy is the built-in judgment grade. Higher values are better hits.
type Accuracy int

const (
	// None is the default accuracy: the event is not yet in range.
	None Accuracy = iota
	// Miss is the lowest accuracy: the event can no longer be hit.
	Miss
	Bad
	Good
	Great
	// Perfect is the highest accuracy.
	Perfect
)

var accuracyNames = [...]string{"none", "miss", "bad", "good", "great", "perfect"}

// Accuracies lists every grade except None, best first.
func Accuracies() []Accuracy {
	return []Accuracy{Perfect, Great, Good, Bad, Miss}
}

func (a Accuracy) String() string {
	if a < None || int(a) >= len(accuracyNames) {
		return fmt.Sprintf("accuracy(%d)", int(a))
	}
	return accuracyNames[a]
}

// ParseAccuracy parses a case-insensitive accuracy name.
func ParseAccuracy(s string) (Accuracy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range accuracyNames {
		if n == name {
			return Accuracy(i), nil
		}
	}
	return None, fmt.Errorf("unknown accuracy %q", s)
}

// MarshalYAML encodes the accuracy by name.
func (a Accuracy) MarshalYAML() (any, error) {
	return a.String(), nil
}

// MarshalText encodes the accuracy by name.
func (a Accuracy) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an accuracy name.
func (a *Accuracy) UnmarshalText(text []byte) error {
	v, err := ParseAccuracy(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Lane is the built-in channel type. Background notes are never playable.
type Lane int32

const (
	Background Lane = 0

	// Lanes is the number of playable lanes, numbered 1..Lanes.
	Lanes = 8
)

// Valid reports whether l is Background or a playable lane.
func (l Lane) Valid() bool {
	return l >= Background && l <= Lanes
}

func (l Lane) String() string {
	if l == Background {
		return "bg"
	}
	return fmt.Sprintf("lane%d", int32(l))
}
