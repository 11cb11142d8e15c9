package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/beatline/internal/ir"
)

// marshalHits converts per-accuracy counts to canonical JSON TEXT so equal
// sessions store byte-identical rows.
func marshalHits(hits map[string]int) (string, error) {
	m := make(map[string]any, len(hits))
	for k, v := range hits {
		m[k] = v
	}
	data, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal hits: %w", err)
	}
	return string(data), nil
}

// unmarshalHits parses the hits column. Empty input yields an empty map.
func unmarshalHits(data string) (map[string]int, error) {
	hits := map[string]int{}
	if data == "" || data == "{}" {
		return hits, nil
	}
	if err := json.Unmarshal([]byte(data), &hits); err != nil {
		return nil, fmt.Errorf("unmarshal hits: %w", err)
	}
	return hits, nil
}
