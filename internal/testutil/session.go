package testutil

// DefaultSessionID is returned by a FixedSessionGenerator built with an
// empty id.
const DefaultSessionID = "test-session-default"

// FixedSessionGenerator returns the same session id every time.
//
// Unlike engine.FixedGenerator which returns ids in sequence and panics
// when exhausted, this generator never runs out, so a scenario can render
// any number of sessions and still produce byte-identical traces.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id.
//
// The id is typically set in the scenario YAML:
//
//	session: "test-session-0001"
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements engine.SessionIDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
