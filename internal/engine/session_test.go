package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := gen.Generate()
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
		require.False(t, seen[id], "session id %s generated twice", id)
		seen[id] = true
	}
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("session-1", "session-2")

	assert.Equal(t, "session-1", gen.Generate())
	assert.Equal(t, "session-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() }, "exhausted generator panics")
}

func TestFixedGenerator_Empty(t *testing.T) {
	assert.Panics(t, func() { NewFixedGenerator().Generate() })
}
