package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash_Deterministic(t *testing.T) {
	doc := map[string]any{"bpm": 120.0, "title": "song"}

	h1, err := ContentHash(DomainChart, doc)
	require.NoError(t, err)
	h2, err := ContentHash(DomainChart, map[string]any{"title": "song", "bpm": 120.0})
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "key order must not matter")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestContentHash_DomainSeparation(t *testing.T) {
	doc := map[string]any{"id": 1}
	assert.NotEqual(t,
		MustContentHash(DomainChart, doc),
		MustContentHash(DomainSession, doc),
	)
}

func TestContentHash_ChangesWithContent(t *testing.T) {
	assert.NotEqual(t,
		MustContentHash(DomainChart, map[string]any{"bpm": 120.0}),
		MustContentHash(DomainChart, map[string]any{"bpm": 121.0}),
	)
}

func TestMustContentHash_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustContentHash(DomainChart, map[string]any{"x": nil})
	})
}
