package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionQuery_Compile(t *testing.T) {
	tests := []struct {
		name       string
		query      SessionQuery
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "no filter",
			query:   SessionQuery{},
			wantSQL: "SELECT " + sessionColumns + " FROM sessions ORDER BY seq ASC, id COLLATE BINARY ASC",
		},
		{
			name:       "equals",
			query:      SessionQuery{Filter: Equals{Field: "chart_hash", Value: "abc"}},
			wantSQL:    "SELECT " + sessionColumns + " FROM sessions WHERE chart_hash = ? ORDER BY seq ASC, id COLLATE BINARY ASC",
			wantParams: []any{"abc"},
		},
		{
			name: "and with order and limit",
			query: SessionQuery{
				Filter: And{Predicates: []Predicate{
					Equals{Field: "difficulty", Value: "hard"},
					AtLeast{Field: "score", Value: 500},
				}},
				OrderBy: "score",
				Desc:    true,
				Limit:   3,
			},
			wantSQL:    "SELECT " + sessionColumns + " FROM sessions WHERE difficulty = ? AND score >= ? ORDER BY score DESC, seq ASC, id COLLATE BINARY ASC LIMIT ?",
			wantParams: []any{"hard", int64(500), 3},
		},
		{
			name:    "empty and",
			query:   SessionQuery{Filter: And{}},
			wantSQL: "SELECT " + sessionColumns + " FROM sessions WHERE 1 = 1 ORDER BY seq ASC, id COLLATE BINARY ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := tt.query.Compile()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestSessionQuery_CompileRejects(t *testing.T) {
	tests := []struct {
		name  string
		query SessionQuery
		want  string
	}{
		{"unknown field", SessionQuery{Filter: Equals{Field: "name; DROP TABLE sessions", Value: "x"}}, "unknown field"},
		{"hits column", SessionQuery{Filter: Equals{Field: "hits", Value: "{}"}}, "unknown field"},
		{"unknown order", SessionQuery{OrderBy: "rowid"}, "unknown order field"},
		{"bad value", SessionQuery{Filter: Equals{Field: "score", Value: []int{1}}}, "unsupported value type"},
		{"negative limit", SessionQuery{Limit: -1}, "limit must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.query.Compile()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteSession(ctx, testSession("s-1", 1, 500)))
	require.NoError(t, s.WriteSession(ctx, testSession("s-2", 2, 900)))
	hard := testSession("s-3", 3, 700)
	hard.Difficulty = "hard"
	require.NoError(t, s.WriteSession(ctx, hard))

	got, err := s.FindSessions(ctx, SessionQuery{Filter: AtLeast{Field: "score", Value: 700}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s-2", got[0].ID)
	assert.Equal(t, "s-3", got[1].ID)

	got, err = s.FindSessions(ctx, SessionQuery{
		Filter:  Equals{Field: "difficulty", Value: "normal"},
		OrderBy: "score",
		Desc:    true,
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s-2", got[0].ID)

	got, err = s.FindSessions(ctx, SessionQuery{Filter: Equals{Field: "title", Value: "Missing"}})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = s.FindSessions(ctx, SessionQuery{OrderBy: "bogus"})
	assert.Error(t, err)
}
