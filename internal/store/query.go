package store

import (
	"context"
	"fmt"
	"strings"
)

// Predicate is one WHERE term over session columns.
type Predicate interface {
	predicate()
}

// Equals matches rows whose Field equals Value.
type Equals struct {
	Field string
	Value any
}

// AtLeast matches rows whose Field is >= Value.
type AtLeast struct {
	Field string
	Value any
}

// And is the conjunction of its predicates. An empty And matches all rows.
type And struct {
	Predicates []Predicate
}

func (Equals) predicate()  {}
func (AtLeast) predicate() {}
func (And) predicate()     {}

// SessionQuery selects stored sessions.
//
// Every compiled query ends in the stable order seq ASC, id ASC, so
// OrderBy only decides which rows come first; ties stay deterministic.
type SessionQuery struct {
	Filter  Predicate
	OrderBy string // optional leading sort column
	Desc    bool   // sort OrderBy descending
	Limit   int    // 0 = no limit
}

// sessionFields are the columns queries may reference. hits is stored as
// JSON and cannot be filtered on.
var sessionFields = map[string]bool{
	"id":             true,
	"chart_hash":     true,
	"title":          true,
	"difficulty":     true,
	"score":          true,
	"max_combo":      true,
	"percentage":     true,
	"seq":            true,
	"engine_version": true,
}

const stableOrder = "seq ASC, id COLLATE BINARY ASC"

// Compile converts the query to parameterized SQL.
// Values are never interpolated; every value becomes a ? parameter.
func (q SessionQuery) Compile() (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + sessionColumns + " FROM sessions")

	var params []any
	if q.Filter != nil {
		where, whereParams, err := compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE " + where)
		params = whereParams
	}

	sb.WriteString(" ORDER BY ")
	if q.OrderBy != "" {
		if !sessionFields[q.OrderBy] {
			return "", nil, fmt.Errorf("unknown order field %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		sb.WriteString(q.OrderBy + " " + dir + ", ")
	}
	sb.WriteString(stableOrder)

	switch {
	case q.Limit < 0:
		return "", nil, fmt.Errorf("limit must not be negative, got %d", q.Limit)
	case q.Limit > 0:
		sb.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return sb.String(), params, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileComparison(pred.Field, "=", pred.Value)
	case AtLeast:
		return compileComparison(pred.Field, ">=", pred.Value)
	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil // vacuous truth
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := compilePredicate(sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileComparison(field, op string, value any) (string, []any, error) {
	if !sessionFields[field] {
		return "", nil, fmt.Errorf("unknown field %q", field)
	}
	param, err := toParam(value)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", field, err)
	}
	return fmt.Sprintf("%s %s ?", field, op), []any{param}, nil
}

// toParam accepts the scalar types the sessions table stores.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string, int64, float64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// FindSessions returns the sessions matching q.
//
// Returns an empty slice (not nil) if none match.
func (s *Store) FindSessions(ctx context.Context, q SessionQuery) ([]Session, error) {
	query, params, err := q.Compile()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
