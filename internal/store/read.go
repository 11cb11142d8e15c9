package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const sessionColumns = `id, chart_hash, title, difficulty, score, max_combo, percentage, hits, seq, engine_version`

// ReadSessions returns every session stored for a chart hash.
// Ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadSessions(ctx context.Context, chartHash string) ([]Session, error) {
	return s.FindSessions(ctx, SessionQuery{Filter: Equals{Field: "chart_hash", Value: chartHash}})
}

// ReadSession retrieves a single session by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

// BestSession returns the highest-scoring session of a chart difficulty.
// Ties go to the earliest session. The bool is false if none exist.
func (s *Store) BestSession(ctx context.Context, chartHash, difficulty string) (Session, bool, error) {
	sessions, err := s.FindSessions(ctx, SessionQuery{
		Filter: And{Predicates: []Predicate{
			Equals{Field: "chart_hash", Value: chartHash},
			Equals{Field: "difficulty", Value: difficulty},
		}},
		OrderBy: "score",
		Desc:    true,
		Limit:   1,
	})
	if err != nil {
		return Session{}, false, err
	}
	if len(sessions) == 0 {
		return Session{}, false, nil
	}
	return sessions[0], true, nil
}

// ReadJudgments returns the judgments of a session.
// Ordered deterministically: ORDER BY seq ASC, event_id ASC.
//
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadJudgments(ctx context.Context, sessionID string) ([]Judgment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, event_id, accuracy, hits, position, latency
		FROM judgments
		WHERE session_id = ?
		ORDER BY seq ASC, event_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query judgments: %w", err)
	}
	defer rows.Close()

	judgments := []Judgment{}
	for rows.Next() {
		var j Judgment
		if err := rows.Scan(&j.SessionID, &j.Seq, &j.EventID, &j.Accuracy, &j.Hits, &j.Position, &j.Latency); err != nil {
			return nil, fmt.Errorf("scan judgment: %w", err)
		}
		judgments = append(judgments, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate judgments: %w", err)
	}
	return judgments, nil
}

// LastSeq returns the highest seq stored in any table, or 0 for an empty
// store. Seed an engine clock with it to keep seq numbers unique across
// sessions.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM sessions), 0),
			COALESCE((SELECT MAX(seq) FROM judgments), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var sess Session
	var hitsJSON string
	if err := row.Scan(
		&sess.ID,
		&sess.ChartHash,
		&sess.Title,
		&sess.Difficulty,
		&sess.Score,
		&sess.MaxCombo,
		&sess.Percentage,
		&hitsJSON,
		&sess.Seq,
		&sess.EngineVersion,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}

	hits, err := unmarshalHits(hitsJSON)
	if err != nil {
		return Session{}, err
	}
	sess.Hits = hits
	return sess, nil
}
