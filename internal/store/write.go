package store

import (
	"context"
	"fmt"
)

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting a session is
// silently ignored.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	hitsJSON, err := marshalHits(sess.Hits)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, chart_hash, title, difficulty, score, max_combo, percentage, hits, seq, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.ChartHash,
		sess.Title,
		sess.Difficulty,
		sess.Score,
		sess.MaxCombo,
		sess.Percentage,
		hitsJSON,
		sess.Seq,
		sess.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteJudgments inserts the judgments of a session in one transaction.
// A judgment for an event already stored under the session is ignored.
//
// Note: The session must exist (foreign key constraint).
func (s *Store) WriteJudgments(ctx context.Context, judgments []Judgment) error {
	if len(judgments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write judgments: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO judgments
		(session_id, seq, event_id, accuracy, hits, position, latency)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, event_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write judgments: prepare: %w", err)
	}
	defer stmt.Close()

	for _, j := range judgments {
		if _, err := stmt.ExecContext(ctx,
			j.SessionID,
			j.Seq,
			j.EventID,
			j.Accuracy,
			j.Hits,
			j.Position,
			j.Latency,
		); err != nil {
			return fmt.Errorf("write judgments: event %d: %w", j.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write judgments: commit: %w", err)
	}
	return nil
}

// WriteResult stores a session and its judgments atomically.
func (s *Store) WriteResult(ctx context.Context, sess Session, judgments []Judgment) error {
	hitsJSON, err := marshalHits(sess.Hits)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write result: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions
		(id, chart_hash, title, difficulty, score, max_combo, percentage, hits, seq, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID, sess.ChartHash, sess.Title, sess.Difficulty, sess.Score,
		sess.MaxCombo, sess.Percentage, hitsJSON, sess.Seq, sess.EngineVersion,
	); err != nil {
		return fmt.Errorf("write result: session: %w", err)
	}

	for _, j := range judgments {
		if j.SessionID != sess.ID {
			return fmt.Errorf("write result: judgment for event %d belongs to session %q, not %q", j.EventID, j.SessionID, sess.ID)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO judgments
			(session_id, seq, event_id, accuracy, hits, position, latency)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, event_id) DO NOTHING
		`, j.SessionID, j.Seq, j.EventID, j.Accuracy, j.Hits, j.Position, j.Latency); err != nil {
			return fmt.Errorf("write result: event %d: %w", j.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write result: commit: %w", err)
	}
	return nil
}
