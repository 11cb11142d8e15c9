// Package store provides SQLite-backed storage for finished render
// sessions and their judgments.
//
// The store is append-only:
//   - Sessions: one row per completed render (chart hash, difficulty,
//     final score, max combo, percentage, per-accuracy hits)
//   - Judgments: one row per committed judgment of a session
//
// # Critical Patterns
//
// Logical Time
//   - All ordering uses seq INTEGER from the engine's logical clock,
//     NEVER timestamps
//   - LastSeq lets a new engine clock continue numbering after stored rows
//
// Deterministic Query Results
//   - Every list query orders by seq ASC with an id tiebreaker
//
// Idempotent Writes
//   - Rewriting a session or a (session, event) judgment is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: 5 seconds unless WithBusyTimeout says otherwise
//   - foreign_keys=ON: Enforce referential integrity
package store
