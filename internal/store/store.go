package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for session results.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

type config struct {
	busyTimeout time.Duration
	logger      *slog.Logger
}

// Option configures Open.
type Option func(*config)

// WithBusyTimeout sets how long a statement waits on a locked database.
// Default 5s.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *config) {
		c.busyTimeout = d
	}
}

// WithLogger sets the logger used for migration messages. Default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// migration upgrades a database to version. Statements must be safe to run
// against a database that schema.sql already brought up to date.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order to databases whose user_version is
// below their version.
var migrations = []migration{
	{
		version: 1,
		name:    "judgments session/seq index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_judgments_session_seq ON judgments(session_id, seq)`,
		},
	},
	{
		version: 2,
		name:    "best score index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_sessions_best ON sessions(chart_hash, difficulty, score DESC, seq)`,
		},
	},
}

// schemaVersion is the user_version of a fully migrated database.
func schemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Open creates or opens a SQLite database at path, applies pragmas and
// brings the schema up to date. Opening an existing database is safe.
//
// Connections run in WAL mode with synchronous=NORMAL, foreign keys on and
// a busy timeout. The pool is capped at one connection: SQLite allows a
// single writer.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{
		busyTimeout: 5 * time.Second,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: cfg.logger}
	if err := s.applyPragmas(cfg.busyTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyPragmas(busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// migrate creates missing tables, then applies pending migrations, each in
// its own transaction together with its user_version bump.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		s.logger.Info("store migrated", "version", m.version, "migration", m.name)
	}
	return nil
}

func (s *Store) apply(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not take parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
