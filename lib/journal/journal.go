// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/routines/lib/sqlitepool"
)

// Entry is one run of one routine. The harness fills every field;
// Error is empty for runs that returned no error.
type Entry struct {
	InvocationID string
	Routine      string
	StartedAt    time.Time
	FinishedAt   time.Time
	NewSession   bool
	Committed    bool
	ResultBytes  int64
	Error        string
}

// Config holds the parameters for opening a journal.
type Config struct {
	// Path is the SQLite database file. The parent directory must
	// exist. Required.
	Path string

	// PoolSize is forwarded to the connection pool. Zero uses the
	// pool's default.
	PoolSize int

	// Logger is required.
	Logger *slog.Logger
}

// Store reads and writes run history. Safe for concurrent use.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

const schema = `
	CREATE TABLE IF NOT EXISTS run (
		invocation_id TEXT PRIMARY KEY,
		routine       TEXT NOT NULL,
		started_at    INTEGER NOT NULL,
		finished_at   INTEGER NOT NULL,
		new_session   INTEGER NOT NULL,
		committed     INTEGER NOT NULL,
		result_bytes  INTEGER NOT NULL,
		error         TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_run_routine ON run(routine, started_at);
	CREATE INDEX IF NOT EXISTS idx_run_started ON run(started_at);
`

// Open creates the journal, creating the database file and schema if
// they do not exist.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal: Path is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("journal: Logger is required")
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   cfg.Logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}

	return &Store{pool: pool, logger: cfg.Logger}, nil
}

// Record writes one entry. Re-recording an invocation ID replaces the
// earlier row, so a run that is journaled mid-flight and again at the
// end keeps only the final state.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.InvocationID == "" {
		return fmt.Errorf("journal: entry has no invocation ID")
	}
	if entry.Routine == "" {
		return fmt.Errorf("journal: entry has no routine name")
	}

	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT OR REPLACE INTO run
				(invocation_id, routine, started_at, finished_at,
				 new_session, committed, result_bytes, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					entry.InvocationID,
					entry.Routine,
					entry.StartedAt.UnixNano(),
					entry.FinishedAt.UnixNano(),
					boolToInt(entry.NewSession),
					boolToInt(entry.Committed),
					entry.ResultBytes,
					entry.Error,
				},
			})
	})
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", entry.InvocationID, err)
	}
	return nil
}

// Recent returns the most recent entries, newest first. An empty
// routine name returns entries for all routines. A non-positive limit
// defaults to 20.
func (s *Store) Recent(ctx context.Context, routineName string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT invocation_id, routine, started_at, finished_at,
		       new_session, committed, result_bytes, error
		FROM run`
	args := []any{}
	if routineName != "" {
		query += " WHERE routine = ?"
		args = append(args, routineName)
	}
	query += " ORDER BY started_at DESC, invocation_id LIMIT ?"
	args = append(args, limit)

	var entries []Entry
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entries = append(entries, Entry{
					InvocationID: stmt.ColumnText(0),
					Routine:      stmt.ColumnText(1),
					StartedAt:    time.Unix(0, stmt.ColumnInt64(2)).UTC(),
					FinishedAt:   time.Unix(0, stmt.ColumnInt64(3)).UTC(),
					NewSession:   stmt.ColumnInt(4) != 0,
					Committed:    stmt.ColumnInt(5) != 0,
					ResultBytes:  stmt.ColumnInt64(6),
					Error:        stmt.ColumnText(7),
				})
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	return entries, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
