// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// connectionPragmas run once per connection before it is handed out.
// journal_mode cannot change inside a transaction, so each statement
// executes on its own rather than as a script.
var connectionPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

// Config holds the parameters for opening a pool. Path is required;
// everything else has a usable default.
type Config struct {
	// Path is the SQLite database file. The parent directory must
	// exist; the file is created on first use. ":memory:" works only
	// with PoolSize 1, since each in-memory connection is its own
	// database.
	Path string

	// PoolSize caps the number of open connections. Zero or negative
	// means 2, enough for the append-mostly history stores this
	// project keeps: one writer plus an occasional reader. SQLite
	// serializes writes regardless, so larger pools only help
	// concurrent reads.
	PoolSize int

	// Logger receives open and close messages. Nil discards them.
	Logger *slog.Logger

	// OnConnect runs once per connection after the pragmas, for
	// schema creation and other per-connection setup. An error here
	// discards the connection and surfaces from the [Pool.With] call
	// that triggered it.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool hands out SQLite connections scoped to a callback. Connections
// never leave the package: all work goes through [Pool.With], which
// guarantees the borrow is returned no matter how the callback exits.
//
// Pool is safe for concurrent use.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Connections open lazily, so a bad OnConnect
// or an unwritable file may not surface until the first With.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	size := cfg.PoolSize
	if size <= 0 {
		size = 2
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: size,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range connectionPragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
				}
			}
			if cfg.OnConnect == nil {
				return nil
			}
			if err := cfg.OnConnect(conn); err != nil {
				return fmt.Errorf("sqlitepool: OnConnect: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", size)
	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

// With borrows a connection, calls fn with it, and returns the borrow.
// It blocks until a connection is free or ctx is done. The connection
// goes back even when fn panics. Errors from fn pass through
// unwrapped; the connection must not be retained after fn returns.
func (p *Pool) With(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlitepool: borrow: %w", err)
	}
	defer p.inner.Put(conn)
	return fn(conn)
}

// Close waits for outstanding borrows and closes every connection.
// After Close, With fails.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close error", "path", p.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}
