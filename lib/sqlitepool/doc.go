// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens SQLite databases with the pragmas this
// project's history stores depend on and hands out connections scoped
// to a callback.
//
// The run journal (lib/journal) is the consumer: a local append-mostly
// file written once per run and read back for digests and the history
// command. That workload shapes the defaults here. WAL journal mode
// lets a reader scan history while a run is being recorded,
// synchronous=NORMAL keeps commits cheap while surviving process
// crashes (the authoritative state, session continuity, lives in the
// session store, not in this file), and busy_timeout=5000 queues
// concurrent writers on the lock instead of failing with SQLITE_BUSY.
//
// Connections never escape the package. Work runs inside [Pool.With]:
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/routines/journal.db",
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.With(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, query, options)
//	})
//
// The scoped borrow removes the forgotten-Put failure mode and keeps
// each connection on a single goroutine, which is the concurrency
// contract SQLite connections require. Inside the callback, stores
// write plain SQL with sqlitex.Execute; there is no query builder and
// no attempt to hide SQLite's connection model beyond the borrow
// itself.
package sqlitepool
