// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal keeps a local history of routine runs in SQLite.
//
// The journal is deliberately separate from the session store: session
// state in Redis carries continuity between runs and expires on its
// TTL, while the journal is an append-mostly local record of what ran,
// when, and how it ended. Losing the journal loses history, never
// continuity.
//
// The harness writes one [Entry] per run, best-effort: a journal
// failure is logged and never fails the run that produced it. Readers
// are the `routines info` command and any routine that wants its own
// recent history (the digest routine summarizes from it).
//
// Storage goes through lib/sqlitepool (WAL, NORMAL synchronous, busy
// timeout). One writer per process is the expected shape; concurrent
// writers from several processes are safe but serialize on SQLite's
// write lock.
package journal
