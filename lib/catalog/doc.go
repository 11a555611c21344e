// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog ships the built-in routines. Between them they
// cover every session strategy the harness supports:
//
//   - letter: forks the day's human session and writes a short
//     forward-looking note to the outbox for tomorrow's session to
//     find. The fork keeps the human session untouched.
//   - digest: stateless. Reads the run journal and summarizes the
//     day's routine activity into the outbox.
//   - night-lead, night-main, night-coda: a three-phase evening
//     sequence sharing one self-managed session, so the whole night
//     is a single continuing conversation.
//
// Register wires all of them into a registry with their shared
// dependencies (outbox directory, run history). Routines deliver
// results through the Outbox, an atomically-written file drop that
// downstream prompt assembly reads from.
package catalog
