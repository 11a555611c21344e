// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package harness executes registered routines end to end.
//
// A run is one strictly ordered pass: look up the routine, resolve its
// session, build the prompt, invoke the engine once, commit the
// resulting session state, then hand the result text back to the
// routine. The engine call is the only step expected to take long;
// nothing is locked across it, so concurrent runs (of different
// routines or re-triggers of the same one) proceed independently and
// meet only at the session store, last write wins.
//
// Failure handling is asymmetric around the engine call. Before it,
// errors abort the run outright: a store outage or a prompt-builder
// bug must not consume an engine invocation. After it, the work has
// happened: a commit failure degrades the run (the outcome says so)
// rather than failing it, and the journal write is best-effort on
// every path.
//
// Cancellation follows the same line: cancelling mid-engine abandons
// the run with nothing persisted, while a commit that has begun always
// completes so the store never holds a half-written session.
package harness
