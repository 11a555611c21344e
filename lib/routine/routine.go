// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routine

import (
	"context"
	"log/slog"
	"time"
)

// Routine is the contract a routine author implements. The harness
// calls BuildPrompt before the engine invocation and HandleOutput
// after the session commit; a routine never talks to the engine or
// the session store directly.
//
// BuildPrompt and HandleOutput run inside the harness's panic
// containment: a panic in either is converted to a classified run
// error instead of crashing the process.
type Routine interface {
	// Definition returns the routine's static configuration. The
	// harness calls this once per run; implementations should return
	// a fixed value, not recompute state.
	Definition() Definition

	// BuildPrompt renders the prompt for this run. An error (or
	// panic) here aborts the run before the engine is invoked.
	BuildPrompt(ctx context.Context, run RunContext) (string, error)

	// HandleOutput consumes the engine's result text. It runs after
	// the session commit, so a failure here never loses session
	// state. Side effects (writing files, posting messages) belong
	// here, not in BuildPrompt.
	HandleOutput(ctx context.Context, run RunContext, result string) error

	// AllowedTools returns the tool names the engine may use during
	// this routine's runs. Nil means the engine's default tool set;
	// an empty non-nil slice means no tools.
	AllowedTools() []string
}

// RunContext carries the per-run facts the harness hands to routine
// callbacks. It is a value: mutating it inside a callback has no
// effect on the run.
type RunContext struct {
	// Now is the run's start time, already converted to the
	// routine's configured timezone.
	Now time.Time

	// NewSession is true when no resumable session state was found:
	// either the routine is stateless, the key was absent or
	// expired, or a fork found no source.
	NewSession bool

	// ResumeToken is the engine resume token the run will continue
	// from, or empty for a fresh session. Routines that branch their
	// prompt on "first run vs. continuation" should prefer
	// NewSession; the token is exposed for routines that reference
	// the prior conversation explicitly.
	ResumeToken string

	// RoutineName is the registry name of the running routine.
	RoutineName string

	// InvocationID uniquely identifies this run. It names the
	// transcript file and the journal row.
	InvocationID string

	// Logger is scoped to this run (routine name and invocation ID
	// attached). Callbacks should log through it rather than
	// creating their own loggers.
	Logger *slog.Logger
}
