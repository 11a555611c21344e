// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
)

// Request describes a single engine invocation.
type Request struct {
	// Prompt is the full prompt text for this run.
	Prompt string

	// AllowedTools restricts the tools the engine may use. Nil means
	// the engine's default tool set; an empty non-nil slice means no
	// tools at all. Forwarded verbatim.
	AllowedTools []string

	// ResumeToken continues an existing engine session. Empty starts
	// a fresh session.
	ResumeToken string

	// Fork makes the engine copy the resumed session instead of
	// continuing it in place, leaving the source session untouched.
	// Meaningless without a ResumeToken.
	Fork bool

	// Label identifies the invocation to the backend for request
	// attribution, e.g. "routine:letter".
	Label string

	// InvocationID names the transcript file for this run.
	InvocationID string
}

// Result is the outcome of a successful invocation.
type Result struct {
	// Text is the engine's result text.
	Text string

	// ResumeToken identifies the session this run produced. The
	// harness persists it so the next run can continue the
	// conversation. Empty when the engine did not report a session.
	ResumeToken string

	// Transcript describes the event transcript captured during the
	// run. Zero when transcript capture is disabled.
	Transcript TranscriptInfo
}

// Engine runs prompts. Implementations must be safe for concurrent
// use and must invoke the backend at most once per call: a failure is
// reported, never retried.
type Engine interface {
	Invoke(ctx context.Context, request Request) (Result, error)
}
