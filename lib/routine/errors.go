// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies run failures so that callers can make
// programmatic decisions (exit code, retry, degrade) without parsing
// error message text.
type ErrorKind string

const (
	// KindNotFound indicates the requested routine name is not
	// registered. Retrying with the same name will not help.
	KindNotFound ErrorKind = "not_found"

	// KindDuplicateName indicates a second registration of an
	// already-registered name. The first registration stays live.
	KindDuplicateName ErrorKind = "duplicate_name"

	// KindInvalidConfig indicates a routine definition that cannot be
	// run as written: fork enabled without a source key, an empty
	// name, an unresolvable timezone. The definition must change.
	KindInvalidConfig ErrorKind = "invalid_config"

	// KindStoreUnavailable indicates the session store could not be
	// reached after bounded retry. The run was aborted before the
	// engine was invoked.
	KindStoreUnavailable ErrorKind = "store_unavailable"

	// KindRoutineBuild indicates the routine's BuildPrompt failed or
	// panicked. The engine was not invoked.
	KindRoutineBuild ErrorKind = "routine_build"

	// KindRoutineOutput indicates the routine's HandleOutput failed
	// or panicked. The session commit had already happened.
	KindRoutineOutput ErrorKind = "routine_output"

	// KindEngine indicates the engine invocation itself failed. The
	// harness never retries an engine invocation.
	KindEngine ErrorKind = "engine"

	// KindSessionCommit indicates the post-run session commit failed.
	// This kind never surfaces as a run error; it travels in the
	// outcome's CommitErr field because a completed engine run with a
	// failed commit is degraded, not failed.
	KindSessionCommit ErrorKind = "session_commit"
)

// RunError is a classified error produced by the registry, resolver,
// or harness. It wraps an inner error, preserving the full chain for
// errors.Is/errors.As while adding kind metadata for programmatic
// handling. Use the kind-specific constructors (NotFound,
// InvalidConfig, etc.) rather than constructing RunError directly.
type RunError struct {
	// Kind classifies the error for programmatic handling.
	Kind ErrorKind

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The kind is not
// included in the string; it travels separately for callers that
// branch on it.
func (e *RunError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the RunError wrapper.
func (e *RunError) Unwrap() error { return e.Err }

// NotFound creates a not-found error: the routine name is not registered.
func NotFound(format string, args ...any) *RunError {
	return &RunError{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// DuplicateName creates a duplicate-name error: the name is already registered.
func DuplicateName(format string, args ...any) *RunError {
	return &RunError{Kind: KindDuplicateName, Err: fmt.Errorf(format, args...)}
}

// InvalidConfig creates an invalid-config error: the definition cannot run as written.
func InvalidConfig(format string, args ...any) *RunError {
	return &RunError{Kind: KindInvalidConfig, Err: fmt.Errorf(format, args...)}
}

// StoreUnavailable creates a store-unavailable error: the session store is unreachable.
func StoreUnavailable(format string, args ...any) *RunError {
	return &RunError{Kind: KindStoreUnavailable, Err: fmt.Errorf(format, args...)}
}

// BuildFailed creates a routine-build error: BuildPrompt failed or panicked.
func BuildFailed(format string, args ...any) *RunError {
	return &RunError{Kind: KindRoutineBuild, Err: fmt.Errorf(format, args...)}
}

// OutputFailed creates a routine-output error: HandleOutput failed or panicked.
func OutputFailed(format string, args ...any) *RunError {
	return &RunError{Kind: KindRoutineOutput, Err: fmt.Errorf(format, args...)}
}

// EngineFailed creates an engine error: the invocation itself failed.
func EngineFailed(format string, args ...any) *RunError {
	return &RunError{Kind: KindEngine, Err: fmt.Errorf(format, args...)}
}

// CommitFailed creates a session-commit error for an outcome's
// CommitErr field.
func CommitFailed(format string, args ...any) *RunError {
	return &RunError{Kind: KindSessionCommit, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the ErrorKind of err if a RunError is anywhere in
// its chain, or the empty string otherwise.
func KindOf(err error) ErrorKind {
	var runError *RunError
	if errors.As(err, &runError) {
		return runError.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its
// chain.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
