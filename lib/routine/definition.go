// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routine

import (
	"time"
)

// Definition is the static configuration of a routine: its registry
// name and its session strategy. Definitions are plain values; the
// behavior lives in the Routine implementation that returns one.
type Definition struct {
	// Name is the registry key. Required, unique per registry.
	Name string

	// SessionKey is the session store key this routine commits to.
	// Empty means stateless: the run never touches the store.
	SessionKey string

	// SessionTTL is the time-to-live applied when committing to
	// SessionKey. Zero means the entry never expires. An entry whose
	// TTL has lapsed reads as absent, which starts a fresh session
	// rather than failing the run.
	SessionTTL time.Duration

	// ForkSession selects the fork strategy: resume a copy of the
	// session under ForkFromKey instead of this routine's own prior
	// state. The source entry is read-only to the run.
	ForkSession bool

	// ForkFromKey is the store key the fork reads its source session
	// from. Required when ForkSession is set; meaningless otherwise.
	ForkFromKey string

	// Timezone is the IANA zone name (e.g. "America/Los_Angeles")
	// the routine's prompt timestamps render in. Empty means UTC.
	Timezone string
}

// Stateless reports whether runs of this routine bypass the session
// store entirely.
func (d Definition) Stateless() bool { return d.SessionKey == "" }

// Strategy returns the human-readable session strategy name for
// listing output: "stateless", "fork", or "self-managed".
func (d Definition) Strategy() string {
	switch {
	case d.Stateless():
		return "stateless"
	case d.ForkSession:
		return "fork"
	default:
		return "self-managed"
	}
}

// Location resolves the definition's timezone. An empty Timezone
// resolves to UTC; an unknown zone name is an invalid-config error.
func (d Definition) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, InvalidConfig("routine %q: unknown timezone %q: %w", d.Name, d.Timezone, err)
	}
	return location, nil
}
