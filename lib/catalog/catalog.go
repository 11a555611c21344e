// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"

	"github.com/bureau-foundation/routines/lib/journal"
	"github.com/bureau-foundation/routines/lib/routine"
)

// Prompt timestamps render as 12-hour clock time ("9:45 PM") with a
// spoken date ("Friday, February 13").
const (
	clockFormat = "3:04 PM"
	dateFormat  = "Monday, January 2"
)

// defaultTimezone is the zone catalog prompts render timestamps in
// when Config leaves Timezone empty.
const defaultTimezone = "America/Los_Angeles"

// RunHistory is the slice of the run journal the digest routine
// reads. *journal.Store satisfies it.
type RunHistory interface {
	Recent(ctx context.Context, routineName string, limit int) ([]journal.Entry, error)
}

// Config carries the dependencies shared by the catalog routines.
type Config struct {
	// OutboxDir is the directory letter and digest deliver their
	// results into. Required; created if absent.
	OutboxDir string

	// History is the run journal the digest routine summarizes.
	// Optional: without it the digest reports an empty day.
	History RunHistory

	// Timezone is the IANA zone prompt timestamps render in.
	// Defaults to America/Los_Angeles.
	Timezone string
}

// Register adds every shipped routine to the registry: letter,
// digest, then the three night phases in evening order.
func Register(registry *routine.Registry, config Config) error {
	outbox, err := NewOutbox(config.OutboxDir)
	if err != nil {
		return err
	}
	timezone := config.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}
	for _, shipped := range []routine.Routine{
		NewLetter(outbox, timezone),
		NewDigest(config.History, outbox, timezone),
		NewNightLead(timezone),
		NewNightMain(timezone),
		NewNightCoda(timezone),
	} {
		if err := registry.Register(shipped); err != nil {
			return err
		}
	}
	return nil
}
