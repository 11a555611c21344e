// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/routines/lib/clock"
	"github.com/bureau-foundation/routines/lib/routine"
)

// Resolution is the session plan for a single run: what the engine
// resumes from and where the harness commits the result.
type Resolution struct {
	// ResumeToken is the engine session to continue from, or empty
	// for a fresh session.
	ResumeToken string

	// NewSession is true when no resumable state was found: the
	// routine is stateless, its key was absent or expired, or a fork
	// found no source.
	NewSession bool

	// CommitKey is the store key the run's resulting state is
	// committed to. Empty means the run commits nothing (stateless).
	CommitKey string

	// CommitTTL is the TTL applied at commit.
	CommitTTL time.Duration

	// Fork instructs the engine to copy the resumed session instead
	// of continuing it in place. Only set when a resume token was
	// actually found; forking nothing is just a fresh session.
	Fork bool
}

// ResolverConfig configures a Resolver. Store and Logger are
// required; Clock defaults to the real clock and ReadAttempts to
// defaultReadAttempts.
type ResolverConfig struct {
	Store        Store
	Clock        clock.Clock
	Logger       *slog.Logger
	ReadAttempts int
}

const (
	defaultReadAttempts = 3
	initialReadBackoff  = time.Second
	maxReadBackoff      = 10 * time.Second
)

// Resolver turns routine definitions into Resolutions. It is
// stateless between calls and safe for concurrent use.
type Resolver struct {
	store        Store
	clock        clock.Clock
	logger       *slog.Logger
	readAttempts int
}

// NewResolver validates the config and creates a Resolver.
func NewResolver(config ResolverConfig) (*Resolver, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("resolver: Store is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("resolver: Logger is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.ReadAttempts <= 0 {
		config.ReadAttempts = defaultReadAttempts
	}
	return &Resolver{
		store:        config.Store,
		clock:        config.Clock,
		logger:       config.Logger,
		readAttempts: config.ReadAttempts,
	}, nil
}

// Resolve maps definition to a session plan. The decision order is
// part of the contract:
//
//  1. Stateless routines resolve without touching the store.
//  2. Fork without a source key fails before any store access.
//  3. Fork routines read the source key and commit to their own.
//  4. Self-managed routines read and commit their own key.
//
// A miss on the read key (absent or expired) is a fresh start. A
// transport failure is retried with exponential backoff; exhaustion
// aborts the run with a store-unavailable error so the caller never
// invokes the engine with an undetermined session.
func (r *Resolver) Resolve(ctx context.Context, definition routine.Definition) (Resolution, error) {
	if definition.Stateless() {
		return Resolution{NewSession: true}, nil
	}

	if definition.ForkSession && definition.ForkFromKey == "" {
		return Resolution{}, routine.InvalidConfig("routine %q: fork enabled without a source key", definition.Name)
	}

	readKey := definition.SessionKey
	if definition.ForkSession {
		readKey = definition.ForkFromKey
	}

	state, err := r.getWithRetry(ctx, readKey)
	switch {
	case errors.Is(err, ErrNotFound):
		return Resolution{
			NewSession: true,
			CommitKey:  definition.SessionKey,
			CommitTTL:  definition.SessionTTL,
		}, nil
	case err != nil:
		return Resolution{}, routine.StoreUnavailable("reading session key %q: %w", readKey, err)
	}

	if state.ResumeToken == "" {
		// A stored entry without a token cannot be resumed; treat it
		// like a miss rather than handing the engine an empty resume.
		r.logger.Warn("stored session state has no resume token, starting fresh",
			"key", readKey, "routine", definition.Name)
		return Resolution{
			NewSession: true,
			CommitKey:  definition.SessionKey,
			CommitTTL:  definition.SessionTTL,
		}, nil
	}

	return Resolution{
		ResumeToken: state.ResumeToken,
		CommitKey:   definition.SessionKey,
		CommitTTL:   definition.SessionTTL,
		Fork:        definition.ForkSession,
	}, nil
}

// getWithRetry reads key, retrying transport failures with
// exponential backoff on the resolver's clock. A miss returns
// immediately: absence is an answer, not a failure.
func (r *Resolver) getWithRetry(ctx context.Context, key string) (State, error) {
	backoff := initialReadBackoff
	var lastErr error

	for attempt := 1; attempt <= r.readAttempts; attempt++ {
		state, err := GetState(ctx, r.store, key)
		if err == nil || errors.Is(err, ErrNotFound) {
			return state, err
		}
		lastErr = err
		r.logger.Warn("session store read failed",
			"key", key, "attempt", attempt, "attempts", r.readAttempts, "error", err)

		if attempt == r.readAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return State{}, ctx.Err()
		case <-r.clock.After(backoff):
		}
		backoff = min(backoff*2, maxReadBackoff)
	}

	return State{}, fmt.Errorf("after %d attempts: %w", r.readAttempts, lastErr)
}
