// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/routines/lib/codec"
)

// ErrNotFound reports that a key has no live entry: it was never
// written, was deleted, or its TTL lapsed. Callers distinguish it from
// transport failures with errors.Is.
var ErrNotFound = errors.New("session: key not found")

// Store is a key-value store of opaque bytes with per-entry TTL. All
// implementations must treat an expired entry exactly like an absent
// one and must make Put an atomic upsert, so that concurrent commits
// to the same key resolve to last-write-wins without corruption.
type Store interface {
	// Get returns the value stored under key. A miss (absent or
	// expired) is ErrNotFound; any other error is a transport
	// failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key with the given TTL, replacing any
	// existing entry. A zero TTL means the entry never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// StateVersion is the current State schema version, stored with every
// entry so that future readers can migrate old state.
const StateVersion = 1

// State is the engine resume state persisted between runs of a
// session-bearing routine. The ResumeToken comes from the engine; the
// bookkeeping fields are stamped by the harness at commit time.
type State struct {
	// Version is the State schema version (StateVersion at write).
	Version int `cbor:"version"`

	// ResumeToken is the engine's session identifier. Passing it
	// back to the engine continues the conversation.
	ResumeToken string `cbor:"resume_token"`

	// UpdatedAt is the commit time, in UTC.
	UpdatedAt time.Time `cbor:"updated_at"`

	// WrittenBy is the name of the routine that committed this
	// state. Informational: fork targets and shared keys record
	// which routine wrote last.
	WrittenBy string `cbor:"written_by,omitempty"`
}

// GetState reads and decodes the State stored under key. A store miss
// passes through as ErrNotFound.
func GetState(ctx context.Context, store Store, key string) (State, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return State{}, err
	}
	var state State
	if err := codec.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decoding session state at %q: %w", key, err)
	}
	return state, nil
}

// PutState encodes state with the deterministic codec and stores it
// under key.
func PutState(ctx context.Context, store Store, key string, state State, ttl time.Duration) error {
	data, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session state for %q: %w", key, err)
	}
	return store.Put(ctx, key, data, ttl)
}
