// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/routines/lib/codec"
	"github.com/bureau-foundation/routines/lib/session"
)

// RecordVersion is the current InvocationRecord schema version.
const RecordVersion = 1

// InvocationRecord describes the most recent committed run of a
// session-bearing routine. It lives in the session store at the
// commit key's companion record key, with the same TTL as the session
// itself: when the session expires, so does its record.
//
// The record exists for inspection (`routines info`), not for the run
// flow: it is written only after a successful session commit and a
// failed write never fails the run.
type InvocationRecord struct {
	// Version is the record schema version (RecordVersion at write).
	Version int `cbor:"version"`

	RoutineName  string `cbor:"routine"`
	InvocationID string `cbor:"invocation_id"`

	StartedAt  time.Time `cbor:"started_at"`
	FinishedAt time.Time `cbor:"finished_at"`

	NewSession bool `cbor:"new_session,omitempty"`
	Forked     bool `cbor:"forked,omitempty"`

	// ResultBytes is the length of the engine's result text.
	ResultBytes int64 `cbor:"result_bytes"`

	// TranscriptPath and TranscriptDigest identify the captured
	// transcript, when capture was enabled.
	TranscriptPath   string `cbor:"transcript_path,omitempty"`
	TranscriptDigest string `cbor:"transcript_digest,omitempty"`
}

// RecordKey returns the store key holding the invocation record for a
// session commit key.
func RecordKey(commitKey string) string {
	return commitKey + ":record"
}

// ReadRecord fetches and decodes the invocation record companion to
// commitKey. A missing record passes through as session.ErrNotFound.
func ReadRecord(ctx context.Context, store session.Store, commitKey string) (InvocationRecord, error) {
	data, err := store.Get(ctx, RecordKey(commitKey))
	if err != nil {
		return InvocationRecord{}, err
	}
	var record InvocationRecord
	if err := codec.Unmarshal(data, &record); err != nil {
		return InvocationRecord{}, fmt.Errorf("decoding invocation record at %q: %w", RecordKey(commitKey), err)
	}
	return record, nil
}

// writeRecord stores the invocation record next to a just-committed
// session. Best-effort: failures are logged and swallowed.
func (r *Runner) writeRecord(ctx context.Context, logger *slog.Logger, commitKey string, ttl time.Duration, outcome Outcome) {
	record := InvocationRecord{
		Version:          RecordVersion,
		RoutineName:      outcome.RoutineName,
		InvocationID:     outcome.InvocationID,
		StartedAt:        outcome.StartedAt.UTC(),
		FinishedAt:       outcome.FinishedAt.UTC(),
		NewSession:       outcome.NewSession,
		Forked:           outcome.Forked,
		ResultBytes:      int64(len(outcome.Text)),
		TranscriptPath:   outcome.Transcript.Path,
		TranscriptDigest: outcome.Transcript.Digest,
	}

	data, err := codec.Marshal(record)
	if err != nil {
		logger.Warn("encoding invocation record failed", "error", err)
		return
	}
	if err := r.store.Put(ctx, RecordKey(commitKey), data, ttl); err != nil {
		logger.Warn("writing invocation record failed",
			"key", RecordKey(commitKey), "error", err)
	}
}
