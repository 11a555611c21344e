// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/routines/lib/clock"
	"github.com/bureau-foundation/routines/lib/session"
)

func TestRecordKey(t *testing.T) {
	t.Parallel()

	if key := RecordKey("solitude:session"); key != "solitude:session:record" {
		t.Errorf("RecordKey = %q", key)
	}
}

func TestReadRecordMissing(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(clock.Fake(time.Date(2026, 2, 11, 7, 30, 0, 0, time.UTC)))
	_, err := ReadRecord(context.Background(), store, "solitude:session")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadRecordCorrupt(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(clock.Fake(time.Date(2026, 2, 11, 7, 30, 0, 0, time.UTC)))
	ctx := context.Background()
	if err := store.Put(ctx, RecordKey("solitude:session"), []byte("not cbor"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, err := ReadRecord(ctx, store, "solitude:session")
	if err == nil {
		t.Error("corrupt record should fail to decode")
	}
	if errors.Is(err, session.ErrNotFound) {
		t.Error("a corrupt record is not a miss")
	}
}
