// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/routines/lib/journal"
)

func openTestJournal(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(journal.Config{
		Path:   filepath.Join(t.TempDir(), "journal.db"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func testEntry(id, routineName string, startedAt time.Time) journal.Entry {
	return journal.Entry{
		InvocationID: id,
		Routine:      routineName,
		StartedAt:    startedAt,
		FinishedAt:   startedAt.Add(30 * time.Second),
		NewSession:   true,
		Committed:    true,
		ResultBytes:  512,
	}
}

func TestRecordAndReadBack(t *testing.T) {
	t.Parallel()

	store := openTestJournal(t)
	ctx := context.Background()
	startedAt := time.Date(2026, 2, 11, 7, 30, 0, 0, time.UTC)

	entry := testEntry("inv-1", "letter", startedAt)
	entry.Error = "engine: timed out"
	entry.Committed = false
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.Recent(ctx, "letter", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	got := entries[0]
	if got.InvocationID != "inv-1" {
		t.Errorf("InvocationID = %q", got.InvocationID)
	}
	if got.Routine != "letter" {
		t.Errorf("Routine = %q", got.Routine)
	}
	if !got.StartedAt.Equal(startedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, startedAt)
	}
	if !got.FinishedAt.Equal(startedAt.Add(30 * time.Second)) {
		t.Errorf("FinishedAt = %v", got.FinishedAt)
	}
	if !got.NewSession {
		t.Error("NewSession should be true")
	}
	if got.Committed {
		t.Error("Committed should be false")
	}
	if got.ResultBytes != 512 {
		t.Errorf("ResultBytes = %d", got.ResultBytes)
	}
	if got.Error != "engine: timed out" {
		t.Errorf("Error = %q", got.Error)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)

	for hour, id := range []string{"inv-a", "inv-b", "inv-c"} {
		if err := store.Record(ctx, testEntry(id, "digest", base.Add(time.Duration(hour)*time.Hour))); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	entries, err := store.Recent(ctx, "digest", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].InvocationID != "inv-c" || entries[2].InvocationID != "inv-a" {
		t.Errorf("order = [%s %s %s], want newest first",
			entries[0].InvocationID, entries[1].InvocationID, entries[2].InvocationID)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	t.Parallel()

	store := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)

	for i := range 5 {
		entry := testEntry(string(rune('a'+i)), "night-lead", base.Add(time.Duration(i)*time.Minute))
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.Recent(ctx, "night-lead", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestRecentAllRoutines(t *testing.T) {
	t.Parallel()

	store := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)

	store.Record(ctx, testEntry("inv-1", "letter", base))
	store.Record(ctx, testEntry("inv-2", "digest", base.Add(time.Minute)))

	entries, err := store.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (all routines)", len(entries))
	}

	filtered, err := store.Recent(ctx, "letter", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Routine != "letter" {
		t.Errorf("filtered = %+v, want only letter", filtered)
	}
}

func TestRecordReplacesSameInvocation(t *testing.T) {
	t.Parallel()

	store := openTestJournal(t)
	ctx := context.Background()
	startedAt := time.Date(2026, 2, 11, 7, 30, 0, 0, time.UTC)

	first := testEntry("inv-1", "letter", startedAt)
	first.Committed = false
	if err := store.Record(ctx, first); err != nil {
		t.Fatalf("Record: %v", err)
	}

	second := first
	second.Committed = true
	second.ResultBytes = 2048
	if err := store.Record(ctx, second); err != nil {
		t.Fatalf("Record (replace): %v", err)
	}

	entries, err := store.Recent(ctx, "letter", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (replaced, not duplicated)", len(entries))
	}
	if !entries[0].Committed || entries[0].ResultBytes != 2048 {
		t.Errorf("entry = %+v, want the replacement", entries[0])
	}
}

func TestRecentOnEmptyJournal(t *testing.T) {
	t.Parallel()

	store := openTestJournal(t)
	entries, err := store.Recent(context.Background(), "letter", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestRecordValidation(t *testing.T) {
	t.Parallel()

	store := openTestJournal(t)
	ctx := context.Background()

	missing := journal.Entry{Routine: "letter"}
	if err := store.Record(ctx, missing); err == nil {
		t.Error("Record without invocation ID should fail")
	}

	unnamed := journal.Entry{InvocationID: "inv-1"}
	if err := store.Record(ctx, unnamed); err == nil {
		t.Error("Record without routine name should fail")
	}
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	if _, err := journal.Open(journal.Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}); err == nil {
		t.Error("Open without Path should fail")
	}
	if _, err := journal.Open(journal.Config{Path: filepath.Join(t.TempDir(), "j.db")}); err == nil {
		t.Error("Open without Logger should fail")
	}
}
