// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/routines/cmd/routines/cli"
	"github.com/bureau-foundation/routines/lib/config"
	"github.com/bureau-foundation/routines/lib/journal"
)

// mockFirstLine is what the mock engine echoes for the letter and
// digest routines: both open with the same scheduled-prompt
// disclaimer.
const mockFirstLine = `mock response to "This is a scheduled prompt from the routine harness, not from an operator."`

// testConfig writes a self-contained config file under a temp dir
// (memory store, mock engine, journal and outbox inside the dir) and
// loads it through the same path the commands use.
func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(`store:
  backend: memory
engine:
  backend: mock
  transcript_dir: %q
journal:
  path: %q
catalog:
  outbox_dir: %q
logging:
  level: error
`,
		filepath.Join(dir, "transcripts"),
		filepath.Join(dir, "journal.db"),
		filepath.Join(dir, "outbox"))

	configPath := filepath.Join(dir, "routines.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	return cfg, dir
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteRunFilesLetter(t *testing.T) {
	cfg, dir := testConfig(t)
	var output bytes.Buffer
	var jsonOutput cli.JSONOutput

	err := executeRun(context.Background(), cfg, "letter", &jsonOutput, &output, silentLogger())
	if err != nil {
		t.Fatalf("executeRun: %v", err)
	}

	if got := output.String(); got != mockFirstLine+"\n" {
		t.Errorf("output = %q, want %q", got, mockFirstLine+"\n")
	}

	letter, err := os.ReadFile(filepath.Join(dir, "outbox", "letter.md"))
	if err != nil {
		t.Fatalf("reading letter: %v", err)
	}
	if !strings.HasPrefix(string(letter), "**Letter from last night** (") {
		t.Errorf("letter missing header: %q", letter)
	}
	if !strings.Contains(string(letter), mockFirstLine) {
		t.Errorf("letter missing engine text: %q", letter)
	}
}

func TestExecuteRunRecordsJournalEntry(t *testing.T) {
	cfg, dir := testConfig(t)
	ctx := context.Background()
	var jsonOutput cli.JSONOutput

	err := executeRun(ctx, cfg, "letter", &jsonOutput, io.Discard, silentLogger())
	if err != nil {
		t.Fatalf("executeRun: %v", err)
	}

	store, err := journal.Open(journal.Config{
		Path:   filepath.Join(dir, "journal.db"),
		Logger: silentLogger(),
	})
	if err != nil {
		t.Fatalf("reopening journal: %v", err)
	}
	defer store.Close()

	entries, err := store.Recent(ctx, "letter", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.Routine != "letter" {
		t.Errorf("Routine = %q, want letter", entry.Routine)
	}
	// No human session exists in the fresh store, so the letter
	// starts cold rather than forking.
	if !entry.NewSession {
		t.Error("NewSession = false, want true")
	}
	if !entry.Committed {
		t.Error("Committed = false, want true")
	}
	if entry.ResultBytes != int64(len(mockFirstLine)) {
		t.Errorf("ResultBytes = %d, want %d", entry.ResultBytes, len(mockFirstLine))
	}
	if entry.Error != "" {
		t.Errorf("Error = %q, want empty", entry.Error)
	}
}

func TestExecuteRunDigestWritesOutbox(t *testing.T) {
	cfg, dir := testConfig(t)
	var jsonOutput cli.JSONOutput

	err := executeRun(context.Background(), cfg, "digest", &jsonOutput, io.Discard, silentLogger())
	if err != nil {
		t.Fatalf("executeRun: %v", err)
	}

	// The digest stores the engine text verbatim, no header.
	digest, err := os.ReadFile(filepath.Join(dir, "outbox", "digest.md"))
	if err != nil {
		t.Fatalf("reading digest: %v", err)
	}
	if string(digest) != mockFirstLine+"\n" {
		t.Errorf("digest = %q, want %q", digest, mockFirstLine+"\n")
	}
}

func TestExecuteRunUnknownRoutine(t *testing.T) {
	cfg, _ := testConfig(t)
	var jsonOutput cli.JSONOutput

	err := executeRun(context.Background(), cfg, "nope", &jsonOutput, io.Discard, silentLogger())

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *cli.ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Code = %d, want 1", exitErr.Code)
	}
}

func TestExecuteRunWithoutJournal(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Journal.Path = ""
	var jsonOutput cli.JSONOutput

	err := executeRun(context.Background(), cfg, "letter", &jsonOutput, io.Discard, silentLogger())
	if err != nil {
		t.Fatalf("executeRun without journal: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "outbox", "letter.md")); err != nil {
		t.Errorf("letter not filed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "journal.db")); !os.IsNotExist(err) {
		t.Errorf("journal file should not exist, stat err = %v", err)
	}
}
