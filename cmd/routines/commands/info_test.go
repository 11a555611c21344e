// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/bureau-foundation/routines/cmd/routines/cli"
)

func TestExecuteInfoDefinition(t *testing.T) {
	cfg, _ := testConfig(t)
	var output bytes.Buffer
	var jsonOutput cli.JSONOutput

	err := executeInfo(context.Background(), cfg, "letter", 10, &jsonOutput, &output, silentLogger())
	if err != nil {
		t.Fatalf("executeInfo: %v", err)
	}
	got := output.String()

	for _, want := range []string{
		"Routine:      letter",
		"Strategy:     fork",
		"Session key:  letter:session",
		"Forks from:   routine:human_session",
		"Session TTL:  18h0m0s",
		"Timezone:     America/Los_Angeles",
		"Tools:        Read,Bash",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("info output missing %q:\n%s", want, got)
		}
	}

	// Nothing has run: no record in the store, no journal rows.
	if strings.Contains(got, "Last committed run") {
		t.Errorf("unexpected last-run section:\n%s", got)
	}
	if strings.Contains(got, "Recent runs") {
		t.Errorf("unexpected recent-runs section:\n%s", got)
	}
}

func TestExecuteInfoShowsJournalRuns(t *testing.T) {
	cfg, _ := testConfig(t)
	ctx := context.Background()
	var jsonOutput cli.JSONOutput

	if err := executeRun(ctx, cfg, "letter", &jsonOutput, io.Discard, silentLogger()); err != nil {
		t.Fatalf("executeRun: %v", err)
	}

	var output bytes.Buffer
	err := executeInfo(ctx, cfg, "letter", 10, &jsonOutput, &output, silentLogger())
	if err != nil {
		t.Fatalf("executeInfo: %v", err)
	}
	got := output.String()

	if !strings.Contains(got, "Recent runs:") {
		t.Fatalf("missing recent-runs section:\n%s", got)
	}
	for _, want := range []string{"STARTED", "DURATION", "COMMITTED", "BYTES", "true"} {
		if !strings.Contains(got, want) {
			t.Errorf("recent-runs table missing %q:\n%s", want, got)
		}
	}
}

func TestExecuteInfoUnknownRoutine(t *testing.T) {
	cfg, _ := testConfig(t)
	var jsonOutput cli.JSONOutput

	err := executeInfo(context.Background(), cfg, "nope", 10, &jsonOutput, io.Discard, silentLogger())
	if err == nil {
		t.Fatal("unknown routine should fail")
	}
	if !strings.Contains(err.Error(), "unknown routine") {
		t.Errorf("err = %v, want unknown-routine message", err)
	}
}

func TestWriteInfoTextWithLastRun(t *testing.T) {
	report := infoReport{
		Name:       "night-main",
		Strategy:   "self-managed",
		SessionKey: "night:session",
		SessionTTL: "12h0m0s",
		LastRun: &lastRunReport{
			InvocationID: "night-main-20260213-220000",
			StartedAt:    "2026-02-13T22:00:00Z",
			FinishedAt:   "2026-02-13T22:04:00Z",
			ResultBytes:  512,
			Transcript:   "/var/state/transcripts/night-main.jsonl",
		},
	}

	var buf bytes.Buffer
	writeInfoText(&buf, report)
	got := buf.String()

	for _, want := range []string{
		"Last committed run:",
		"Invocation:  night-main-20260213-220000",
		"Started:     2026-02-13T22:00:00Z",
		"Result:      512 bytes",
		"Transcript:  /var/state/transcripts/night-main.jsonl",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	// Tools were nil: the engine default set.
	if !strings.Contains(got, "Tools:        (default)") {
		t.Errorf("missing default tools line:\n%s", got)
	}
}
