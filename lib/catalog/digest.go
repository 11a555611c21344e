// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/routines/lib/journal"
	"github.com/bureau-foundation/routines/lib/routine"
)

const (
	// digestFile is the outbox file the rolling summary lands in.
	// Stored raw: the prompt assembler adds its own framing.
	digestFile = "digest.md"

	// digestWindowHour is the local hour the digest's day starts at.
	// A run before this hour reports on the previous day's window.
	digestWindowHour = 6

	// digestFetchLimit bounds the journal read. Far more rows than
	// a day of scheduled runs produces.
	digestFetchLimit = 200
)

// Digest is the rolling "today so far" summary. Stateless: each run
// reads the journal fresh and rewrites the outbox file, so the
// summary never depends on an earlier engine session.
type Digest struct {
	history    RunHistory
	outbox     *Outbox
	definition routine.Definition
}

// NewDigest creates the digest routine. A nil history reads as an
// empty journal.
func NewDigest(history RunHistory, outbox *Outbox, timezone string) *Digest {
	return &Digest{
		history: history,
		outbox:  outbox,
		definition: routine.Definition{
			Name:     "digest",
			Timezone: timezone,
		},
	}
}

func (d *Digest) Definition() routine.Definition { return d.definition }

// BuildPrompt gathers every journal entry since the window opened
// this morning and asks for a prose summary. With nothing in the
// window the task collapses to a one-line acknowledgement.
func (d *Digest) BuildPrompt(ctx context.Context, run routine.RunContext) (string, error) {
	clockTime := run.Now.Format(clockFormat)
	date := run.Now.Format(dateFormat)

	entries, err := d.entriesSinceWindow(ctx, run.Now)
	if err != nil {
		return "", err
	}
	run.Logger.Info("journal window collected", "entries", len(entries))

	if len(entries) == 0 {
		return fmt.Sprintf(`This is a scheduled prompt from the routine harness, not from an operator.

It's %s on %s. The run journal is empty since %d:00 this morning; the day is just getting started.

Reply with a single sentence saying the day's log is still empty. That's the whole task.`, clockTime, date, digestWindowHour), nil
	}

	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = describeEntry(entry, run.Now.Location())
	}

	return fmt.Sprintf(`This is a scheduled prompt from the routine harness, not from an operator.

It's %s on %s. Every routine run recorded since %d:00 this morning, oldest first:

%s

That's %d runs so far.

Write a short digest of the day's activity: what ran, what failed, anything someone scanning the log later should know. A paragraph or two of plain prose. No headers, no bullet points.`, clockTime, date, digestWindowHour, strings.Join(lines, "\n"), len(entries)), nil
}

// entriesSinceWindow returns today's journal entries oldest-first.
// Recent reports newest-first across all routines; the window filter
// and the reversal happen here.
func (d *Digest) entriesSinceWindow(ctx context.Context, now time.Time) ([]journal.Entry, error) {
	if d.history == nil {
		return nil, nil
	}

	windowStart := time.Date(now.Year(), now.Month(), now.Day(), digestWindowHour, 0, 0, 0, now.Location())
	if now.Before(windowStart) {
		windowStart = windowStart.AddDate(0, 0, -1)
	}

	recent, err := d.history.Recent(ctx, "", digestFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("reading run journal: %w", err)
	}

	var entries []journal.Entry
	for _, entry := range recent {
		if entry.StartedAt.Before(windowStart) {
			continue
		}
		entries = append(entries, entry)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// describeEntry renders one journal row as a prompt line.
func describeEntry(entry journal.Entry, location *time.Location) string {
	when := entry.StartedAt.In(location).Format(clockFormat)
	if entry.Error != "" {
		return fmt.Sprintf("[%s] %s failed: %s", when, entry.Routine, entry.Error)
	}
	duration := entry.FinishedAt.Sub(entry.StartedAt).Round(time.Second)
	return fmt.Sprintf("[%s] %s completed in %s, %d result bytes", when, entry.Routine, duration, entry.ResultBytes)
}

// HandleOutput replaces the outbox digest with the raw summary.
func (d *Digest) HandleOutput(ctx context.Context, run routine.RunContext, result string) error {
	if err := d.outbox.Write(digestFile, strings.TrimSpace(result)+"\n"); err != nil {
		return fmt.Errorf("filing digest: %w", err)
	}
	run.Logger.Info("digest filed",
		"path", d.outbox.Path(digestFile),
		"bytes", len(result))
	return nil
}

// AllowedTools is empty, not nil: pure summarization, no tools.
func (d *Digest) AllowedTools() []string { return []string{} }
