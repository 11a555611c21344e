// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/routines/lib/routine"
)

const (
	// humanSessionKey holds the day's human-originated session
	// state, written by the interactive surface on a 24-hour TTL.
	// Letter runs fork from it and never write it.
	humanSessionKey = "routine:human_session"

	letterSessionKey = "letter:session"

	// letterTTL keeps the letter session resumable until the
	// following afternoon.
	letterTTL = 18 * time.Hour

	// letterFile is the outbox file the finished letter lands in.
	letterFile = "letter.md"
)

// Letter is the nightly forward-looking note: a fork of the day's
// human session writes one to three paragraphs to tomorrow's
// session. Forward-looking intention, not a chronicle; the digest
// handles the chronicle.
type Letter struct {
	outbox     *Outbox
	definition routine.Definition
}

// NewLetter creates the letter routine delivering into outbox.
func NewLetter(outbox *Outbox, timezone string) *Letter {
	return &Letter{
		outbox: outbox,
		definition: routine.Definition{
			Name:        "letter",
			SessionKey:  letterSessionKey,
			SessionTTL:  letterTTL,
			ForkSession: true,
			ForkFromKey: humanSessionKey,
			Timezone:    timezone,
		},
	}
}

func (l *Letter) Definition() routine.Definition { return l.definition }

// BuildPrompt branches on whether a human session existed to fork:
// with one, the fork writes from inside the day's context; without
// one, the letter is a shorter bridge written cold.
func (l *Letter) BuildPrompt(ctx context.Context, run routine.RunContext) (string, error) {
	clockTime := run.Now.Format(clockFormat)
	date := run.Now.Format(dateFormat)

	if run.NewSession {
		return fmt.Sprintf(`This is a scheduled prompt from the routine harness, not from an operator.

It's %s on %s. There is no session from today to fork, so you are starting cold. That's fine.

Write a brief note to tomorrow's session anyway: what you know about the current state of things, what is worth picking up first. A paragraph is enough. Sign it however feels right.

When you finish, the harness files the note where tomorrow's session will find it.`, clockTime, date), nil
	}

	return fmt.Sprintf(`This is a scheduled prompt from the routine harness, not from an operator.

It's %s on %s. You are a fork of today's session; nothing you say here reaches the original.

Write a short letter (one to three paragraphs) to tomorrow's session. Not a chronicle of what happened, the digest covers that. This is about what you are carrying into tomorrow:

- Which threads feel unfinished?
- What matters right now that might fade by morning?
- What is the shape of today?

Write in first person, as a note from you to you. Sign it however feels right.

When you finish, the harness files the letter and this fork ends. Tomorrow's session finds your words waiting.`, clockTime, date), nil
}

// HandleOutput files the letter with a timestamped header for
// whatever assembles tomorrow's opening context.
func (l *Letter) HandleOutput(ctx context.Context, run routine.RunContext, result string) error {
	header := fmt.Sprintf("**Letter from last night** (%s):\n\n", run.Now.Format(clockFormat))
	content := header + strings.TrimSpace(result) + "\n"
	if err := l.outbox.Write(letterFile, content); err != nil {
		return fmt.Errorf("filing letter: %w", err)
	}
	run.Logger.Info("letter filed",
		"path", l.outbox.Path(letterFile),
		"bytes", len(content))
	return nil
}

// AllowedTools grants the minimal surface for letter writing. Bash
// covers the memory-lookup helpers.
func (l *Letter) AllowedTools() []string { return []string{"Read", "Bash"} }
