// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/routines/lib/routine"
)

// The three night phases share one session key, so the whole evening
// is a single continuing conversation: night-lead opens it,
// night-main runs repeatedly through the small hours, night-coda
// closes it out. The TTL outlives the sequence but not the following
// evening, so each night starts fresh.
const (
	nightSessionKey = "night:session"
	nightTTL        = 12 * time.Hour
)

//go:embed prompts/night_lead.md prompts/night_coda.md
var nightPrompts embed.FS

// nightPhase is one segment of the evening sequence. The phases
// differ only in name and prompt; session handling and output
// handling are shared.
type nightPhase struct {
	definition routine.Definition
	prompt     func(clockTime string, run routine.RunContext) string
}

// NewNightLead returns the opening phase: a fresh session and the
// embedded welcome text.
func NewNightLead(timezone string) routine.Routine {
	opening := nightPromptFile("prompts/night_lead.md")
	return &nightPhase{
		definition: nightDefinition("night-lead", timezone),
		prompt: func(clockTime string, _ routine.RunContext) string {
			return fmt.Sprintf("It's %s.\n\n%s", clockTime, opening)
		},
	}
}

// NewNightMain returns the recurring phase: a minimal continuation
// prompt for a session the lead phase already opened.
func NewNightMain(timezone string) routine.Routine {
	return &nightPhase{
		definition: nightDefinition("night-main", timezone),
		prompt: func(clockTime string, run routine.RunContext) string {
			if run.NewSession {
				// The lead phase didn't run or its session
				// expired; open the night here instead.
				return fmt.Sprintf("It's %s. A new night begins. The time is yours.", clockTime)
			}
			return fmt.Sprintf("It's %s. The night continues.", clockTime)
		},
	}
}

// NewNightCoda returns the closing phase with the embedded wind-down
// text.
func NewNightCoda(timezone string) routine.Routine {
	closing := nightPromptFile("prompts/night_coda.md")
	return &nightPhase{
		definition: nightDefinition("night-coda", timezone),
		prompt: func(clockTime string, _ routine.RunContext) string {
			return fmt.Sprintf("It's %s.\n\n%s", clockTime, closing)
		},
	}
}

func nightDefinition(name string, timezone string) routine.Definition {
	return routine.Definition{
		Name:       name,
		SessionKey: nightSessionKey,
		SessionTTL: nightTTL,
		Timezone:   timezone,
	}
}

func (p *nightPhase) Definition() routine.Definition { return p.definition }

func (p *nightPhase) BuildPrompt(ctx context.Context, run routine.RunContext) (string, error) {
	return p.prompt(run.Now.Format(clockFormat), run), nil
}

// HandleOutput only logs. The conversation is the output; the
// committed session carries it to the next phase.
func (p *nightPhase) HandleOutput(ctx context.Context, run routine.RunContext, result string) error {
	run.Logger.Info("night phase complete", "bytes", len(result))
	return nil
}

// AllowedTools is nil: the night runs with the engine's default
// tool set.
func (p *nightPhase) AllowedTools() []string { return nil }

// nightPromptFile loads an embedded prompt. The files are embedded
// at compile time; a read failure is a build bug.
func nightPromptFile(path string) string {
	data, err := nightPrompts.ReadFile(path)
	if err != nil {
		panic("embedded night prompt missing: " + err.Error())
	}
	return strings.TrimSpace(string(data))
}
