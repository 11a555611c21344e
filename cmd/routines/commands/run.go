// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/routines/cmd/routines/cli"
	"github.com/bureau-foundation/routines/lib/catalog"
	"github.com/bureau-foundation/routines/lib/config"
	"github.com/bureau-foundation/routines/lib/harness"
	"github.com/spf13/pflag"
)

// runParams holds the parameters for the run command.
type runParams struct {
	cli.JSONOutput
	Config string `flag:"config,c" desc:"config file path (defaults to ROUTINES_CONFIG)"`
}

func runCommand() *cli.Command {
	var params runParams

	return &cli.Command{
		Name:    "run",
		Summary: "Run a routine by name",
		Description: `Run a routine once: resolve its session, invoke the engine, commit
the resulting session state, and hand the output to the routine.

A failed session commit does not fail the run; it is reported as a
warning and the next run starts a fresh session. Scheduling is the
operator's concern (cron, systemd timers); this command runs exactly
one invocation.`,
		Usage: "routines run <name> [flags]",
		Examples: []cli.Example{
			{
				Description: "Run the nightly letter",
				Command:     "routines run letter",
			},
			{
				Description: "Run against an explicit config file",
				Command:     "routines run digest --config /etc/routines.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("run", &params)
		},
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: routines run <name>")
			}
			cfg, err := loadConfig(params.Config)
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(cli.ParseLevel(cfg.Logging.Level)).With(
				"command", "run",
				"routine", args[0],
			)
			return executeRun(ctx, cfg, args[0], &params.JSONOutput, os.Stdout, logger)
		},
	}
}

// runReport is the JSON shape of a finished run.
type runReport struct {
	Routine      string `json:"routine"`
	InvocationID string `json:"invocation_id"`
	NewSession   bool   `json:"new_session"`
	Forked       bool   `json:"forked,omitempty"`
	Committed    bool   `json:"committed"`
	CommitError  string `json:"commit_error,omitempty"`
	ResultBytes  int    `json:"result_bytes"`
	DurationMS   int64  `json:"duration_ms"`
	Transcript   string `json:"transcript,omitempty"`
	Text         string `json:"text"`
}

// executeRun assembles the full harness from configuration and runs
// one invocation. Fatal run errors come back as an ExitError after
// being logged; a degraded commit is a warning, not a failure.
func executeRun(ctx context.Context, cfg *config.Config, name string, jsonOutput *cli.JSONOutput, output io.Writer, logger *slog.Logger) error {
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	journalStore, err := openJournal(cfg, logger)
	if err != nil {
		return err
	}
	if journalStore != nil {
		defer journalStore.Close()
	}

	// A nil *journal.Store must stay a nil interface, not a typed
	// nil, or the harness and catalog would call methods on it.
	var history catalog.RunHistory
	var runJournal harness.RunJournal
	if journalStore != nil {
		history = journalStore
		runJournal = journalStore
	}

	registry, err := buildRegistry(cfg, history)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runEngine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	runner, err := harness.NewRunner(harness.Config{
		Registry:     registry,
		Store:        store,
		Engine:       runEngine,
		Journal:      runJournal,
		Logger:       logger,
		ReadAttempts: cfg.Store.ReadAttempts,
	})
	if err != nil {
		return err
	}

	outcome, runErr := runner.Run(ctx, name)
	if runErr != nil {
		// The harness already logged the failure with full context.
		return &cli.ExitError{Code: 1}
	}

	if outcome.CommitErr != nil {
		logger.Warn("session commit failed; continuity degraded, next run starts fresh",
			"routine", outcome.RoutineName,
			"error", outcome.CommitErr)
	}

	report := runReport{
		Routine:      outcome.RoutineName,
		InvocationID: outcome.InvocationID,
		NewSession:   outcome.NewSession,
		Forked:       outcome.Forked,
		Committed:    outcome.Committed,
		ResultBytes:  len(outcome.Text),
		DurationMS:   outcome.FinishedAt.Sub(outcome.StartedAt).Milliseconds(),
		Transcript:   outcome.Transcript.Path,
		Text:         outcome.Text,
	}
	if outcome.CommitErr != nil {
		report.CommitError = outcome.CommitErr.Error()
	}

	if done, err := jsonOutput.EmitJSON(report); done {
		return err
	}

	fmt.Fprintln(output, outcome.Text)
	return nil
}
