// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/routines/cmd/routines/cli"
	"github.com/bureau-foundation/routines/lib/config"
	"github.com/bureau-foundation/routines/lib/harness"
	"github.com/bureau-foundation/routines/lib/session"
	"github.com/spf13/pflag"
)

// infoParams holds the parameters for the info command.
type infoParams struct {
	cli.JSONOutput
	Config string `flag:"config,c" desc:"config file path (defaults to ROUTINES_CONFIG)"`
	Limit  int    `flag:"limit,n"  desc:"number of journal entries to show" default:"10"`
}

func infoCommand() *cli.Command {
	var params infoParams

	return &cli.Command{
		Name:    "info",
		Summary: "Show a routine's definition and recent runs",
		Description: `Show one routine in detail: its session strategy, the last
committed run read from the session store, and its recent journal
entries.

The definition section is always available. The last-run and journal
sections are best-effort: an unreachable store or a disabled journal
degrades them to a warning instead of failing the command.`,
		Usage: "routines info <name> [flags]",
		Examples: []cli.Example{
			{
				Description: "Inspect the letter routine",
				Command:     "routines info letter",
			},
			{
				Description: "Machine-readable output with more history",
				Command:     "routines info digest --json --limit 50",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("info", &params)
		},
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: routines info <name>")
			}
			cfg, err := loadConfig(params.Config)
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(cli.ParseLevel(cfg.Logging.Level)).With(
				"command", "info",
				"routine", args[0],
			)
			return executeInfo(ctx, cfg, args[0], params.Limit, &params.JSONOutput, os.Stdout, logger)
		},
	}
}

// lastRunReport is the JSON shape of the stored invocation record.
type lastRunReport struct {
	InvocationID string `json:"invocation_id"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at"`
	NewSession   bool   `json:"new_session"`
	Forked       bool   `json:"forked,omitempty"`
	ResultBytes  int64  `json:"result_bytes"`
	Transcript   string `json:"transcript,omitempty"`
}

// journalRunReport is the JSON shape of one journal entry.
type journalRunReport struct {
	InvocationID string `json:"invocation_id"`
	StartedAt    string `json:"started_at"`
	Duration     string `json:"duration"`
	NewSession   bool   `json:"new_session"`
	Committed    bool   `json:"committed"`
	ResultBytes  int64  `json:"result_bytes"`
	Error        string `json:"error,omitempty"`
}

// infoReport is the JSON shape of the info command. Tools serializes
// as null for the engine default set and [] for an explicitly empty
// set.
type infoReport struct {
	Name        string             `json:"name"`
	Strategy    string             `json:"strategy"`
	SessionKey  string             `json:"session_key,omitempty"`
	ForkFromKey string             `json:"fork_from_key,omitempty"`
	SessionTTL  string             `json:"session_ttl,omitempty"`
	Timezone    string             `json:"timezone,omitempty"`
	Tools       []string           `json:"allowed_tools"`
	LastRun     *lastRunReport     `json:"last_run,omitempty"`
	RecentRuns  []journalRunReport `json:"recent_runs"`
}

// executeInfo gathers the three sections of the report. Only the
// definition is required; the store and journal sections are skipped
// with a warning when their backend is unavailable.
func executeInfo(ctx context.Context, cfg *config.Config, name string, limit int, jsonOutput *cli.JSONOutput, output io.Writer, logger *slog.Logger) error {
	registry, err := buildRegistry(cfg, nil)
	if err != nil {
		return err
	}
	target, err := registry.Lookup(name)
	if err != nil {
		return err
	}
	definition := target.Definition()

	report := infoReport{
		Name:        definition.Name,
		Strategy:    definition.Strategy(),
		SessionKey:  definition.SessionKey,
		ForkFromKey: definition.ForkFromKey,
		Timezone:    definition.Timezone,
		Tools:       target.AllowedTools(),
		RecentRuns:  []journalRunReport{},
	}
	if definition.SessionTTL > 0 {
		report.SessionTTL = definition.SessionTTL.String()
	}

	if definition.SessionKey != "" {
		report.LastRun = readLastRun(ctx, cfg, definition.SessionKey, logger)
	}

	entries, err := readJournalRuns(ctx, cfg, name, limit, logger)
	if err == nil {
		report.RecentRuns = entries
	}

	if done, err := jsonOutput.EmitJSON(report); done {
		return err
	}

	writeInfoText(output, report)
	return nil
}

// readLastRun fetches the invocation record committed next to the
// routine's session. Best-effort: a missing record or an unreachable
// store yields nil.
func readLastRun(ctx context.Context, cfg *config.Config, sessionKey string, logger *slog.Logger) *lastRunReport {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Warn("session store unavailable; skipping last-run section", "error", err)
		return nil
	}
	defer store.Close()

	record, err := harness.ReadRecord(ctx, store, sessionKey)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		logger.Warn("reading invocation record failed", "error", err)
		return nil
	}

	return &lastRunReport{
		InvocationID: record.InvocationID,
		StartedAt:    record.StartedAt.Format(time.RFC3339),
		FinishedAt:   record.FinishedAt.Format(time.RFC3339),
		NewSession:   record.NewSession,
		Forked:       record.Forked,
		ResultBytes:  record.ResultBytes,
		Transcript:   record.TranscriptPath,
	}
}

// readJournalRuns fetches the routine's recent journal entries.
// Best-effort: a disabled or unreadable journal yields an error the
// caller treats as "no section".
func readJournalRuns(ctx context.Context, cfg *config.Config, name string, limit int, logger *slog.Logger) ([]journalRunReport, error) {
	journalStore, err := openJournal(cfg, logger)
	if err != nil {
		logger.Warn("run journal unavailable; skipping recent-runs section", "error", err)
		return nil, err
	}
	if journalStore == nil {
		return []journalRunReport{}, nil
	}
	defer journalStore.Close()

	entries, err := journalStore.Recent(ctx, name, limit)
	if err != nil {
		logger.Warn("reading run journal failed", "error", err)
		return nil, err
	}

	rows := make([]journalRunReport, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, journalRunReport{
			InvocationID: entry.InvocationID,
			StartedAt:    entry.StartedAt.Format(time.RFC3339),
			Duration:     entry.FinishedAt.Sub(entry.StartedAt).Round(time.Second).String(),
			NewSession:   entry.NewSession,
			Committed:    entry.Committed,
			ResultBytes:  entry.ResultBytes,
			Error:        entry.Error,
		})
	}
	return rows, nil
}

// writeInfoText renders the report as aligned label lines plus a
// journal table.
func writeInfoText(w io.Writer, report infoReport) {
	fmt.Fprintf(w, "Routine:      %s\n", report.Name)
	fmt.Fprintf(w, "Strategy:     %s\n", report.Strategy)
	if report.SessionKey != "" {
		fmt.Fprintf(w, "Session key:  %s\n", report.SessionKey)
	}
	if report.ForkFromKey != "" {
		fmt.Fprintf(w, "Forks from:   %s\n", report.ForkFromKey)
	}
	if report.SessionTTL != "" {
		fmt.Fprintf(w, "Session TTL:  %s\n", report.SessionTTL)
	}
	if report.Timezone != "" {
		fmt.Fprintf(w, "Timezone:     %s\n", report.Timezone)
	}
	fmt.Fprintf(w, "Tools:        %s\n", toolsDisplay(report.Tools))

	if report.LastRun != nil {
		fmt.Fprintf(w, "\nLast committed run:\n")
		fmt.Fprintf(w, "  Invocation:  %s\n", report.LastRun.InvocationID)
		fmt.Fprintf(w, "  Started:     %s\n", report.LastRun.StartedAt)
		fmt.Fprintf(w, "  Finished:    %s\n", report.LastRun.FinishedAt)
		fmt.Fprintf(w, "  Result:      %d bytes\n", report.LastRun.ResultBytes)
		if report.LastRun.Transcript != "" {
			fmt.Fprintf(w, "  Transcript:  %s\n", report.LastRun.Transcript)
		}
	}

	if len(report.RecentRuns) > 0 {
		fmt.Fprintf(w, "\nRecent runs:\n")
		writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "STARTED\tDURATION\tCOMMITTED\tBYTES\tERROR")
		for _, run := range report.RecentRuns {
			fmt.Fprintf(writer, "%s\t%s\t%v\t%d\t%s\n",
				run.StartedAt,
				run.Duration,
				run.Committed,
				run.ResultBytes,
				orDash(run.Error))
		}
		writer.Flush()
	}
}
