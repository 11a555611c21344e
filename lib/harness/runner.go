// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/routines/lib/clock"
	"github.com/bureau-foundation/routines/lib/engine"
	"github.com/bureau-foundation/routines/lib/journal"
	"github.com/bureau-foundation/routines/lib/routine"
	"github.com/bureau-foundation/routines/lib/session"
)

// RunJournal records finished runs. *journal.Store satisfies it; a
// nil journal disables history.
type RunJournal interface {
	Record(ctx context.Context, entry journal.Entry) error
}

// Config holds the collaborators a Runner needs. Registry, Store,
// Engine, and Logger are required.
type Config struct {
	Registry *routine.Registry
	Store    session.Store
	Engine   engine.Engine

	// Journal receives one entry per run, best-effort. Optional.
	Journal RunJournal

	// Clock drives run timestamps and resolver backoff. Defaults to
	// the real clock.
	Clock clock.Clock

	Logger *slog.Logger

	// ReadAttempts is forwarded to the session resolver. Zero uses
	// the resolver default.
	ReadAttempts int
}

// Runner executes routines. Safe for concurrent use; each Run call is
// independent.
type Runner struct {
	registry *routine.Registry
	store    session.Store
	engine   engine.Engine
	journal  RunJournal
	clock    clock.Clock
	logger   *slog.Logger
	resolver *session.Resolver
}

// NewRunner validates the config and creates a Runner.
func NewRunner(config Config) (*Runner, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("runner: Registry is required")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("runner: Store is required")
	}
	if config.Engine == nil {
		return nil, fmt.Errorf("runner: Engine is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("runner: Logger is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}

	resolver, err := session.NewResolver(session.ResolverConfig{
		Store:        config.Store,
		Clock:        config.Clock,
		Logger:       config.Logger.With("component", "resolver"),
		ReadAttempts: config.ReadAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}

	return &Runner{
		registry: config.Registry,
		store:    config.Store,
		engine:   config.Engine,
		journal:  config.Journal,
		clock:    config.Clock,
		logger:   config.Logger,
		resolver: resolver,
	}, nil
}

// Outcome reports what a run did. CommitErr is the degraded-commit
// case: the engine work succeeded but its session state could not be
// persisted, so the next run starts fresh.
type Outcome struct {
	RoutineName  string
	InvocationID string

	// Text is the engine's final result text, as handed to the
	// routine's output handler.
	Text string

	// NewSession is true when the run started a fresh engine session.
	NewSession bool

	// Forked is true when the run branched off another session.
	Forked bool

	// Committed is true when the session state landed in the store.
	// Stateless runs never commit and report false.
	Committed bool

	// CommitErr is set when a due commit failed or could not be
	// attempted. Never set for stateless runs.
	CommitErr error

	Transcript engine.TranscriptInfo

	StartedAt  time.Time
	FinishedAt time.Time
}

// Run executes the named routine once. The engine is invoked at most
// once per call, on every path.
func (r *Runner) Run(ctx context.Context, name string) (Outcome, error) {
	target, err := r.registry.Lookup(name)
	if err != nil {
		return Outcome{}, err
	}
	definition := target.Definition()

	invocationID := uuid.NewString()
	startedAt := r.clock.Now()
	outcome := Outcome{
		RoutineName:  name,
		InvocationID: invocationID,
		StartedAt:    startedAt,
	}
	logger := r.logger.With("routine", name, "invocation", invocationID)

	location, err := definition.Location()
	if err != nil {
		return r.finish(ctx, logger, nil, outcome, err)
	}

	resolution, err := r.resolver.Resolve(ctx, definition)
	if err != nil {
		return r.finish(ctx, logger, nil, outcome, err)
	}
	outcome.NewSession = resolution.NewSession
	outcome.Forked = resolution.Fork

	runContext := routine.RunContext{
		Now:          startedAt.In(location),
		NewSession:   resolution.NewSession,
		ResumeToken:  resolution.ResumeToken,
		RoutineName:  name,
		InvocationID: invocationID,
		Logger:       logger,
	}

	logger.Info("run starting",
		"strategy", definition.Strategy(),
		"new_session", resolution.NewSession,
		"fork", resolution.Fork)

	prompt, err := buildPrompt(ctx, target, runContext)
	if err != nil {
		return r.finish(ctx, logger, &resolution, outcome, err)
	}

	allowedTools := target.AllowedTools()

	// The engine is invoked at most once: a run that is already
	// cancelled must not start it.
	if err := ctx.Err(); err != nil {
		return r.finish(ctx, logger, &resolution, outcome,
			fmt.Errorf("run cancelled before engine invocation: %w", err))
	}

	result, err := r.engine.Invoke(ctx, engine.Request{
		Prompt:       prompt,
		AllowedTools: allowedTools,
		ResumeToken:  resolution.ResumeToken,
		Fork:         resolution.Fork,
		Label:        "routine:" + name,
		InvocationID: invocationID,
	})
	if err != nil {
		return r.finish(ctx, logger, &resolution, outcome,
			routine.EngineFailed("invoking engine: %w", err))
	}
	outcome.Text = result.Text
	outcome.Transcript = result.Transcript

	if resolution.CommitKey != "" {
		// Cancellation observed between the engine returning and the
		// commit starting abandons the result; once the commit has
		// begun it runs to completion.
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, logger, &resolution, outcome,
				fmt.Errorf("run cancelled before session commit: %w", err))
		}
		r.commit(ctx, logger, name, resolution, result.ResumeToken, &outcome)
	}

	if err := handleOutput(ctx, target, runContext, result.Text); err != nil {
		return r.finish(ctx, logger, &resolution, outcome, err)
	}

	return r.finish(ctx, logger, &resolution, outcome, nil)
}

// commit persists the engine's session state at the resolved commit
// key. Failures degrade the outcome instead of failing the run: the
// engine work already happened and the routine still gets its output.
func (r *Runner) commit(ctx context.Context, logger *slog.Logger, name string, resolution session.Resolution, token string, outcome *Outcome) {
	if token == "" {
		outcome.CommitErr = routine.CommitFailed(
			"engine returned no resume token to commit at %q", resolution.CommitKey)
		logger.Warn("session commit skipped", "key", resolution.CommitKey,
			"error", outcome.CommitErr)
		return
	}

	state := session.State{
		Version:     session.StateVersion,
		ResumeToken: token,
		UpdatedAt:   r.clock.Now().UTC(),
		WrittenBy:   name,
	}
	err := session.PutState(context.WithoutCancel(ctx), r.store,
		resolution.CommitKey, state, resolution.CommitTTL)
	if err != nil {
		outcome.CommitErr = routine.CommitFailed(
			"committing session at %q: %w", resolution.CommitKey, err)
		logger.Warn("session commit failed", "key", resolution.CommitKey, "error", err)
		return
	}

	outcome.Committed = true
	logger.Info("session committed", "key", resolution.CommitKey,
		"ttl", resolution.CommitTTL)
}

// finish stamps the end time, journals the run, writes the invocation
// record for committed runs, and logs the terminal state. It is the
// single exit path for every run that got past routine lookup.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, resolution *session.Resolution, outcome Outcome, runErr error) (Outcome, error) {
	outcome.FinishedAt = r.clock.Now()

	// Journal and record writes happen even when the caller has
	// cancelled: they describe a run that already took place.
	background := context.WithoutCancel(ctx)

	if outcome.Committed && resolution != nil {
		r.writeRecord(background, logger, resolution.CommitKey, resolution.CommitTTL, outcome)
	}

	if r.journal != nil {
		entry := journal.Entry{
			InvocationID: outcome.InvocationID,
			Routine:      outcome.RoutineName,
			StartedAt:    outcome.StartedAt,
			FinishedAt:   outcome.FinishedAt,
			NewSession:   outcome.NewSession,
			Committed:    outcome.Committed,
			ResultBytes:  int64(len(outcome.Text)),
		}
		switch {
		case runErr != nil:
			entry.Error = runErr.Error()
		case outcome.CommitErr != nil:
			entry.Error = outcome.CommitErr.Error()
		}
		if err := r.journal.Record(background, entry); err != nil {
			logger.Warn("journal write failed", "error", err)
		}
	}

	duration := outcome.FinishedAt.Sub(outcome.StartedAt)
	if runErr != nil {
		logger.Error("run failed", "error", runErr, "duration", duration)
	} else {
		logger.Info("run complete",
			"committed", outcome.Committed,
			"result_bytes", len(outcome.Text),
			"duration", duration)
	}
	return outcome, runErr
}

// buildPrompt calls the routine's prompt builder with panics
// contained: an author bug aborts the run before the engine is
// invoked, it does not crash the process.
func buildPrompt(ctx context.Context, target routine.Routine, runContext routine.RunContext) (prompt string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			prompt = ""
			err = routine.BuildFailed("prompt builder panicked: %v", recovered)
		}
	}()

	built, buildErr := target.BuildPrompt(ctx, runContext)
	if buildErr != nil {
		return "", routine.BuildFailed("building prompt: %w", buildErr)
	}
	return built, nil
}

// handleOutput calls the routine's output handler with panics
// contained. By this point the session is already committed, so a
// handler bug costs the side effects of this run, never continuity.
func handleOutput(ctx context.Context, target routine.Routine, runContext routine.RunContext, text string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = routine.OutputFailed("output handler panicked: %v", recovered)
		}
	}()

	if handleErr := target.HandleOutput(ctx, runContext, text); handleErr != nil {
		return routine.OutputFailed("handling output: %w", handleErr)
	}
	return nil
}
