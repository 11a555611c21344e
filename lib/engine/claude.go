// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bureau-foundation/routines/lib/clock"
)

// ClaudeConfig configures the Claude Code driver. Logger is required;
// everything else has a usable zero value.
type ClaudeConfig struct {
	// Binary is the Claude Code executable. The CLAUDE_BINARY
	// environment variable overrides it; defaults to "claude" on
	// PATH.
	Binary string

	// WorkingDirectory is where the process runs. Project settings
	// and hooks load from here. Empty inherits the harness's
	// working directory.
	WorkingDirectory string

	// Timeout bounds a single invocation. Zero means no timeout.
	Timeout time.Duration

	// TranscriptDir receives per-invocation JSONL transcripts named
	// by invocation ID. Empty disables transcript capture.
	TranscriptDir string

	// CompressTranscripts stores transcripts zstd-compressed.
	CompressTranscripts bool

	// BypassPermissions runs the engine with permission prompts
	// disabled. Required for unattended runs; nobody is around to
	// answer.
	BypassPermissions bool

	// Logger is required.
	Logger *slog.Logger

	// Clock stamps transcript events. Defaults to the real clock.
	Clock clock.Clock
}

// ClaudeEngine invokes the Claude Code CLI as a subprocess, one
// process per invocation.
type ClaudeEngine struct {
	config ClaudeConfig
}

// NewClaudeEngine validates the config and creates the driver.
func NewClaudeEngine(config ClaudeConfig) (*ClaudeEngine, error) {
	if config.Logger == nil {
		return nil, fmt.Errorf("claude engine: Logger is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Binary == "" {
		config.Binary = "claude"
	}
	if config.TranscriptDir != "" {
		if err := os.MkdirAll(config.TranscriptDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating transcript directory: %w", err)
		}
	}
	return &ClaudeEngine{config: config}, nil
}

// Invoke spawns Claude Code with stream-json output, parses the event
// stream, and returns the result text and the session the run
// produced. The backend is contacted exactly once: any failure
// (spawn, stream, nonzero exit, error outcome) is returned, never
// retried.
func (e *ClaudeEngine) Invoke(ctx context.Context, request Request) (Result, error) {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	binaryPath := os.Getenv("CLAUDE_BINARY")
	if binaryPath == "" {
		binaryPath = e.config.Binary
	}

	arguments := []string{
		"--output-format", "stream-json",
		"--print",
		"--verbose",
	}
	if request.ResumeToken != "" {
		arguments = append(arguments, "--resume", request.ResumeToken)
		if request.Fork {
			arguments = append(arguments, "--fork-session")
		}
	}
	// Nil means the engine's default tool set; an empty non-nil
	// slice is an explicit empty allowance.
	if request.AllowedTools != nil {
		arguments = append(arguments, "--allowedTools", strings.Join(request.AllowedTools, ","))
	}
	if e.config.BypassPermissions {
		arguments = append(arguments, "--permission-mode", "bypassPermissions")
	}
	// Initial prompt as positional argument.
	arguments = append(arguments, request.Prompt)

	command := exec.CommandContext(ctx, binaryPath, arguments...)
	command.Dir = e.config.WorkingDirectory
	command.Stderr = os.Stderr
	command.Env = os.Environ()
	if request.Label != "" {
		// The label reaches the backend as a custom header so
		// request accounting can attribute traffic per routine.
		command.Env = append(command.Env,
			"ANTHROPIC_CUSTOM_HEADERS=x-routines-client: "+request.Label)
	}
	// On cancellation, ask for a graceful wind-down first: SIGINT
	// lets Claude Code finish the current tool call and flush its
	// final events. The kill follows if it lingers.
	command.Cancel = func() error {
		return command.Process.Signal(syscall.SIGINT)
	}
	command.WaitDelay = 10 * time.Second

	stdout, err := command.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("creating stdout pipe: %w", err)
	}

	var transcript *TranscriptWriter
	if e.config.TranscriptDir != "" && request.InvocationID != "" {
		name := request.InvocationID + ".jsonl"
		if e.config.CompressTranscripts {
			name += ".zst"
		}
		transcript, err = NewTranscriptWriter(filepath.Join(e.config.TranscriptDir, name), e.config.CompressTranscripts)
		if err != nil {
			return Result{}, fmt.Errorf("opening transcript: %w", err)
		}
		defer transcript.Close()
	}

	e.config.Logger.Info("invoking claude",
		"binary", binaryPath,
		"label", request.Label,
		"resume", request.ResumeToken != "",
		"fork", request.Fork)

	if err := command.Start(); err != nil {
		return Result{}, fmt.Errorf("starting claude: %w", err)
	}

	outcome := e.scanStream(ctx, stdout, transcript)

	waitErr := command.Wait()
	if transcript != nil {
		// A failed run still ends its transcript with an error event,
		// so the capture alone tells success from failure.
		if message := invocationFailure(waitErr, outcome); message != "" {
			event := Event{
				Timestamp: e.config.Clock.Now(),
				Type:      EventTypeError,
				SessionID: outcome.sessionID,
				Error:     &ErrorEvent{Message: message},
			}
			if err := transcript.Write(event); err != nil {
				e.config.Logger.Warn("writing transcript event", "error", err)
			}
		}
		if err := transcript.Close(); err != nil {
			e.config.Logger.Warn("closing transcript", "error", err)
		}
	}
	if waitErr != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("claude interrupted: %w", ctx.Err())
		}
		return Result{}, fmt.Errorf("claude exited: %w", waitErr)
	}
	if outcome.scanErr != nil {
		return Result{}, fmt.Errorf("reading claude output: %w", outcome.scanErr)
	}
	if !outcome.sawResult {
		return Result{}, fmt.Errorf("claude stream ended without a result event")
	}
	if outcome.isError {
		return Result{}, fmt.Errorf("claude run failed: %s", outcome.failureReason())
	}

	result := Result{
		Text:        outcome.resultText,
		ResumeToken: outcome.sessionID,
	}
	if transcript != nil {
		result.Transcript = transcript.Info()
	}

	e.config.Logger.Info("claude run complete",
		"session", result.ResumeToken,
		"result_bytes", len(result.Text),
		"transcript_events", result.Transcript.Events)

	return result, nil
}

// invocationFailure describes why a run failed, or returns "" for a
// clean run.
func invocationFailure(waitErr error, outcome streamOutcome) string {
	switch {
	case waitErr != nil:
		return "claude exited: " + waitErr.Error()
	case outcome.scanErr != nil:
		return "reading claude output: " + outcome.scanErr.Error()
	case !outcome.sawResult:
		return "stream ended without a result event"
	case outcome.isError:
		return "run failed: " + outcome.failureReason()
	}
	return ""
}

// streamOutcome accumulates what the driver needs from the event
// stream: the session identity, the final result, and any scan
// failure.
type streamOutcome struct {
	sessionID     string
	resultText    string
	resultSubtype string
	sawResult     bool
	isError       bool
	scanErr       error
}

func (o *streamOutcome) failureReason() string {
	if o.resultSubtype != "" && o.resultSubtype != "success" {
		return o.resultSubtype
	}
	if o.resultText != "" {
		return o.resultText
	}
	return "result event reported an error"
}

// scanStream reads stream-json lines until EOF, writing each parsed
// event to the transcript and folding session identity and result
// state into the outcome.
func (e *ClaudeEngine) scanStream(ctx context.Context, stdout io.Reader, transcript *TranscriptWriter) streamOutcome {
	var outcome streamOutcome

	scanner := bufio.NewScanner(stdout)
	// Claude Code can produce long lines (tool results with large
	// file contents).
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		now := e.config.Clock.Now()
		event, err := parseStreamLine(now, line)
		if err != nil {
			// Malformed line: preserve as raw output.
			event = rawOutputEvent(now, "", line)
		}

		if event.SessionID != "" {
			outcome.sessionID = event.SessionID
		}
		if event.Type == EventTypeResult && event.Result != nil {
			outcome.sawResult = true
			outcome.resultText = event.Result.Text
			outcome.resultSubtype = event.Result.Subtype
			outcome.isError = event.Result.IsError || (event.Result.Subtype != "" && event.Result.Subtype != "success")
		}

		if transcript != nil {
			if err := transcript.Write(event); err != nil {
				// A lost transcript event must not fail the run.
				e.config.Logger.Warn("writing transcript event", "error", err)
			}
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		outcome.scanErr = err
	}

	return outcome
}
