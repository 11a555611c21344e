// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"encoding/json"
	"time"
)

// EventType classifies transcript events.
type EventType string

const (
	// EventTypeSystem covers engine housekeeping lines: session init,
	// shutdown, compaction boundaries.
	EventTypeSystem EventType = "system"

	// EventTypeResponse is text produced by the engine.
	EventTypeResponse EventType = "response"

	// EventTypeToolCall is the engine invoking a tool.
	EventTypeToolCall EventType = "tool_call"

	// EventTypeToolResult is a tool's reply to an invocation.
	EventTypeToolResult EventType = "tool_result"

	// EventTypeResult closes a run: result text, session identity,
	// and metrics.
	EventTypeResult EventType = "result"

	// EventTypeOutput preserves stream lines with no structured
	// mapping.
	EventTypeOutput EventType = "output"

	// EventTypeError records a run failure inside the transcript.
	EventTypeError EventType = "error"
)

// Event is one transcript entry, serialized as a JSONL line. Exactly
// one of the typed payload pointers is set, matching Type.
type Event struct {
	// Timestamp is when the driver observed the event.
	Timestamp time.Time `json:"timestamp"`

	Type EventType `json:"type"`

	// SessionID is the engine session the stream reported on this
	// line, when it reported one.
	SessionID string `json:"session_id,omitempty"`

	System     *SystemEvent     `json:"system,omitempty"`
	Response   *ResponseEvent   `json:"response,omitempty"`
	ToolCall   *ToolCallEvent   `json:"tool_call,omitempty"`
	ToolResult *ToolResultEvent `json:"tool_result,omitempty"`
	Result     *ResultEvent     `json:"result,omitempty"`
	Output     *OutputEvent     `json:"output,omitempty"`
	Error      *ErrorEvent      `json:"error,omitempty"`
}

// SystemEvent carries engine housekeeping. Subtypes seen from Claude
// Code: "init", "shutdown", "compact_boundary".
type SystemEvent struct {
	Subtype string `json:"subtype"`
	Message string `json:"message,omitempty"`
}

// ResponseEvent is a block of engine text.
type ResponseEvent struct {
	Content string `json:"content"`
}

// ToolCallEvent names the tool and preserves its input verbatim so
// transcript consumers can re-parse it against their own schemas.
type ToolCallEvent struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// ToolResultEvent pairs with the ToolCallEvent of the same ID.
type ToolResultEvent struct {
	ID      string `json:"id,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Output  string `json:"output,omitempty"`
}

// ResultEvent is the run's terminal accounting.
type ResultEvent struct {
	// Subtype is the outcome the engine reported: "success",
	// "error_max_turns", "error_during_execution".
	Subtype string `json:"subtype"`

	// IsError marks runs that did not complete.
	IsError bool `json:"is_error,omitempty"`

	// Text is the result text handed back to the routine.
	Text string `json:"text,omitempty"`

	InputTokens     int64   `json:"input_tokens,omitempty"`
	OutputTokens    int64   `json:"output_tokens,omitempty"`
	CostUSD         float64 `json:"cost_usd,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// TurnCount is engine turns, one per API round trip.
	TurnCount int64 `json:"turn_count,omitempty"`
}

// OutputEvent preserves an unrecognized line untouched.
type OutputEvent struct {
	Raw json.RawMessage `json:"raw"`
}

// ErrorEvent ends a failed run's transcript with the failure text.
type ErrorEvent struct {
	Message string `json:"message"`
}
