// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"strings"
	"testing"
	"time"
)

// Sample stream-json output from Claude Code (representative fragments).
const sampleStreamJSON = `{"type":"system","subtype":"init","session_id":"ses-abc123","message":"Claude Code starting"}
{"type":"assistant","subtype":"text","session_id":"ses-abc123","text":"I'll check the journal first."}
{"type":"assistant","subtype":"tool_use","session_id":"ses-abc123","tool_use_id":"tu-1","name":"Read","input":{"file_path":"/tmp/digest.md"}}
{"type":"tool","subtype":"result","session_id":"ses-abc123","tool_use_id":"tu-1","content":"# Digest\n\nNothing new.","is_error":false}
{"type":"assistant","subtype":"text","session_id":"ses-abc123","text":"Summary written."}
{"type":"result","subtype":"success","session_id":"ses-abc123","is_error":false,"result":"Summary written to the outbox.","total_cost_usd":0.015,"duration_ms":4500,"num_turns":3,"usage":{"input_tokens":2500,"output_tokens":800}}
`

func parseSampleStream(t *testing.T, stream string) []Event {
	t.Helper()
	now := time.Date(2026, 2, 11, 7, 30, 0, 0, time.UTC)
	var events []Event
	for _, line := range strings.Split(stream, "\n") {
		if line == "" {
			continue
		}
		event, err := parseStreamLine(now, []byte(line))
		if err != nil {
			t.Fatalf("parseStreamLine(%q): %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestParseStreamEventTypes(t *testing.T) {
	t.Parallel()

	events := parseSampleStream(t, sampleStreamJSON)
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}

	// Event 0: system init.
	if events[0].Type != EventTypeSystem {
		t.Errorf("event[0].Type = %q, want system", events[0].Type)
	}
	if events[0].SessionID != "ses-abc123" {
		t.Errorf("event[0].SessionID = %q, want ses-abc123", events[0].SessionID)
	}
	if events[0].System.Subtype != "init" {
		t.Errorf("event[0].System.Subtype = %q, want init", events[0].System.Subtype)
	}
	if events[0].System.Message != "Claude Code starting" {
		t.Errorf("event[0].System.Message = %q", events[0].System.Message)
	}

	// Event 1: assistant text.
	if events[1].Type != EventTypeResponse {
		t.Errorf("event[1].Type = %q, want response", events[1].Type)
	}
	if events[1].Response.Content != "I'll check the journal first." {
		t.Errorf("event[1].Response.Content = %q", events[1].Response.Content)
	}

	// Event 2: tool use.
	if events[2].Type != EventTypeToolCall {
		t.Errorf("event[2].Type = %q, want tool_call", events[2].Type)
	}
	if events[2].ToolCall.Name != "Read" {
		t.Errorf("event[2].ToolCall.Name = %q, want Read", events[2].ToolCall.Name)
	}
	if events[2].ToolCall.ID != "tu-1" {
		t.Errorf("event[2].ToolCall.ID = %q, want tu-1", events[2].ToolCall.ID)
	}
	if !strings.Contains(string(events[2].ToolCall.Input), "digest.md") {
		t.Errorf("event[2].ToolCall.Input = %s, want file_path preserved", events[2].ToolCall.Input)
	}

	// Event 3: tool result.
	if events[3].Type != EventTypeToolResult {
		t.Errorf("event[3].Type = %q, want tool_result", events[3].Type)
	}
	if events[3].ToolResult.ID != "tu-1" {
		t.Errorf("event[3].ToolResult.ID = %q, want tu-1", events[3].ToolResult.ID)
	}
	if events[3].ToolResult.IsError {
		t.Error("event[3].ToolResult.IsError should be false")
	}
	if !strings.Contains(events[3].ToolResult.Output, "Nothing new") {
		t.Errorf("event[3].ToolResult.Output = %q", events[3].ToolResult.Output)
	}

	// Event 5: final result with text and metrics.
	final := events[5]
	if final.Type != EventTypeResult {
		t.Errorf("event[5].Type = %q, want result", final.Type)
	}
	if final.Result.Subtype != "success" {
		t.Errorf("event[5].Result.Subtype = %q, want success", final.Result.Subtype)
	}
	if final.Result.IsError {
		t.Error("event[5].Result.IsError should be false")
	}
	if final.Result.Text != "Summary written to the outbox." {
		t.Errorf("event[5].Result.Text = %q", final.Result.Text)
	}
	if final.Result.InputTokens != 2500 {
		t.Errorf("event[5].Result.InputTokens = %d, want 2500", final.Result.InputTokens)
	}
	if final.Result.OutputTokens != 800 {
		t.Errorf("event[5].Result.OutputTokens = %d, want 800", final.Result.OutputTokens)
	}
	if final.Result.CostUSD < 0.014 || final.Result.CostUSD > 0.016 {
		t.Errorf("event[5].Result.CostUSD = %f, want ~0.015", final.Result.CostUSD)
	}
	// duration_ms = 4500 → 4.5 seconds.
	if final.Result.DurationSeconds < 4.4 || final.Result.DurationSeconds > 4.6 {
		t.Errorf("event[5].Result.DurationSeconds = %f, want ~4.5", final.Result.DurationSeconds)
	}
	if final.Result.TurnCount != 3 {
		t.Errorf("event[5].Result.TurnCount = %d, want 3", final.Result.TurnCount)
	}
}

func TestParseStreamMalformedLine(t *testing.T) {
	t.Parallel()

	_, err := parseStreamLine(time.Now(), []byte("not valid json"))
	if err == nil {
		t.Fatal("malformed line should return an error")
	}
}

func TestParseStreamUnknownType(t *testing.T) {
	t.Parallel()

	line := `{"type":"future_event","session_id":"ses-9","data":"something new"}`
	event, err := parseStreamLine(time.Now(), []byte(line))
	if err != nil {
		t.Fatalf("parseStreamLine: %v", err)
	}

	// Unknown types should produce output events with raw JSON preserved.
	if event.Type != EventTypeOutput {
		t.Errorf("unknown type should produce output event, got %q", event.Type)
	}
	if event.Output == nil {
		t.Fatal("output event should have Output field set")
	}
	if !strings.Contains(string(event.Output.Raw), "future_event") {
		t.Errorf("raw output should contain the original JSON, got %s", event.Output.Raw)
	}
	if event.SessionID != "ses-9" {
		t.Errorf("SessionID = %q, want ses-9 (envelope still read)", event.SessionID)
	}
}

func TestParseStreamUnknownSubtype(t *testing.T) {
	t.Parallel()

	line := `{"type":"assistant","subtype":"thinking","text":"hmm"}`
	event, err := parseStreamLine(time.Now(), []byte(line))
	if err != nil {
		t.Fatalf("parseStreamLine: %v", err)
	}
	if event.Type != EventTypeOutput {
		t.Errorf("unknown assistant subtype should fall back to output, got %q", event.Type)
	}
}

func TestParseStreamToolError(t *testing.T) {
	t.Parallel()

	line := `{"type":"tool","subtype":"result","tool_use_id":"tu-2","content":"permission denied","is_error":true}`
	event, err := parseStreamLine(time.Now(), []byte(line))
	if err != nil {
		t.Fatalf("parseStreamLine: %v", err)
	}
	if event.Type != EventTypeToolResult {
		t.Fatalf("Type = %q, want tool_result", event.Type)
	}
	if !event.ToolResult.IsError {
		t.Error("ToolResult.IsError should be true")
	}
	if event.ToolResult.Output != "permission denied" {
		t.Errorf("ToolResult.Output = %q", event.ToolResult.Output)
	}
}

func TestParseStreamResultError(t *testing.T) {
	t.Parallel()

	line := `{"type":"result","subtype":"error_during_execution","is_error":true,"result":"tool budget exhausted"}`
	event, err := parseStreamLine(time.Now(), []byte(line))
	if err != nil {
		t.Fatalf("parseStreamLine: %v", err)
	}
	if event.Type != EventTypeResult {
		t.Fatalf("Type = %q, want result", event.Type)
	}
	if !event.Result.IsError {
		t.Error("Result.IsError should be true")
	}
	if event.Result.Subtype != "error_during_execution" {
		t.Errorf("Result.Subtype = %q", event.Result.Subtype)
	}
	if event.Result.Text != "tool budget exhausted" {
		t.Errorf("Result.Text = %q", event.Result.Text)
	}
}

func TestRawOutputEventCopiesLine(t *testing.T) {
	t.Parallel()

	// The scanner reuses its buffer between lines; the event must
	// hold its own copy.
	buffer := []byte(`{"type":"mystery"}`)
	event := rawOutputEvent(time.Now(), "", buffer)
	copy(buffer, []byte(`XXXXXXXXXXXXXXXXXX`))

	if string(event.Output.Raw) != `{"type":"mystery"}` {
		t.Errorf("raw output mutated with scanner buffer: %s", event.Output.Raw)
	}
}

func TestExtractStringField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  string
		field string
		want  string
	}{
		{"present", `{"text":"hello"}`, "text", "hello"},
		{"missing", `{"other":"hello"}`, "text", ""},
		{"wrong type", `{"text":42}`, "text", ""},
		{"malformed", `{`, "text", ""},
		{"empty value", `{"text":""}`, "text", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := extractStringField([]byte(test.data), test.field)
			if got != test.want {
				t.Errorf("extractStringField(%s, %q) = %q, want %q", test.data, test.field, got, test.want)
			}
		})
	}
}
