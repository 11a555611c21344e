// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// streamEnvelope is the common envelope for Claude Code stream-json
// output. Every line is a JSON object with at least a "type" field;
// most lines also carry the session identifier.
type streamEnvelope struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
}

// parseStreamLine parses a single line of Claude Code stream-json
// output into a structured Event.
//
// Claude Code stream-json event types:
//   - {"type":"system","subtype":"init",...} → EventTypeSystem
//   - {"type":"assistant","subtype":"text",...} → EventTypeResponse
//   - {"type":"assistant","subtype":"tool_use",...} → EventTypeToolCall
//   - {"type":"tool","subtype":"result",...} → EventTypeToolResult
//   - {"type":"result",...} → EventTypeResult (text, metrics, outcome)
//   - Unknown types → EventTypeOutput (raw JSON preserved)
func parseStreamLine(timestamp time.Time, line []byte) (Event, error) {
	var envelope streamEnvelope
	if err := json.Unmarshal(line, &envelope); err != nil {
		return Event{}, fmt.Errorf("parsing stream-json envelope: %w", err)
	}

	switch envelope.Type {
	case "system":
		return Event{
			Timestamp: timestamp,
			Type:      EventTypeSystem,
			SessionID: envelope.SessionID,
			System: &SystemEvent{
				Subtype: envelope.Subtype,
				Message: extractStringField(line, "message"),
			},
		}, nil

	case "assistant":
		return parseAssistantLine(timestamp, envelope, line), nil

	case "tool":
		return parseToolLine(timestamp, envelope, line), nil

	case "result":
		return parseResultLine(timestamp, envelope, line), nil

	default:
		return rawOutputEvent(timestamp, envelope.SessionID, line), nil
	}
}

// parseAssistantLine handles {"type":"assistant",...} lines.
func parseAssistantLine(timestamp time.Time, envelope streamEnvelope, line []byte) Event {
	switch envelope.Subtype {
	case "text":
		return Event{
			Timestamp: timestamp,
			Type:      EventTypeResponse,
			SessionID: envelope.SessionID,
			Response: &ResponseEvent{
				Content: extractStringField(line, "text"),
			},
		}

	case "tool_use":
		var toolUse struct {
			ID    string          `json:"tool_use_id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}
		json.Unmarshal(line, &toolUse)
		return Event{
			Timestamp: timestamp,
			Type:      EventTypeToolCall,
			SessionID: envelope.SessionID,
			ToolCall: &ToolCallEvent{
				ID:    toolUse.ID,
				Name:  toolUse.Name,
				Input: toolUse.Input,
			},
		}

	default:
		return rawOutputEvent(timestamp, envelope.SessionID, line)
	}
}

// parseToolLine handles {"type":"tool",...} lines.
func parseToolLine(timestamp time.Time, envelope streamEnvelope, line []byte) Event {
	switch envelope.Subtype {
	case "result":
		var toolResult struct {
			ToolUseID string `json:"tool_use_id"`
			IsError   bool   `json:"is_error"`
			Content   string `json:"content"`
		}
		json.Unmarshal(line, &toolResult)
		return Event{
			Timestamp: timestamp,
			Type:      EventTypeToolResult,
			SessionID: envelope.SessionID,
			ToolResult: &ToolResultEvent{
				ID:      toolResult.ToolUseID,
				IsError: toolResult.IsError,
				Output:  toolResult.Content,
			},
		}

	default:
		return rawOutputEvent(timestamp, envelope.SessionID, line)
	}
}

// parseResultLine handles the final {"type":"result",...} line,
// extracting the result text, outcome, and metrics.
func parseResultLine(timestamp time.Time, envelope streamEnvelope, line []byte) Event {
	var result struct {
		IsError    bool    `json:"is_error"`
		Result     string  `json:"result"`
		CostUSD    float64 `json:"total_cost_usd"`
		DurationMS float64 `json:"duration_ms"`
		TurnCount  int64   `json:"num_turns"`
		Usage      *struct {
			InputTokens  int64 `json:"input_tokens"`
			OutputTokens int64 `json:"output_tokens"`
		} `json:"usage"`
	}
	json.Unmarshal(line, &result)

	event := Event{
		Timestamp: timestamp,
		Type:      EventTypeResult,
		SessionID: envelope.SessionID,
		Result: &ResultEvent{
			Subtype:         envelope.Subtype,
			IsError:         result.IsError,
			Text:            result.Result,
			CostUSD:         result.CostUSD,
			DurationSeconds: result.DurationMS / 1000.0,
			TurnCount:       result.TurnCount,
		},
	}
	if result.Usage != nil {
		event.Result.InputTokens = result.Usage.InputTokens
		event.Result.OutputTokens = result.Usage.OutputTokens
	}
	return event
}

// rawOutputEvent preserves an unrecognized line as a raw output
// event. The line bytes are copied because the scanner reuses its
// buffer.
func rawOutputEvent(timestamp time.Time, sessionID string, line []byte) Event {
	return Event{
		Timestamp: timestamp,
		Type:      EventTypeOutput,
		SessionID: sessionID,
		Output:    &OutputEvent{Raw: json.RawMessage(append([]byte(nil), line...))},
	}
}

// extractStringField extracts a string field from a JSON object
// without full deserialization. Falls back to empty string on any
// error.
func extractStringField(data []byte, field string) string {
	var parsed map[string]json.RawMessage
	if json.Unmarshal(data, &parsed) != nil {
		return ""
	}
	raw, ok := parsed[field]
	if !ok {
		return ""
	}
	var value string
	if json.Unmarshal(raw, &value) != nil {
		return ""
	}
	return value
}
