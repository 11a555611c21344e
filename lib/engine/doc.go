// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine defines the engine contract and the Claude Code
// driver that fulfils it.
//
// An [Engine] turns a [Request] (prompt, tool allowances, resume
// instructions, invocation label) into a [Result] (result text, the
// resume token for the session the run produced, transcript
// metadata). Invocation is at-most-once: the harness never retries a
// failed invocation, so drivers must not retry internally either.
//
// # Claude Code driver
//
// [NewClaudeEngine] spawns the Claude Code CLI per invocation with
// stream-json output and parses the event stream line by line:
//
//	claude --output-format stream-json --print --verbose \
//	       [--resume TOKEN] [--fork-session] [--allowedTools A,B] \
//	       [--permission-mode bypassPermissions] "PROMPT"
//
// The invocation label travels to the backend as an
// "x-routines-client" custom header via ANTHROPIC_CUSTOM_HEADERS, so
// request accounting can attribute traffic per routine without
// touching the prompt.
//
// Every event the process emits is appended to a JSONL transcript
// (optionally zstd-compressed); the [TranscriptInfo] in the result
// carries the path, counters, and the BLAKE3 digest of the
// uncompressed stream.
//
// # Mock driver
//
// [NewMockEngine] is an in-process Engine for tests and development
// deployments ("backend: mock" in the config). It echoes a canned
// response and mints deterministic resume tokens, so the full
// harness path (resolution, invocation, commit) can run without a
// Claude Code binary.
package engine
