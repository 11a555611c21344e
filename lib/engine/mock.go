// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockEngine implements Engine without spawning any external process
// or contacting a backend. It exists for tests and for dry-running
// routine wiring end-to-end without an API key: session tokens are
// deterministic and every request is recorded for inspection.
type MockEngine struct {
	// Respond produces the result text for a request. Nil uses a
	// default that echoes the first line of the prompt.
	Respond func(Request) string

	mutex    sync.Mutex
	sessions int
	requests []Request
}

// NewMockEngine creates a mock engine with the default responder.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// Invoke records the request and returns a deterministic result. A
// resumed session keeps its token; a fresh or forked invocation gets
// the next token in sequence.
func (e *MockEngine) Invoke(ctx context.Context, request Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	e.mutex.Lock()
	e.requests = append(e.requests, request)
	token := request.ResumeToken
	if token == "" || request.Fork {
		e.sessions++
		token = fmt.Sprintf("mock-session-%06d", e.sessions)
	}
	respond := e.Respond
	e.mutex.Unlock()

	text := ""
	if respond != nil {
		text = respond(request)
	} else {
		prompt := request.Prompt
		if index := strings.IndexByte(prompt, '\n'); index >= 0 {
			prompt = prompt[:index]
		}
		text = fmt.Sprintf("mock response to %q", prompt)
	}

	return Result{Text: text, ResumeToken: token}, nil
}

// Requests returns a copy of every request seen so far, in order.
func (e *MockEngine) Requests() []Request {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return append([]Request(nil), e.requests...)
}
