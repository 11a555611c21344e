// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routine

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"direct", NotFound("unknown routine %q", "x"), KindNotFound},
		{"wrapped once", fmt.Errorf("running: %w", EngineFailed("engine exited")), KindEngine},
		{"wrapped twice", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", StoreUnavailable("store down"))), KindStoreUnavailable},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := KindOf(test.err); got != test.want {
				t.Errorf("KindOf = %q, want %q", got, test.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("resolving session: %w", InvalidConfig("fork without source"))

	if !IsKind(err, KindInvalidConfig) {
		t.Error("IsKind(KindInvalidConfig) = false, want true")
	}
	if IsKind(err, KindEngine) {
		t.Error("IsKind(KindEngine) = true, want false")
	}
	if IsKind(nil, KindEngine) {
		t.Error("IsKind(nil, ...) = true, want false")
	}
}

func TestRunErrorPreservesChain(t *testing.T) {
	sentinel := errors.New("connection refused")
	err := StoreUnavailable("reading session key %q: %w", "letter:self", sentinel)

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is lost the wrapped sentinel through RunError")
	}
	if err.Error() != `reading session key "letter:self": connection refused` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrorStringOmitsKind(t *testing.T) {
	err := BuildFailed("rendering template: boom")
	if got := err.Error(); got != "rendering template: boom" {
		t.Errorf("Error() = %q, want the message without the kind", got)
	}
}
