// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"time"
)

// RequireReceive reads one value from ch within timeout, or fails the
// test with message. The timeout is a hang safety valve, not a timing
// assertion: tests that care about time drive a fake clock and use a
// generous timeout here.
//
//	result := testutil.RequireReceive(t, results, 5*time.Second, "run did not finish")
func RequireReceive[T any](t interface {
	Helper()
	Fatalf(format string, args ...any)
}, ch <-chan T, timeout time.Duration, message string) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed without sending a value: %s", message)
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, message)
	}
	panic("unreachable")
}
