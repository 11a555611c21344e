// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the harness performs: reading
// the current time and waiting for a duration to pass. Production
// code injects Real(); tests inject Fake() and drive time by hand.
//
// Code that would call time.Now or time.After takes a Clock (or sits
// on a struct with a Clock field) instead of calling the time package
// directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. Equivalent to time.After; if d <= 0 the
	// channel receives immediately.
	After(d time.Duration) <-chan time.Time
}
