// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// Production code accepts a Clock instead of calling time.Now or
// time.After directly. Real() passes through to the time package;
// Fake() pins time for tests and moves it only through Advance, which
// makes TTL expiry and retry backoff exactly reproducible.
//
// The fake's one subtlety is synchronization: a goroutine under test
// registers its After waiter at some point after it starts, and an
// Advance that runs first fires nothing. WaitForTimers(n) blocks until
// n waiters are registered, closing that race:
//
//	c := clock.Fake(start)
//	go worker(c)
//	c.WaitForTimers(1)
//	c.Advance(backoff)
package clock
