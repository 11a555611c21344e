// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock pinned to initial. Time stands still until
// Advance is called; goroutines blocked on After wake when the clock
// moves past their deadline.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{now: initial}
	clock.registered = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. Every After call
// registers a one-shot waiter; Advance fires the waiters whose
// deadlines it passes, in deadline order.
type FakeClock struct {
	mu         sync.Mutex
	now        time.Time
	waiters    []*waiter
	registered *sync.Cond
}

// waiter is one pending After call.
type waiter struct {
	deadline time.Time
	channel  chan time.Time
}

// Now reports the frozen time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that receives once the clock advances past
// the deadline. If d <= 0 the channel receives immediately without
// registering a waiter.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.now
		return channel
	}

	c.waiters = append(c.waiters, &waiter{
		deadline: c.now.Add(d),
		channel:  channel,
	})
	c.registered.Broadcast()
	return channel
}

// Advance moves the clock forward by d and fires every waiter whose
// deadline falls within the new time, in deadline order. The channel
// sends never block: waiter channels are buffered and receive at most
// once.
//
// A goroutine woken by a fired waiter may register a new one; its
// deadline is measured from the already-advanced clock, so it waits
// for the next Advance.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	target := c.now

	var fired []*waiter
	var pending []*waiter
	for _, w := range c.waiters {
		if w.deadline.After(target) {
			pending = append(pending, w)
		} else {
			fired = append(fired, w)
		}
	}
	c.waiters = pending
	c.mu.Unlock()

	sort.Slice(fired, func(i, j int) bool {
		return fired[i].deadline.Before(fired[j].deadline)
	})
	for _, w := range fired {
		w.channel <- target
	}
}

// WaitForTimers blocks until at least n waiters are pending. It closes
// the race between a goroutine registering its After and the test
// advancing the clock.
//
//	go func() { <-fakeClock.After(5 * time.Second) }()
//	fakeClock.WaitForTimers(1)
//	fakeClock.Advance(5 * time.Second)
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.waiters) < n {
		c.registered.Wait()
	}
}

// PendingCount returns the number of waiters registered and not yet
// fired.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
