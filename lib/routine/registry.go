// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routine

import (
	"iter"
	"strings"
	"sync"
)

// Registry maps routine names to routines. Registration order is
// observation order: All and Names report routines in the order they
// were registered, so catalog listings are stable across runs.
//
// Registry is safe for concurrent use. The expected pattern is a
// burst of Register calls at startup followed by concurrent Lookup
// and All calls for the life of the process.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Routine
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Routine)}
}

// Register adds a routine under its definition's name. An empty name
// is an invalid-config error. Registering a name twice is a
// duplicate-name error and leaves the first registration live.
//
// Fork misconfiguration (ForkSession without ForkFromKey) is
// deliberately accepted here: it is a property of the run, reported
// by the session resolver, so a misconfigured routine can still be
// listed and inspected.
func (r *Registry) Register(routine Routine) error {
	definition := routine.Definition()
	if definition.Name == "" {
		return InvalidConfig("routine has empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[definition.Name]; exists {
		return DuplicateName("routine %q already registered", definition.Name)
	}
	r.byName[definition.Name] = routine
	r.order = append(r.order, definition.Name)
	return nil
}

// Lookup returns the routine registered under name. The not-found
// error message lists the registered names so that a typo in a
// routine name is diagnosable from the error alone.
func (r *Registry) Lookup(name string) (Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routine, exists := r.byName[name]
	if !exists {
		if len(r.order) == 0 {
			return nil, NotFound("unknown routine %q (registry is empty)", name)
		}
		return nil, NotFound("unknown routine %q (registered: %s)", name, strings.Join(r.order, ", "))
	}
	return routine, nil
}

// All returns a lazy sequence of the registered routines in
// registration order. The sequence is restartable: each range
// iterates a snapshot taken when All was called, so registrations
// made mid-iteration do not appear.
func (r *Registry) All() iter.Seq[Routine] {
	r.mu.RLock()
	snapshot := make([]Routine, 0, len(r.order))
	for _, name := range r.order {
		snapshot = append(snapshot, r.byName[name])
	}
	r.mu.RUnlock()

	return func(yield func(Routine) bool) {
		for _, routine := range snapshot {
			if !yield(routine) {
				return
			}
		}
	}
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered routines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
