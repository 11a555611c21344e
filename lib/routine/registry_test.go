// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routine

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// stubRoutine is a minimal Routine for registry tests. Callbacks are
// optional; nil callbacks succeed with zero values.
type stubRoutine struct {
	definition Definition
	build      func(ctx context.Context, run RunContext) (string, error)
	handle     func(ctx context.Context, run RunContext, result string) error
	tools      []string
}

func (s *stubRoutine) Definition() Definition { return s.definition }

func (s *stubRoutine) BuildPrompt(ctx context.Context, run RunContext) (string, error) {
	if s.build == nil {
		return "prompt for " + s.definition.Name, nil
	}
	return s.build(ctx, run)
}

func (s *stubRoutine) HandleOutput(ctx context.Context, run RunContext, result string) error {
	if s.handle == nil {
		return nil
	}
	return s.handle(ctx, run, result)
}

func (s *stubRoutine) AllowedTools() []string { return s.tools }

// named returns a stub routine with only the name set.
func named(name string) *stubRoutine {
	return &stubRoutine{definition: Definition{Name: name}}
}

func TestRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	letter := named("letter")

	if err := registry.Register(letter); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := registry.Lookup("letter")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != Routine(letter) {
		t.Errorf("Lookup returned %v, want the registered routine", got)
	}
}

func TestRegisterEmptyName(t *testing.T) {
	registry := NewRegistry()
	err := registry.Register(named(""))
	if err == nil {
		t.Fatal("Register accepted an empty name")
	}
	if !IsKind(err, KindInvalidConfig) {
		t.Errorf("kind = %q, want %q", KindOf(err), KindInvalidConfig)
	}
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	registry := NewRegistry()
	first := named("digest")
	second := named("digest")

	if err := registry.Register(first); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	err := registry.Register(second)
	if err == nil {
		t.Fatal("second Register of the same name succeeded")
	}
	if !IsKind(err, KindDuplicateName) {
		t.Errorf("kind = %q, want %q", KindOf(err), KindDuplicateName)
	}

	got, err := registry.Lookup("digest")
	if err != nil {
		t.Fatalf("Lookup after duplicate: %v", err)
	}
	if got != Routine(first) {
		t.Error("duplicate registration displaced the first routine")
	}
	if registry.Len() != 1 {
		t.Errorf("Len = %d, want 1", registry.Len())
	}
}

func TestLookupUnknownListsRegistered(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"letter", "digest"} {
		if err := registry.Register(named(name)); err != nil {
			t.Fatalf("Register %q: %v", name, err)
		}
	}

	_, err := registry.Lookup("letters")
	if err == nil {
		t.Fatal("Lookup of unknown name succeeded")
	}
	if !IsKind(err, KindNotFound) {
		t.Errorf("kind = %q, want %q", KindOf(err), KindNotFound)
	}
	message := err.Error()
	if !strings.Contains(message, "letter") || !strings.Contains(message, "digest") {
		t.Errorf("error %q does not list the registered names", message)
	}
}

func TestLookupEmptyRegistry(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Lookup("anything")
	if !IsKind(err, KindNotFound) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindNotFound)
	}
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	// Registration order is deliberately not alphabetical.
	names := []string{"night-main", "letter", "daily-digest", "night-lead"}
	for _, name := range names {
		if err := registry.Register(named(name)); err != nil {
			t.Fatalf("Register %q: %v", name, err)
		}
	}

	var got []string
	for r := range registry.All() {
		got = append(got, r.Definition().Name)
	}

	if len(got) != len(names) {
		t.Fatalf("All yielded %d routines, want %d", len(got), len(names))
	}
	for i, name := range names {
		if got[i] != name {
			t.Errorf("position %d: got %q, want %q", i, got[i], name)
		}
	}

	gotNames := registry.Names()
	for i, name := range names {
		if gotNames[i] != name {
			t.Errorf("Names position %d: got %q, want %q", i, gotNames[i], name)
		}
	}
}

func TestAllIsRestartable(t *testing.T) {
	registry := NewRegistry()
	for i := range 3 {
		if err := registry.Register(named(fmt.Sprintf("routine-%d", i))); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	sequence := registry.All()
	for pass := range 2 {
		count := 0
		for range sequence {
			count++
		}
		if count != 3 {
			t.Errorf("pass %d: yielded %d routines, want 3", pass, count)
		}
	}
}

func TestAllStopsEarly(t *testing.T) {
	registry := NewRegistry()
	for i := range 5 {
		if err := registry.Register(named(fmt.Sprintf("routine-%d", i))); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	count := 0
	for range registry.All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("iterated %d routines after break, want 2", count)
	}
}

func TestAllSnapshotExcludesLaterRegistrations(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(named("before")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sequence := registry.All()
	if err := registry.Register(named("after")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	count := 0
	for range sequence {
		count++
	}
	if count != 1 {
		t.Errorf("snapshot yielded %d routines, want 1 (taken before second registration)", count)
	}
}

func TestNamesReturnsCopy(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(named("letter")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	names := registry.Names()
	names[0] = "mutated"

	fresh := registry.Names()
	if fresh[0] != "letter" {
		t.Errorf("mutating the returned slice changed the registry: %q", fresh[0])
	}
}
