// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] is the one place the test suite uses a real
// wall-clock timeout: a hang safety valve around channel reads from
// goroutines under test. Everything time-sensitive goes through the
// injectable clock instead.
//
// Helpers call t.Fatalf on failure rather than returning errors; test
// setup failures are not recoverable.
package testutil
