// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build identity for the routines binary.
//
// The commit, commit time, and dirty flag come from the VCS stamp the
// Go toolchain embeds into binaries built inside a repository. Only
// the release version itself needs ldflags injection; everything else
// is automatic. Unstamped binaries (go run, tests) report "unknown".
package version
