// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the routines
// harness.
//
// Configuration is loaded from a single file specified by either the
// ROUTINES_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search; commands that can run meaningfully without a file use
// [LoadOrDefault], which falls back to [Default] only when neither the
// flag nor the variable names one.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter:
// transcripts are compressed and the engine runs with permission
// prompts bypassed, since nobody is attending it.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Store, Engine, Journal, Catalog,
//     Logging
//   - [Default] -- returns a Config with development defaults
//   - [Load], [LoadFile], [LoadOrDefault] -- the entry points
//
// This package depends on no other packages in this repository.
package config
