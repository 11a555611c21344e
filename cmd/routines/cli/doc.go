// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the routines
// binary.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function taking the invocation context and a structured logger.
// Commands are assembled into a tree in cmd/routines/commands and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and help output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// Flag binding is declarative: [FlagsFromParams] reflects over a
// params struct's flag/desc/default tags and produces the FlagSet,
// so a command's flags and the fields they fill stay in one place.
// [JSONOutput] embeds into a params struct to add the --json flag
// and conditional JSON emission.
package cli
