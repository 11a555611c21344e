// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package routine defines the routine contract and the registry that
// names resolve through.
//
// A routine is a named, self-contained agent task: it declares its
// session strategy through a [Definition], renders its prompt in
// BuildPrompt, and consumes the engine's result in HandleOutput. The
// harness owns everything between those two calls: session
// resolution, engine invocation, session commit.
//
// # Session strategies
//
// The Definition fields select one of three strategies:
//
//   - SessionKey == "": stateless. Every run starts a fresh engine
//     session and nothing is read from or written to the session
//     store.
//   - ForkSession == true: fork. The run resumes a copy of the
//     session stored under ForkFromKey and commits the copy's state
//     under the routine's own SessionKey. The source entry is never
//     written.
//   - otherwise: self-managed. The run resumes and commits its own
//     SessionKey, accumulating conversation context across runs until
//     the TTL lapses.
//
// # Registry
//
// A [Registry] maps names to routines. Registration order is
// observation order: All and Names report routines in the order they
// were registered. Fork misconfiguration (ForkSession without
// ForkFromKey) is deliberately not checked at registration. It is a
// property of the run, surfaced by the session resolver so that the
// registry can still list and describe the routine.
//
// # Errors
//
// All failures surface as [*RunError] values carrying an [ErrorKind].
// Use [IsKind] or [KindOf] to branch on the kind without parsing
// message text.
package routine
