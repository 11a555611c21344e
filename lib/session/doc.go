// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session provides the session store client and the resolver
// that turns a routine definition into a concrete session plan.
//
// # Store
//
// [Store] is a byte-valued key-value store with per-entry TTL. The
// production implementation ([NewRedisStore]) speaks Redis; tests and
// single-process deployments use [MemoryStore], whose TTL expiry runs
// on the injectable clock. TTL expiry is indistinguishable from
// absence: an expired key reads as [ErrNotFound], never as an error,
// so a lapsed session starts fresh instead of failing the run.
//
// Session state is CBOR-encoded [State] values. [GetState] and
// [PutState] wrap the byte-level store with the module's deterministic
// codec so that every writer produces identical bytes for identical
// state.
//
// # Resolver
//
// [Resolver.Resolve] maps a [routine.Definition] to a [Resolution]:
// which resume token the engine continues from, whether the run is a
// fresh session, and which key the run commits to. The decision order
// is fixed:
//
//  1. No session key: stateless. The store is not touched at all.
//  2. Fork without a source key: invalid config, before any store
//     access.
//  3. Fork: read the source key; the routine's own key is the
//     commit target. A missing source is a fresh start, not an error.
//  4. Self-managed: read and commit the routine's own key.
//
// Store reads retry transport failures a bounded number of times with
// exponential backoff on the injected clock, then give up with a
// store-unavailable error. A miss is an answer, not a failure, and is
// never retried.
package session
