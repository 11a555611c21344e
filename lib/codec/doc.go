// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the one CBOR configuration every stored value
// goes through.
//
// Two formats, one boundary: JSON faces outward (engine transcript
// capture, CLI --json output), CBOR faces the store (session entries,
// invocation records). Packages encode via Marshal and Unmarshal here
// rather than configuring fxamacker/cbor themselves, so the options
// cannot drift between writers.
//
// Encoding is Core Deterministic (RFC 8949 §4.2). Map keys sort
// bytewise, integers take their shortest form, lengths are definite.
// Equal values therefore encode to equal bytes.
//
// # Struct Tag Rules
//
// A type's tags say which formats it participates in:
//
//   - `cbor` tags: store-only. The type never renders as JSON.
//   - `json` tags: the type serves both formats. fxamacker/cbor falls
//     back to json tags when no cbor tag is present, so one tag set
//     names fields and controls omitempty for both encodings.
//
// A field never carries both tags at once; the tag itself is the
// statement of which surfaces the type crosses.
package codec
