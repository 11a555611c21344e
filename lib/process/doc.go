// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint error handler.
//
// Fatal is for main() alone: it reports errors that surface before or
// outside the structured logger. All other output goes through the
// logger or the CLI rendering layer.
package process
