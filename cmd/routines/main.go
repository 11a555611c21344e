// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/routines/cmd/routines/cli"
	"github.com/bureau-foundation/routines/cmd/routines/commands"
	"github.com/bureau-foundation/routines/lib/process"
)

func main() {
	if err := run(); err != nil {
		// Commands whose failures are already logged (like run)
		// return an ExitError with the desired exit code. Don't
		// print a redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Commands that load configuration replace this logger with one
	// honoring the configured level.
	logger := cli.NewCommandLogger(cli.ParseLevel(os.Getenv("ROUTINES_LOG_LEVEL")))
	return commands.Root().Execute(ctx, os.Args[1:], logger)
}
