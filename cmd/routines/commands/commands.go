// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the routines CLI command tree. Each command
// assembles only the backends it needs from configuration: run builds
// the full harness, list touches nothing but the registry, and info
// reads the session store and run journal best-effort.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/routines/cmd/routines/cli"
	"github.com/bureau-foundation/routines/lib/version"
)

// Root builds and returns the complete routines command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "routines",
		Description: `Routines: an execution harness for recurring agent tasks.

Each routine owns a prompt, a session strategy, and an output handler.
Running one resolves its session from the store, invokes the engine,
commits the new session state, and hands the result text back to the
routine. Scheduling lives outside this binary; point cron or a systemd
timer at "routines run".`,
		Subcommands: []*cli.Command{
			runCommand(),
			listCommand(),
			infoCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("routines %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Run the nightly letter",
				Command:     "routines run letter",
			},
			{
				Description: "See every registered routine",
				Command:     "routines list",
			},
			{
				Description: "Inspect a routine's session and history",
				Command:     "routines info night-main",
			},
			{
				Description: "Run against an explicit config file",
				Command:     "routines run digest --config /etc/routines.yaml",
			},
		},
	}
}
