// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/routines/cmd/routines/cli"
	"github.com/bureau-foundation/routines/lib/routine"
	"github.com/spf13/pflag"
)

// listParams holds the parameters for the list command.
type listParams struct {
	cli.JSONOutput
	Config string `flag:"config,c" desc:"config file path (defaults to ROUTINES_CONFIG)"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List registered routines",
		Description: `List every registered routine with its session strategy.

Strategies:
  stateless     runs never touch the session store
  fork          runs branch a copy of another routine's session
  self-managed  runs resume and re-commit the routine's own session`,
		Usage: "routines list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			cfg, err := loadConfig(params.Config)
			if err != nil {
				return err
			}
			registry, err := buildRegistry(cfg, nil)
			if err != nil {
				return err
			}

			rows := collectRoutines(registry)
			if done, err := params.EmitJSON(rows); done {
				return err
			}
			writeRoutineTable(os.Stdout, rows)
			return nil
		},
	}
}

// routineRow is one routine in list output. Tools serializes as null
// for the engine default set and [] for an explicitly empty set.
type routineRow struct {
	Name        string   `json:"name"`
	Strategy    string   `json:"strategy"`
	SessionKey  string   `json:"session_key,omitempty"`
	ForkFromKey string   `json:"fork_from_key,omitempty"`
	SessionTTL  string   `json:"session_ttl,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	Tools       []string `json:"allowed_tools"`
}

// collectRoutines flattens the registry into display rows in
// registration order.
func collectRoutines(registry *routine.Registry) []routineRow {
	var rows []routineRow
	for registered := range registry.All() {
		definition := registered.Definition()
		row := routineRow{
			Name:        definition.Name,
			Strategy:    definition.Strategy(),
			SessionKey:  definition.SessionKey,
			ForkFromKey: definition.ForkFromKey,
			Timezone:    definition.Timezone,
			Tools:       registered.AllowedTools(),
		}
		if definition.SessionTTL > 0 {
			row.SessionTTL = definition.SessionTTL.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// writeRoutineTable renders rows as an aligned table.
func writeRoutineTable(w io.Writer, rows []routineRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No routines registered.")
		return
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tSTRATEGY\tSESSION KEY\tTTL\tTOOLS")
	for _, row := range rows {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			row.Name,
			row.Strategy,
			orDash(row.SessionKey),
			orDash(row.SessionTTL),
			toolsDisplay(row.Tools))
	}
	writer.Flush()
}

// orDash substitutes "-" for empty table cells.
func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// toolsDisplay renders the allowed-tools column: nil means the engine
// default set, empty means no tools.
func toolsDisplay(tools []string) string {
	if tools == nil {
		return "(default)"
	}
	if len(tools) == 0 {
		return "(none)"
	}
	return strings.Join(tools, ",")
}
