// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node in the CLI tree: a group that dispatches to
// Subcommands, or a leaf with a Run function.
type Command struct {
	// Name as typed by the user ("run", "info").
	Name string

	// Summary is the one-liner shown in the parent's command listing.
	Summary string

	// Description is the long-form text at the top of this command's
	// help output. Help falls back to Summary when empty.
	Description string

	// Usage overrides the synthesized usage line, for commands with
	// positional arguments ("routines run <name> [flags]").
	Usage string

	// Examples render near the bottom of the help output.
	Examples []Example

	// Flags builds the command's flag set. Called fresh for each
	// parse; nil means the command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands are dispatched by the first positional argument.
	// A group without a Run function requires one.
	Subcommands []*Command

	// Run executes the leaf with the positional arguments left after
	// flag parsing.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error

	// parent is filled in during dispatch so errors and help can name
	// the full command path.
	parent *Command
}

// Example is one usage example in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute walks the tree along args, parses flags at the selected
// command, and invokes its Run function. Help requests short-circuit
// at any level.
func (c *Command) Execute(ctx context.Context, args []string, logger *slog.Logger) error {
	if len(args) > 0 && helpRequested(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}

	if len(c.Subcommands) > 0 {
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			child := c.child(args[0])
			if child == nil {
				return c.unknownCommand(args[0])
			}
			child.parent = c
			return child.Execute(ctx, args[1:], logger)
		}
		if c.Run == nil {
			c.PrintHelp(os.Stderr)
			if len(args) > 0 {
				return fmt.Errorf("subcommand required (got flag %q)", args[0])
			}
			return fmt.Errorf("subcommand required")
		}
	}

	rest, err := c.parseFlags(args)
	if err != nil {
		return err
	}
	if c.Run == nil {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("no action defined for %q", c.path())
	}
	return c.Run(ctx, rest, logger)
}

// child returns the subcommand named name, or nil.
func (c *Command) child(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// unknownCommand builds the error for a positional argument that
// matches no subcommand, with a did-you-mean hint when something is
// close.
func (c *Command) unknownCommand(name string) error {
	names := make([]string, len(c.Subcommands))
	for i, sub := range c.Subcommands {
		names[i] = sub.Name
	}
	if match := closest(name, names); match != "" {
		return fmt.Errorf("unknown command %q (did you mean %q?)\n\n%s", name, match, c.helpHint())
	}
	return fmt.Errorf("unknown command %q\n\n%s", name, c.helpHint())
}

// parseFlags parses args against the command's flag set and returns
// the remaining positional arguments.
func (c *Command) parseFlags(args []string) ([]string, error) {
	if c.Flags == nil {
		return args, nil
	}

	flagSet := c.Flags()
	// The set must print nothing itself; parse errors are formatted
	// here, with suggestions.
	flagSet.SetOutput(io.Discard)
	err := flagSet.Parse(args)
	if err == nil {
		return flagSet.Args(), nil
	}

	if strings.Contains(err.Error(), "unknown flag") {
		// The failed parse may have consumed state, so suggestion
		// lookup gets a fresh set.
		if match := closestFlag(args, c.Flags()); match != "" {
			return nil, fmt.Errorf("%s (did you mean %s?)\n\n%s", err, match, c.helpHint())
		}
	}
	return nil, fmt.Errorf("%s\n\n%s", err, c.helpHint())
}

// helpHint is the trailing pointer at --help carried by error
// messages.
func (c *Command) helpHint() string {
	return fmt.Sprintf("Run '%s --help' for usage.", c.path())
}

// PrintHelp writes the command's help text to w.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	fmt.Fprintf(w, "Usage:\n  %s\n", c.usageLine())

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		listing := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(listing, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		listing.Flush()
	}

	c.printFlagSection(w)
	c.printExampleSection(w)

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.path())
	}
}

// usageLine returns Usage, or synthesizes one from the command path.
func (c *Command) usageLine() string {
	if c.Usage != "" {
		return c.Usage
	}
	if len(c.Subcommands) > 0 {
		return c.path() + " <command> [flags]"
	}
	return c.path() + " [flags]"
}

func (c *Command) printFlagSection(w io.Writer) {
	if c.Flags == nil {
		return
	}
	var rendered strings.Builder
	flagSet := c.Flags()
	flagSet.SetOutput(&rendered)
	flagSet.PrintDefaults()
	if rendered.Len() > 0 {
		fmt.Fprintf(w, "\nFlags:\n%s", rendered.String())
	}
}

func (c *Command) printExampleSection(w io.Writer) {
	if len(c.Examples) == 0 {
		return
	}
	fmt.Fprintf(w, "\nExamples:\n")
	for _, example := range c.Examples {
		if example.Description != "" {
			fmt.Fprintf(w, "  # %s\n", example.Description)
		}
		fmt.Fprintf(w, "  %s\n", example.Command)
		if example.Description != "" {
			fmt.Fprintln(w)
		}
	}
}

// path returns the full command name from the root ("routines run").
func (c *Command) path() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.path() + " " + c.Name
}

// helpRequested reports the common help spellings.
func helpRequested(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
