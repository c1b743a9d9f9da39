// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/cli"
	"github.com/bureau-foundation/pbacbench/lib/purpose"
)

// PurposeCommand returns the "purpose" command group.
func PurposeCommand() *cli.Command {
	return &cli.Command{
		Name:    "purpose",
		Summary: "Evaluate purpose filters",
		Description: `Evaluate purpose filters the way the analyzer does.

A purpose filter is a "/"-separated path whose segments may be written
as "{a,b}" alternations. Matching is exact membership in the expanded
set; "*" is a literal segment.`,
		Subcommands: []*cli.Command{
			expandCommand(os.Stdout),
			describesCommand(os.Stdout),
		},
	}
}

// Expansion is the result of expanding one purpose filter.
type Expansion struct {
	Filter   string   `json:"filter"`
	Purposes []string `json:"purposes"`
}

type expandParams struct {
	cli.JSONOutput
	Limit int `flag:"limit" desc:"refuse filters describing more purposes than this (0 for no limit)" default:"4096"`
}

func expandCommand(stdout io.Writer) *cli.Command {
	var params expandParams
	return &cli.Command{
		Name:    "expand",
		Summary: "List every purpose a filter describes",
		Usage:   "pbacbench purpose expand <filter>... [flags]",
		Examples: []cli.Example{
			{
				Description: "Expand an alternation",
				Command:     "pbacbench purpose expand 'billing/{invoice,refund}'",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("expand", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one purpose filter")
			}
			if params.Limit < 0 {
				return fmt.Errorf("--limit must not be negative, got %d", params.Limit)
			}
			expansions := make([]Expansion, 0, len(args))
			for _, raw := range args {
				filter, err := purpose.Parse(raw)
				if err != nil {
					return err
				}
				if size := filter.Size(); params.Limit > 0 && size > params.Limit {
					return fmt.Errorf("filter %q describes %d purposes, more than --limit %d", raw, size, params.Limit)
				}
				expansions = append(expansions, Expansion{Filter: raw, Purposes: filter.Expand()})
			}

			if done, err := params.EmitJSON(stdout, expansions); done {
				return err
			}
			for _, expansion := range expansions {
				if len(expansions) > 1 {
					fmt.Fprintf(stdout, "%s:\n", expansion.Filter)
				}
				for _, described := range expansion.Purposes {
					fmt.Fprintln(stdout, described)
				}
			}
			return nil
		},
	}
}

// Description is the result of checking one purpose against a filter.
type Description struct {
	Filter    string `json:"filter"`
	Purpose   string `json:"purpose"`
	Describes bool   `json:"describes"`
}

type describesParams struct {
	cli.JSONOutput
}

func describesCommand(stdout io.Writer) *cli.Command {
	var params describesParams
	return &cli.Command{
		Name:    "describes",
		Summary: "Check whether a filter describes a purpose",
		Usage:   "pbacbench purpose describes <filter> <purpose> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("describes", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected a filter and a purpose, got %d arguments", len(args))
			}
			describes, err := purpose.Describes(args[0], args[1])
			if err != nil {
				return err
			}
			result := Description{Filter: args[0], Purpose: args[1], Describes: describes}

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			if describes {
				fmt.Fprintf(stdout, "%s describes %s\n", result.Filter, result.Purpose)
			} else {
				fmt.Fprintf(stdout, "%s does not describe %s\n", result.Filter, result.Purpose)
			}
			return nil
		},
	}
}
