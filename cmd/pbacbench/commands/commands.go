// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete pbacbench command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	analyzecmd "github.com/bureau-foundation/pbacbench/cmd/pbacbench/analyze"
	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/cli"
	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/rules"
	runscmd "github.com/bureau-foundation/pbacbench/cmd/pbacbench/runs"
	"github.com/bureau-foundation/pbacbench/lib/version"
)

// Root builds and returns the complete pbacbench command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "pbacbench",
		Description: `pbacbench: offline analysis of PBAC MQTT benchmark runs.

Reads the logs every benchmark node wrote during one run and reports
delivery latency, throughput, purpose-based access control correctness,
and rights-operation coverage.`,
		Subcommands: []*cli.Command{
			analyzecmd.Command(),
			runscmd.Command(),
			rules.PurposeCommand(),
			rules.TopicCommand(),
			versionCommand(os.Stdout),
		},
		Examples: []cli.Example{
			{
				Description: "Analyze one benchmark run",
				Command:     "pbacbench analyze ./logs",
			},
			{
				Description: "Analyze and record the run for later comparison",
				Command:     "pbacbench analyze ./logs --db results.db --export run.json",
			},
			{
				Description: "Check why a subscription matched",
				Command:     "pbacbench topic match 'ON/#' '$OSYS'",
			},
			{
				Description: "List the purposes a filter grants",
				Command:     "pbacbench purpose expand '{billing,ads}/{auto,profiling}'",
			},
		},
	}
}

type versionParams struct {
	cli.JSONOutput
}

func versionCommand(stdout io.Writer) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(context.Context, []string, *slog.Logger) error {
			if done, err := params.EmitJSON(stdout, version.Current()); done {
				return err
			}
			fmt.Fprintf(stdout, "pbacbench %s\n", version.Full())
			return nil
		},
	}
}
