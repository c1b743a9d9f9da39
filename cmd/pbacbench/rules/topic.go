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
	"github.com/bureau-foundation/pbacbench/lib/config"
	"github.com/bureau-foundation/pbacbench/lib/topic"
)

// TopicCommand returns the "topic" command group.
func TopicCommand() *cli.Command {
	return &cli.Command{
		Name:    "topic",
		Summary: "Evaluate MQTT topic filters",
		Subcommands: []*cli.Command{
			matchCommand(os.Stdout),
		},
	}
}

// MatchResult is the outcome of matching one topic against a filter.
type MatchResult struct {
	Filter string `json:"filter"`
	Topic  string `json:"topic"`
	Match  bool   `json:"match"`

	// CrossLinked is set when the match comes from the system topic
	// fan-out rather than standard MQTT matching.
	CrossLinked bool `json:"cross_linked"`
}

type matchParams struct {
	cli.JSONOutput
	Config string `json:"-" flag:"config,c" desc:"configuration file for the system topic and operational prefixes (default $PBACBENCH_CONFIG)"`
}

func matchCommand(stdout io.Writer) *cli.Command {
	var params matchParams
	return &cli.Command{
		Name:    "match",
		Summary: "Check whether a filter matches a topic",
		Description: `Check whether a subscription filter matches a publication topic.

Standard MQTT wildcard rules apply. A publication on the system
operations topic also matches filters whose first level is one of the
configured operational prefixes.`,
		Usage: "pbacbench topic match <filter> <topic> [flags]",
		Examples: []cli.Example{
			{
				Description: "Single-level wildcard",
				Command:     "pbacbench topic match 'sensors/+/temp' sensors/a/temp",
			},
			{
				Description: "Operational cross-link",
				Command:     "pbacbench topic match 'ON/#' '$OSYS'",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("match", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected a filter and a topic, got %d arguments", len(args))
			}

			cfg, err := loadConfig(params.Config)
			if err != nil {
				return err
			}
			matcher := topic.NewMatcher(cfg.Topics.System, cfg.Topics.Operational)

			match, err := matcher.Matches(args[0], args[1])
			if err != nil {
				return err
			}
			result := MatchResult{
				Filter:      args[0],
				Topic:       args[1],
				Match:       match,
				CrossLinked: match && !topic.Match(args[0], args[1]),
			}

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			switch {
			case result.CrossLinked:
				fmt.Fprintf(stdout, "%s matches %s (system topic cross-link)\n", result.Filter, result.Topic)
			case result.Match:
				fmt.Fprintf(stdout, "%s matches %s\n", result.Filter, result.Topic)
			default:
				fmt.Fprintf(stdout, "%s does not match %s\n", result.Filter, result.Topic)
			}
			return nil
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
