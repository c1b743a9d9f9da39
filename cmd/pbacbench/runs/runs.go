// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package runs implements "pbacbench runs": list, show, and delete the
// runs recorded in a result store by "pbacbench analyze --db".
package runs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/cli"
	"github.com/bureau-foundation/pbacbench/lib/config"
	"github.com/bureau-foundation/pbacbench/lib/report"
	"github.com/bureau-foundation/pbacbench/lib/resultstore"
)

// storeParams selects the result store. An empty Database falls back
// to export.database from the configuration.
type storeParams struct {
	Database string `json:"-" flag:"db" desc:"SQLite result store (default export.database from the configuration)"`
	Config   string `json:"-" flag:"config,c" desc:"configuration file (default $PBACBENCH_CONFIG)"`
}

// open opens the selected store. It refuses to create a new file.
func (p storeParams) open(logger *slog.Logger) (*resultstore.Store, error) {
	path := p.Database
	if path == "" {
		var cfg *config.Config
		var err error
		if p.Config != "" {
			cfg, err = config.LoadFile(p.Config)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, err
		}
		path = cfg.Export.Database
	}
	if path == "" {
		return nil, fmt.Errorf("no result store: pass --db or set export.database")
	}
	exists, err := report.Exists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("result store %s: %w", path, os.ErrNotExist)
	}
	return resultstore.Open(resultstore.Config{Path: path, Logger: logger})
}

// Command returns the "runs" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "runs",
		Summary: "Inspect runs recorded in a result store",
		Subcommands: []*cli.Command{
			listCommand(os.Stdout),
			showCommand(os.Stdout),
			deleteCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List recorded runs",
				Command:     "pbacbench runs list --db results.db",
			},
			{
				Description: "Print the report of one run",
				Command:     "pbacbench runs show 3f0c9a52-... --db results.db",
			},
		},
	}
}

// Entry is one listed run.
type Entry struct {
	RunID           string    `json:"run_id"`
	Generated       time.Time `json:"generated"`
	Directory       string    `json:"directory"`
	Method          string    `json:"method"`
	BrokerAssisted  bool      `json:"broker_assisted"`
	Files           int       `json:"files"`
	Clients         int       `json:"clients"`
	MeanLatency     float64   `json:"mean_latency_seconds"`
	FalseAcceptRate float64   `json:"false_accept_rate"`
	FalseRejectRate float64   `json:"false_reject_rate"`
	MeanCoverage    float64   `json:"mean_coverage"`
	Anomalies       int       `json:"anomalies"`
}

type listParams struct {
	cli.JSONOutput
	storeParams
}

func listCommand(stdout io.Writer) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List recorded runs, oldest first",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			store, err := params.open(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.Runs(ctx)
			if err != nil {
				return err
			}
			entries := make([]Entry, 0, len(summaries))
			for _, summary := range summaries {
				entries = append(entries, Entry{
					RunID:           summary.RunID,
					Generated:       summary.Generated,
					Directory:       summary.Directory,
					Method:          summary.Method.Name,
					BrokerAssisted:  summary.Method.BrokerAssisted,
					Files:           summary.Files,
					Clients:         summary.Clients,
					MeanLatency:     summary.MeanLatency,
					FalseAcceptRate: summary.FalseAcceptRate,
					FalseRejectRate: summary.FalseRejectRate,
					MeanCoverage:    summary.MeanCoverage,
					Anomalies:       summary.Anomalies,
				})
			}

			if done, err := params.EmitJSON(stdout, entries); done {
				return err
			}
			writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(writer, "RUN\tGENERATED\tMETHOD\tCLIENTS\tLATENCY\tFAR\tFRR\tCOVERAGE\tANOMALIES")
			for _, entry := range entries {
				method := entry.Method
				if method == "" {
					method = "-"
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%.3f ms\t%.2f%%\t%.2f%%\t%.2f%%\t%d\n",
					entry.RunID,
					entry.Generated.Format(time.RFC3339),
					method,
					entry.Clients,
					entry.MeanLatency*1000,
					entry.FalseAcceptRate*100,
					entry.FalseRejectRate*100,
					entry.MeanCoverage*100,
					entry.Anomalies,
				)
			}
			return writer.Flush()
		},
	}
}

type showParams struct {
	storeParams
	Format string `json:"-" flag:"format" desc:"output format: text, csv, json, or cbor" default:"text"`
}

func showCommand(stdout io.Writer) *cli.Command {
	var params showParams
	return &cli.Command{
		Name:    "show",
		Summary: "Print the full report of a recorded run",
		Usage:   "pbacbench runs show <run-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one run id, got %d arguments", len(args))
			}
			format, err := parseFormat(params.Format)
			if err != nil {
				return err
			}
			store, err := params.open(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			stored, err := store.Report(ctx, args[0])
			if err != nil {
				return err
			}
			return report.Write(stdout, format, stored)
		},
	}
}

func parseFormat(name string) (report.Format, error) {
	for _, format := range []report.Format{report.FormatText, report.FormatKeyValue, report.FormatJSON, report.FormatCBOR} {
		if format.String() == name {
			return format, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (want text, csv, json, or cbor)", name)
}

type deleteParams struct {
	storeParams
}

func deleteCommand() *cli.Command {
	var params deleteParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Remove a recorded run",
		Usage:   "pbacbench runs delete <run-id>... [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("delete", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one run id")
			}
			store, err := params.open(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			var errs []error
			for _, runID := range args {
				if err := store.Delete(ctx, runID); err != nil {
					errs = append(errs, err)
					continue
				}
				logger.Info("run deleted", "run_id", runID)
			}
			return errors.Join(errs...)
		},
	}
}
