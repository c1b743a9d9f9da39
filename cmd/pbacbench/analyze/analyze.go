// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package analyze implements "pbacbench analyze": run the analysis over
// one log directory, write the text report, and fan the result out to
// the configured exports.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/cli"
	"github.com/bureau-foundation/pbacbench/lib/analysis"
	"github.com/bureau-foundation/pbacbench/lib/clock"
	"github.com/bureau-foundation/pbacbench/lib/config"
	"github.com/bureau-foundation/pbacbench/lib/report"
	"github.com/bureau-foundation/pbacbench/lib/resultstore"
	"github.com/bureau-foundation/pbacbench/lib/telemetry"
)

// timestampLayout names reports written under the default name.
const timestampLayout = "2006-01-02_15-04-05"

type params struct {
	Outfile            string `flag:"outfile,o" desc:"text report path (default <prefix>_<UTC timestamp>.txt in the output directory)"`
	Config             string `flag:"config,c" desc:"configuration file, YAML or JSONC (default $PBACBENCH_CONFIG)"`
	Export             string `flag:"export" desc:"also write the report here; format from the extension (.json, .cbor, .csv, .txt)"`
	Database           string `flag:"db" desc:"SQLite result store to record the run in"`
	PrometheusTextfile string `flag:"prometheus-textfile" desc:"write aggregate metrics for the node_exporter textfile collector"`
	Workers            int    `flag:"workers" desc:"parallel parse and correlation workers (default GOMAXPROCS)"`
	Summary            bool   `flag:"summary" desc:"print the summary box even when stdout is not a terminal"`
}

// Command returns the "analyze" command.
func Command() *cli.Command {
	return newCommand(clock.Real(), os.Stdout)
}

func newCommand(wallClock clock.Clock, stdout io.Writer) *cli.Command {
	var p params
	return &cli.Command{
		Name:    "analyze",
		Summary: "Analyze the logs of one benchmark run",
		Description: `Analyze every benchmark log under a directory and write a text report.

Logs are found recursively by extension. Publications are joined with
receptions and with the subscriptions that should have received them,
and the report covers latency, throughput, PBAC correctness, operation
coverage, anomalies, and broker resource use.

Neither the report nor the export file is ever overwritten.`,
		Usage: "pbacbench analyze <log-directory> [flags]",
		Examples: []cli.Example{
			{
				Description: "Analyze a run with the default report name",
				Command:     "pbacbench analyze ./logs",
			},
			{
				Description: "Record the run in a result store and export JSON",
				Command:     "pbacbench analyze ./logs --outfile run7.txt --export run7.json --db results.db",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("analyze", &p)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one log directory, got %d arguments", len(args))
			}
			return run(ctx, args[0], p, wallClock, stdout, logger)
		},
	}
}

func run(ctx context.Context, directory string, p params, wallClock clock.Clock, stdout io.Writer, logger *slog.Logger) error {
	if p.Workers < 0 {
		return fmt.Errorf("--workers must not be negative, got %d", p.Workers)
	}

	cfg, err := loadConfig(p.Config)
	if err != nil {
		return cli.Exit(ExitMalformedConfig, err)
	}
	if p.Workers > 0 {
		cfg.Analysis.Workers = p.Workers
	}
	if p.Database != "" {
		cfg.Export.Database = p.Database
	}
	if p.PrometheusTextfile != "" {
		cfg.Export.PrometheusTextfile = p.PrometheusTextfile
	}

	outfile := p.Outfile
	if outfile == "" {
		name := fmt.Sprintf("%s_%s.txt", cfg.Output.Prefix, wallClock.Now().UTC().Format(timestampLayout))
		outfile = filepath.Join(cfg.Output.Directory, name)
	}

	var exportFormat report.Format
	if p.Export != "" {
		exportFormat, err = report.FormatFor(p.Export)
		if err != nil {
			return err
		}
		if filepath.Clean(p.Export) == filepath.Clean(outfile) {
			return fmt.Errorf("--export and the report are the same file %s", outfile)
		}
	}

	// Refuse before doing the work; WriteFile checks again atomically.
	for _, path := range []string{outfile, p.Export} {
		if path == "" {
			continue
		}
		exists, err := report.Exists(path)
		if err != nil {
			return cli.Exit(ExitUnexpected, err)
		}
		if exists {
			return cli.Exit(ExitOutputExists, fmt.Errorf("output file %s: %w", path, os.ErrExist))
		}
	}

	logger = logger.With("command", "analyze", "directory", directory)
	analyzed, err := analysis.Run(ctx, directory, analysis.Options{
		Config: cfg,
		Logger: logger,
		Clock:  wallClock,
	})
	if err != nil {
		return classify(err)
	}

	if err := report.WriteFile(outfile, report.FormatText, analyzed); err != nil {
		return classify(err)
	}
	logger.Info("report written", "path", outfile, "run_id", analyzed.RunID)

	if p.Export != "" {
		if err := report.WriteFile(p.Export, exportFormat, analyzed); err != nil {
			return classify(err)
		}
		logger.Info("report exported", "path", p.Export, "format", exportFormat)
	}

	if err := export(ctx, cfg, analyzed, logger); err != nil {
		return classify(err)
	}

	if p.Summary || cli.IsTerminal(stdout) {
		fmt.Fprintln(stdout, report.RenderSummary(analyzed, cli.TerminalWidth(stdout)))
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	cfg, err := config.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}
	return cfg, err
}

// export writes the optional exports named by cfg.
func export(ctx context.Context, cfg *config.Config, analyzed *report.Report, logger *slog.Logger) error {
	if path := cfg.Export.Database; path != "" {
		store, err := resultstore.Open(resultstore.Config{Path: path, Logger: logger})
		if err != nil {
			return err
		}
		saveErr := store.Save(ctx, analyzed)
		if err := store.Close(); saveErr == nil {
			saveErr = err
		}
		if saveErr != nil {
			return fmt.Errorf("recording run in %s: %w", path, saveErr)
		}
		logger.Info("run recorded", "database", path)
	}

	if path := cfg.Export.PrometheusTextfile; path != "" {
		if err := telemetry.WritePrometheusTextfile(path, analyzed); err != nil {
			return err
		}
		logger.Info("prometheus textfile written", "path", path)
	}

	if cfg.Export.Influx.Enabled() {
		writer, err := telemetry.NewInfluxWriter(cfg.Export.Influx)
		if err != nil {
			return err
		}
		defer writer.Close()
		if err := writer.Write(ctx, analyzed); err != nil {
			return err
		}
		logger.Info("influx points written", "url", cfg.Export.Influx.URL, "bucket", cfg.Export.Influx.Bucket)
	}

	return nil
}
