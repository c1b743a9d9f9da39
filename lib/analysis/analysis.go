// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package analysis runs the full analysis pipeline over one log
// directory: parse every log, build the temporal index, correlate
// publications with receptions and subscriptions, compute the metrics,
// and assemble the report.
//
// Errors from each stage are returned wrapped, so callers can still
// match the typed errors of logparse and timeline with errors.Is and
// errors.As.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/pbacbench/lib/clock"
	"github.com/bureau-foundation/pbacbench/lib/config"
	"github.com/bureau-foundation/pbacbench/lib/correlate"
	"github.com/bureau-foundation/pbacbench/lib/logparse"
	"github.com/bureau-foundation/pbacbench/lib/metrics"
	"github.com/bureau-foundation/pbacbench/lib/purpose"
	"github.com/bureau-foundation/pbacbench/lib/report"
	"github.com/bureau-foundation/pbacbench/lib/timeline"
	"github.com/bureau-foundation/pbacbench/lib/topic"
)

// Options configures Run.
type Options struct {
	// Config supplies every analysis setting. Defaults to
	// config.Default().
	Config *config.Config

	// Logger receives progress messages. Defaults to a discard logger.
	Logger *slog.Logger

	// Clock stamps the report and times the stages. Defaults to
	// clock.Real().
	Clock clock.Clock

	// RunID overrides the report's random run id.
	RunID string
}

// Run analyzes the logs under directory.
func Run(ctx context.Context, directory string, options Options) (*report.Report, error) {
	cfg := options.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	wallClock := options.Clock
	if wallClock == nil {
		wallClock = clock.Real()
	}
	started := wallClock.Now()

	collection, err := logparse.Load(ctx, directory, logparse.Options{
		Separator:  cfg.Logs.Separator,
		Extensions: cfg.Logs.Extensions,
		Workers:    cfg.Analysis.Workers,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("loading logs: %w", err)
	}

	method := metrics.Method{
		Name:           collection.Method,
		BrokerAssisted: cfg.BrokerAssisted(collection.Method),
	}
	if method.Name == "" {
		logger.Warn("no log declares a purpose-management method, treating the run as direct")
	}

	index, err := timeline.Build(collection.Events)
	if err != nil {
		return nil, fmt.Errorf("indexing events: %w", err)
	}
	counts := index.Counts()
	logger.Info("index built",
		"clients", counts.Clients,
		"publications", counts.Publications(),
		"receptions", counts.Receptions(),
	)

	matcher := topic.NewMatcher(cfg.Topics.System, cfg.Topics.Operational)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	correlation, err := correlate.Correlate(ctx, index, correlate.Options{
		Matcher: matcher,
		Workers: cfg.Analysis.Workers,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("correlating: %w", err)
	}
	logger.Info("correlation complete",
		"correlations", len(correlation.Correlations),
		"skipped", len(correlation.Skipped),
		"orphans", len(correlation.Orphans),
	)

	result := metrics.Compute(metrics.Input{
		Index:            index,
		Correlation:      correlation,
		Method:           method,
		Matcher:          matcher,
		Purposes:         &purpose.Cache{},
		OperationPurpose: cfg.Purposes.Operation,
		ResponsePrefix:   cfg.Topics.Response,
		CPU:              collection.CPU(),
		Memory:           collection.Memory(),
		SampleLimit:      cfg.Analysis.AnomalySamples,
	})
	if total := result.Anomalies.Total(); total > 0 {
		logger.Warn("anomalies recorded", "count", total)
	}

	built := report.Build(report.Input{
		Directory:   directory,
		Collection:  collection,
		Index:       index,
		Correlation: correlation,
		Metrics:     result,
		Clock:       wallClock,
		RunID:       options.RunID,
	})
	logger.Info("analysis complete",
		"run_id", built.RunID,
		"method", method.Name,
		"duration", clock.Since(wallClock, started),
	)
	return built, nil
}
