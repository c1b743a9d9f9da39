// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/pbacbench/lib/clock"
	"github.com/bureau-foundation/pbacbench/lib/correlate"
	"github.com/bureau-foundation/pbacbench/lib/digest"
	"github.com/bureau-foundation/pbacbench/lib/logparse"
	"github.com/bureau-foundation/pbacbench/lib/metrics"
	"github.com/bureau-foundation/pbacbench/lib/timeline"
	"github.com/bureau-foundation/pbacbench/lib/version"
)

// FileInfo describes one input log.
type FileInfo struct {
	Path string `json:"path"`

	// Seed is nil for logs that never declared one.
	Seed *int64 `json:"seed,omitempty"`

	Lines  int         `json:"lines"`
	Events int         `json:"events"`
	Digest digest.Hash `json:"digest"`
}

// Report is the complete outcome of one analysis.
type Report struct {
	RunID     string        `json:"run_id"`
	Generated time.Time     `json:"generated"`
	Build     version.Build `json:"build"`

	// Directory is the log directory that was analyzed.
	Directory string `json:"directory"`

	// Method is the declared purpose-management method. Method.Name is
	// empty when no log declared one.
	Method metrics.Method `json:"method"`

	Files  []FileInfo      `json:"files"`
	Counts timeline.Counts `json:"counts"`

	// Orphans counts receptions that joined no publication.
	Orphans int `json:"orphans"`

	Metrics *metrics.Result `json:"metrics"`
}

// Input is everything Build needs.
type Input struct {
	Directory   string
	Collection  *logparse.Collection
	Index       *timeline.Index
	Correlation *correlate.Result
	Metrics     *metrics.Result

	// Clock stamps the report. Defaults to clock.Real().
	Clock clock.Clock

	// RunID defaults to a random UUID.
	RunID string
}

// Build assembles a Report.
func Build(input Input) *Report {
	if input.Clock == nil {
		input.Clock = clock.Real()
	}
	if input.RunID == "" {
		input.RunID = uuid.NewString()
	}

	report := &Report{
		RunID:     input.RunID,
		Generated: input.Clock.Now().UTC(),
		Build:     version.Current(),
		Directory: input.Directory,
		Metrics:   input.Metrics,
	}
	if input.Metrics != nil {
		report.Method = input.Metrics.Coverage.Method
	}
	if input.Collection != nil {
		if report.Method.Name == "" {
			report.Method.Name = input.Collection.Method
		}
		for _, file := range input.Collection.Files {
			info := FileInfo{
				Path:   file.Path,
				Lines:  file.Lines,
				Events: len(file.Events),
				Digest: file.Digest,
			}
			if file.HasSeed {
				seed := file.Seed
				info.Seed = &seed
			}
			report.Files = append(report.Files, info)
		}
	}
	if input.Index != nil {
		report.Counts = input.Index.Counts()
	}
	if input.Correlation != nil {
		report.Orphans = len(input.Correlation.Orphans)
	}
	return report
}

// MethodLabel describes the method for display.
func (r *Report) MethodLabel() string {
	if r.Method.Name == "" {
		return "(undeclared, treated as direct)"
	}
	if r.Method.BrokerAssisted {
		return r.Method.Name + " (broker-assisted)"
	}
	return r.Method.Name + " (direct)"
}
