// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteKeyValue writes the report as a three-column CSV with a
// section,key,value header. Per-client and per-request rows use keys of
// the form "<client>/<metric>".
func WriteKeyValue(w io.Writer, report *Report) error {
	rows := &keyValueRows{writer: csv.NewWriter(w)}
	rows.add("section", "key", "value")

	rows.add(SectionRun, "run_id", report.RunID)
	rows.add(SectionRun, "generated", report.Generated.Format(time.RFC3339))
	rows.add(SectionRun, "version", report.Build.Version)
	rows.add(SectionRun, "directory", report.Directory)
	rows.add(SectionRun, "method", report.Method.Name)
	rows.add(SectionRun, "broker_assisted", strconv.FormatBool(report.Method.BrokerAssisted))
	for _, file := range report.Files {
		if file.Seed != nil {
			rows.add(SectionRun, file.Path+"/seed", strconv.FormatInt(*file.Seed, 10))
		}
		rows.add(SectionRun, file.Path+"/digest", file.Digest.String())
	}

	counts := report.Counts
	rows.integer(SectionCounts, "clients", counts.Clients)
	rows.integer(SectionCounts, "connects", counts.Connects)
	rows.integer(SectionCounts, "disconnects", counts.Disconnects)
	rows.integer(SectionCounts, "subscriptions", counts.Subscriptions)
	rows.integer(SectionCounts, "data_publications", counts.DataPublications)
	rows.integer(SectionCounts, "operation_publications", counts.OperationPublications)
	rows.integer(SectionCounts, "data_receptions", counts.DataReceptions)
	rows.integer(SectionCounts, "operation_receptions", counts.OperationReceptions)
	rows.integer(SectionCounts, "unjoined_receptions", report.Orphans)

	if result := report.Metrics; result != nil {
		rows.float(SectionCounts, "publish_rate", result.Messaging.PublishRate)
		rows.float(SectionCounts, "mean_header_bytes", result.Messaging.MeanHeaderBytes)

		latency := result.Latency
		rows.float(SectionLatency, "mean_s", latency.Mean)
		rows.integer(SectionLatency, "samples", latency.Pooled.Count)
		rows.float(SectionLatency, "min_s", latency.Pooled.Min)
		rows.float(SectionLatency, "max_s", latency.Pooled.Max)
		rows.float(SectionLatency, "stddev_s", latency.Pooled.StdDev())
		rows.integer(SectionLatency, "negative", latency.Negative)
		for _, client := range latency.Clients {
			rows.float(SectionLatency, client.Client+"/mean_s", client.Mean())
			rows.integer(SectionLatency, client.Client+"/samples", client.Count)
		}

		throughput := result.Throughput
		rows.float(SectionThroughput, "mean_msgs_per_s", throughput.Mean)
		rows.integer(SectionThroughput, "peak", throughput.Peak)
		for _, client := range throughput.Clients {
			rows.float(SectionThroughput, client.Client+"/mean_msgs_per_s", client.Mean)
			rows.integer(SectionThroughput, client.Client+"/peak", client.Peak)
		}

		pbac := result.PBAC
		rows.integer(SectionPBAC, "publications", pbac.Publications)
		rows.integer(SectionPBAC, "skipped", pbac.Skipped)
		rows.integer(SectionPBAC, "correct", pbac.Aggregate.Correct)
		rows.integer(SectionPBAC, "improper", pbac.Aggregate.Improper)
		rows.integer(SectionPBAC, "not_matched", pbac.Aggregate.NotMatched)
		rows.integer(SectionPBAC, "duplicates", pbac.Aggregate.Duplicates)
		rows.float(SectionPBAC, "false_accept_rate", pbac.Aggregate.FalseAcceptRate())
		rows.float(SectionPBAC, "false_reject_rate", pbac.Aggregate.FalseRejectRate())
		for _, client := range pbac.Clients {
			rows.integer(SectionPBAC, client.Client+"/correct", client.Correct)
			rows.integer(SectionPBAC, client.Client+"/improper", client.Improper)
			rows.integer(SectionPBAC, client.Client+"/not_matched", client.NotMatched)
		}

		coverage := result.Coverage
		rows.integer(SectionCoverage, "requests", len(coverage.Requests))
		rows.float(SectionCoverage, "mean_coverage", coverage.MeanCoverage)
		rows.float(SectionCoverage, "mean_completion", coverage.MeanCompletion)
		for _, operation := range coverage.ByOperation {
			prefix := operation.OpType + "/" + string(operation.Category)
			rows.integer(SectionCoverage, prefix+"/requests", operation.Requests)
			rows.integer(SectionCoverage, prefix+"/covered", operation.Covered)
			rows.integer(SectionCoverage, prefix+"/completed", operation.Completed)
		}

		for _, count := range result.Anomalies.Counts {
			rows.integer(SectionAnomalies, string(count.Kind), count.Count)
		}

		broker := result.Broker
		rows.float(SectionBroker, "cpu_min", broker.CPU.Min)
		rows.float(SectionBroker, "cpu_max", broker.CPU.Max)
		rows.float(SectionBroker, "cpu_avg", broker.CPU.Avg)
		rows.float(SectionBroker, "cpu_variance", broker.CPU.Variance)
		rows.float(SectionBroker, "memory_min", broker.Memory.Min)
		rows.float(SectionBroker, "memory_max", broker.Memory.Max)
		rows.float(SectionBroker, "memory_avg", broker.Memory.Avg)
		rows.float(SectionBroker, "memory_variance", broker.Memory.Variance)
	}

	rows.writer.Flush()
	if rows.err != nil {
		return rows.err
	}
	return rows.writer.Error()
}

// keyValueRows keeps the first write error so callers can add rows
// unconditionally.
type keyValueRows struct {
	writer *csv.Writer
	err    error
}

func (r *keyValueRows) add(section, key, value string) {
	if r.err != nil {
		return
	}
	r.err = r.writer.Write([]string{section, key, value})
}

func (r *keyValueRows) integer(section, key string, value int) {
	r.add(section, key, strconv.Itoa(value))
}

func (r *keyValueRows) float(section, key string, value float64) {
	r.add(section, key, strconv.FormatFloat(value, 'f', 6, 64))
}
