// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/pbacbench/lib/report"
)

const namespace = "pbacbench"

// runLabels identify the run every series belongs to.
var runLabels = []string{"run_id", "method", "broker_assisted"}

// Registry returns a private registry holding the report's gauges.
func Registry(exported *report.Report) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	run := prometheus.Labels{
		"run_id":          exported.RunID,
		"method":          exported.Method.Name,
		"broker_assisted": strconv.FormatBool(exported.Method.BrokerAssisted),
	}

	gauge := func(name, help string, extra ...string) *prometheus.GaugeVec {
		vector := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, append(append([]string{}, runLabels...), extra...))
		registry.MustRegister(vector)
		return vector.MustCurryWith(run)
	}

	generated := gauge("run_timestamp_seconds", "Unix time the report was generated.")
	events := gauge("events", "Events read from the logs, by kind.", "kind")
	generated.WithLabelValues().Set(float64(exported.Generated.Unix()))

	counts := exported.Counts
	events.WithLabelValues("connect").Set(float64(counts.Connects))
	events.WithLabelValues("disconnect").Set(float64(counts.Disconnects))
	events.WithLabelValues("subscribe").Set(float64(counts.Subscriptions))
	events.WithLabelValues("publish_data").Set(float64(counts.DataPublications))
	events.WithLabelValues("publish_operation").Set(float64(counts.OperationPublications))
	events.WithLabelValues("receive_data").Set(float64(counts.DataReceptions))
	events.WithLabelValues("receive_operation").Set(float64(counts.OperationReceptions))

	result := exported.Metrics
	if result == nil {
		return registry
	}

	latency := gauge("latency_mean_seconds", "Mean of per-client mean publish-to-receive latency.")
	clientLatency := gauge("client_latency_mean_seconds", "Mean publish-to-receive latency per receiving client.", "client")
	throughput := gauge("throughput_mean_messages_per_second", "Mean of per-client reception throughput.")
	outcomes := gauge("pbac_outcomes", "Publication and subscriber pairs by PBAC outcome.", "outcome")
	falseAccept := gauge("pbac_false_accept_ratio", "Improper deliveries over all deliveries.")
	falseReject := gauge("pbac_false_reject_ratio", "Missed authorized deliveries over all authorized pairs.")
	coverage := gauge("coverage_mean_ratio", "Mean fraction of expected subscribers a rights request reached.")
	completion := gauge("completion_mean_ratio", "Mean fraction of expected responses a rights request received.")
	requests := gauge("requests", "Rights-operation requests evaluated.")
	anomalies := gauge("anomalies", "Local anomalies, by kind.", "kind")

	latency.WithLabelValues().Set(result.Latency.Mean)
	for _, client := range result.Latency.Clients {
		clientLatency.WithLabelValues(client.Client).Set(client.Mean())
	}
	throughput.WithLabelValues().Set(result.Throughput.Mean)

	tally := result.PBAC.Aggregate
	outcomes.WithLabelValues("correct").Set(float64(tally.Correct))
	outcomes.WithLabelValues("improper").Set(float64(tally.Improper))
	outcomes.WithLabelValues("not_matched").Set(float64(tally.NotMatched))
	falseAccept.WithLabelValues().Set(tally.FalseAcceptRate())
	falseReject.WithLabelValues().Set(tally.FalseRejectRate())

	coverage.WithLabelValues().Set(result.Coverage.MeanCoverage)
	completion.WithLabelValues().Set(result.Coverage.MeanCompletion)
	requests.WithLabelValues().Set(float64(len(result.Coverage.Requests)))

	for _, count := range result.Anomalies.Counts {
		anomalies.WithLabelValues(string(count.Kind)).Set(float64(count.Count))
	}
	return registry
}

// WritePrometheusTextfile writes the report's gauges to path in the
// text exposition format. The file is written to a temporary name and
// renamed, so a collector never reads a partial file.
func WritePrometheusTextfile(path string, exported *report.Report) error {
	if err := prometheus.WriteToTextfile(path, Registry(exported)); err != nil {
		return fmt.Errorf("writing prometheus textfile %s: %w", path, err)
	}
	return nil
}
