// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/bureau-foundation/pbacbench/lib/config"
	"github.com/bureau-foundation/pbacbench/lib/report"
)

// DefaultMeasurement names the run measurement when none is configured.
// Per-client points use the same name with a "_client" suffix.
const DefaultMeasurement = "pbac_benchmark"

// Points converts a report into InfluxDB points stamped with the
// report's generation time.
func Points(exported *report.Report, measurement string) []*write.Point {
	if measurement == "" {
		measurement = DefaultMeasurement
	}
	tags := map[string]string{
		"run_id":          exported.RunID,
		"method":          exported.Method.Name,
		"broker_assisted": strconv.FormatBool(exported.Method.BrokerAssisted),
	}

	fields := map[string]any{
		"files":                  len(exported.Files),
		"clients":                exported.Counts.Clients,
		"data_publications":      exported.Counts.DataPublications,
		"operation_publications": exported.Counts.OperationPublications,
		"data_receptions":        exported.Counts.DataReceptions,
		"unjoined_receptions":    exported.Orphans,
	}
	result := exported.Metrics
	if result != nil {
		tally := result.PBAC.Aggregate
		fields["latency_mean"] = result.Latency.Mean
		fields["latency_negative"] = result.Latency.Negative
		fields["throughput_mean"] = result.Throughput.Mean
		fields["throughput_peak"] = result.Throughput.Peak
		fields["pbac_correct"] = tally.Correct
		fields["pbac_improper"] = tally.Improper
		fields["pbac_not_matched"] = tally.NotMatched
		fields["false_accept_rate"] = tally.FalseAcceptRate()
		fields["false_reject_rate"] = tally.FalseRejectRate()
		fields["coverage_mean"] = result.Coverage.MeanCoverage
		fields["completion_mean"] = result.Coverage.MeanCompletion
		fields["requests"] = len(result.Coverage.Requests)
		fields["publish_rate"] = result.Messaging.PublishRate
		fields["anomalies"] = result.Anomalies.Total()
	}

	points := []*write.Point{influxdb2.NewPoint(measurement, tags, fields, exported.Generated)}
	if result == nil {
		return points
	}

	clientMeasurement := measurement + "_client"
	clientFields := make(map[string]map[string]any)
	var order []string
	fieldsFor := func(client string) map[string]any {
		entry, ok := clientFields[client]
		if !ok {
			entry = make(map[string]any)
			clientFields[client] = entry
			order = append(order, client)
		}
		return entry
	}
	for _, client := range result.Latency.Clients {
		entry := fieldsFor(client.Client)
		entry["latency_mean"] = client.Mean()
		entry["latency_samples"] = client.Count
	}
	for _, client := range result.Throughput.Clients {
		entry := fieldsFor(client.Client)
		entry["throughput_mean"] = client.Mean
		entry["throughput_peak"] = client.Peak
	}
	for _, client := range result.PBAC.Clients {
		entry := fieldsFor(client.Client)
		entry["pbac_correct"] = client.Correct
		entry["pbac_improper"] = client.Improper
		entry["pbac_not_matched"] = client.NotMatched
	}
	for _, client := range order {
		clientTags := map[string]string{
			"run_id": exported.RunID,
			"method": exported.Method.Name,
			"client": client,
		}
		points = append(points, influxdb2.NewPoint(clientMeasurement, clientTags, clientFields[client], exported.Generated))
	}
	return points
}

// InfluxWriter writes reports to one InfluxDB bucket.
type InfluxWriter struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
}

// NewInfluxWriter returns a writer for the configured server. The
// connection is not checked until the first Write.
func NewInfluxWriter(cfg config.InfluxConfig) (*InfluxWriter, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("influx export: url is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("influx export: bucket is required")
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxWriter{
		client:      client,
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: cfg.Measurement,
	}, nil
}

// Write sends the report's points.
func (w *InfluxWriter) Write(ctx context.Context, exported *report.Report) error {
	if err := w.writeAPI.WritePoint(ctx, Points(exported, w.measurement)...); err != nil {
		return fmt.Errorf("influx export: %w", err)
	}
	return nil
}

// Close releases the client.
func (w *InfluxWriter) Close() {
	w.client.Close()
}
