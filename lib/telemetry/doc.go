// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry exports a report's aggregate metrics to the
// monitoring systems a benchmark deployment already runs.
//
// [WritePrometheusTextfile] writes gauges in the node_exporter textfile
// collector format. The benchmark monitors its broker host with
// node_exporter, so dropping the file into the collector directory
// puts analysis results next to the broker's CPU and memory series.
// Each export uses a private registry; nothing is registered globally.
//
// [Points] converts a report into InfluxDB points (one run point plus
// one point per client), and [InfluxWriter] writes them with the
// blocking write API.
package telemetry
