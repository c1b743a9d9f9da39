// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resultstore archives analysis reports in a SQLite database so
// benchmark runs can be compared across brokers, methods, and seeds.
//
// Each [Store.Save] writes one run in a single IMMEDIATE transaction:
// a row in runs with the headline numbers and the full report as CBOR,
// plus one row per client in client_metrics, per rights request in
// requests, per anomaly kind in anomalies, and per log in input_files.
// The detail tables reference runs with ON DELETE CASCADE, so
// [Store.Delete] removes a run completely.
//
// The headline columns exist for ad-hoc SQL over many runs; the CBOR
// blob is the source of truth and [Store.Report] decodes it back into a
// [report.Report].
package resultstore
