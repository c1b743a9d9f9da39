// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report assembles the outcome of one analysis into a [Report]
// and writes it in every supported format.
//
// [Build] gathers the run metadata (run id, generation time, analyzer
// build, purpose-management method, per-file seed and digest), the
// overall event counts, and the computed metrics. The writers then
// render the same Report as:
//
//   - [WriteText] -- the human-readable report, sections in a fixed
//     order (run, counts, latency, throughput, PBAC correctness,
//     operation coverage, anomalies, broker resources)
//   - [WriteKeyValue] -- a section,key,value CSV for spreadsheets
//   - [WriteJSON] and [WriteCBOR] -- the full structure
//   - [RenderSummary] -- a short styled summary for a terminal
//
// [WriteFile] creates the destination exclusively: an existing file is
// never overwritten, and the error wraps [os.ErrExist].
package report
