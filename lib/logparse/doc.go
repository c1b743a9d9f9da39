// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logparse reads benchmark event logs into typed records.
//
// Each benchmark node writes one log. A line is a label followed by a
// fixed number of fields, all joined by a two-character separator
// ("@@" by default):
//
//	CONNECT@@1712.031@@node-1@@client-4
//	PUBLISH@@1712.530@@node-1@@client-4@@data/x@@billing@@DATA@@17
//
// The label vocabulary is closed. An unknown label, a wrong field count
// for a known label, a non-numeric timestamp or identifier, a repeated
// seed in one file, or a purpose-management method that disagrees with
// one already seen (in the same file or another) is fatal: the logs are
// not a self-consistent record of one run and every metric computed
// from them would be meaningless. Fatal errors are returned as *[Error]
// with a [Cause].
//
// [Load] is the entry point for an analysis run: it discovers log files
// under a directory (recursively, by extension), parses them in
// parallel, fingerprints each file, and merges the results into a
// [Collection] whose events are in a single deterministic order.
// Logs compressed with zstd (".zst") or lz4 (".lz4") are decompressed
// transparently.
package logparse
