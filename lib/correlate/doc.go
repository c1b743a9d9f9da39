// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package correlate joins every publication in a run to the receptions
// it caused and to the subscriptions that should have caused one.
//
// Two relations are computed per publication p:
//
//   - Receptions: every reception r with r.Sender == p.Client, the same
//     correlation id, the same message kind, and r.Timestamp ≥
//     p.Timestamp. Topics are not compared, so one publication fans out
//     to everything that actually received it.
//   - Eligible subscriptions: for every client c other than the
//     publisher that is online at p.Timestamp, each of c's subscription
//     intervals that contains p.Timestamp, started during c's current
//     online session, and whose topic filter matches p.Topic
//     (including the operational cross-link rule in package topic).
//     Purpose is not considered here; the PBAC metric applies it.
//
// Work is partitioned by receiving client. Each partition owns its
// output and reads only the immutable [timeline.Index]; the partitions
// are merged after every one has finished, and merged slices are sorted
// so results do not depend on scheduling.
//
// A malformed topic or topic filter met while matching does not abort
// the run. The affected publication is recorded in [Result.Skipped]
// with the reason and left out of [Result.Correlations].
package correlate
