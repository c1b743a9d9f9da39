// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics computes the correctness and performance results of
// an analysis run from the temporal index and the correlation result.
//
// Four engines make up the core:
//
//   - Latency: reception time minus publication time for every joined
//     pair, aggregated per receiving client. The run-level mean is the
//     mean of per-client means, so every client weighs the same
//     regardless of how many messages it received.
//   - Throughput: receptions per one-second bucket, per receiving
//     client, spanning that client's first to last receipt. Aggregated
//     with the same equal weighting.
//   - PBAC correctness: for each (publication, subscriber) pair, the
//     subscription ids that should have delivered (eligible and
//     purpose-authorized) against the ids that actually did. Each pair
//     lands in exactly one of correct, improper (privacy violation),
//     not-matched (wrongful withholding), or no entry.
//   - Operation coverage: for each rights-operation request, the
//     subscribers that should have been contacted and the responses
//     that should have come back, given the enforcement method.
//
// Local anomalies (negative latency, receptions with no publication,
// publications nobody should receive, skipped publications, excess
// responses) never abort the computation. They are counted and sampled
// in [Anomalies] so the report can surface them.
//
// Every ratio with a zero denominator has a documented default (0 for
// error rates, 1 for coverage and completion); no result field is ever
// NaN, so results encode cleanly as JSON and CBOR.
package metrics
