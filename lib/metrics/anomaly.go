// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"slices"
)

// AnomalyKind classifies a local anomaly.
type AnomalyKind string

const (
	AnomalyNegativeLatency       AnomalyKind = "negative_latency"
	AnomalyOrphanReception       AnomalyKind = "orphan_reception"
	AnomalyNoExpectedSubscribers AnomalyKind = "no_expected_subscribers"
	AnomalySkippedPublication    AnomalyKind = "skipped_publication"
	AnomalyExcessResponses       AnomalyKind = "excess_responses"
)

// DefaultSampleLimit is how many anomalies of each kind are kept as
// examples.
const DefaultSampleLimit = 20

// Anomaly is one recorded anomaly.
type Anomaly struct {
	Kind      AnomalyKind `json:"kind"`
	Client    string      `json:"client,omitempty"`
	Timestamp float64     `json:"timestamp"`
	Detail    string      `json:"detail"`
}

// AnomalyCount is the number of anomalies of one kind.
type AnomalyCount struct {
	Kind  AnomalyKind `json:"kind"`
	Count int         `json:"count"`
}

// Anomalies counts every anomaly and keeps a bounded sample per kind.
type Anomalies struct {
	Counts  []AnomalyCount `json:"counts"`
	Samples []Anomaly      `json:"samples"`
}

// Total returns the number of anomalies of every kind.
func (a Anomalies) Total() int {
	total := 0
	for _, count := range a.Counts {
		total += count.Count
	}
	return total
}

// Count returns the number of anomalies of kind.
func (a Anomalies) Count(kind AnomalyKind) int {
	for _, count := range a.Counts {
		if count.Kind == kind {
			return count.Count
		}
	}
	return 0
}

// anomalyRecorder accumulates anomalies during computation.
type anomalyRecorder struct {
	limit   int
	counts  map[AnomalyKind]int
	samples []Anomaly
}

func newAnomalyRecorder(limit int) *anomalyRecorder {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	return &anomalyRecorder{limit: limit, counts: make(map[AnomalyKind]int)}
}

func (r *anomalyRecorder) record(anomaly Anomaly) {
	r.counts[anomaly.Kind]++
	if r.counts[anomaly.Kind] <= r.limit {
		r.samples = append(r.samples, anomaly)
	}
}

func (r *anomalyRecorder) result() Anomalies {
	result := Anomalies{Samples: r.samples}
	for kind, count := range r.counts {
		result.Counts = append(result.Counts, AnomalyCount{Kind: kind, Count: count})
	}
	slices.SortFunc(result.Counts, func(a, b AnomalyCount) int {
		if a.Kind < b.Kind {
			return -1
		}
		if a.Kind > b.Kind {
			return 1
		}
		return 0
	})
	return result
}
