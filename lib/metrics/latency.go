// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"math"
	"slices"
	"strings"

	"github.com/bureau-foundation/pbacbench/lib/correlate"
)

// Stats accumulates a running summary of samples in seconds.
type Stats struct {
	Count      int     `json:"count"`
	Sum        float64 `json:"sum"`
	SumSquares float64 `json:"sum_squares"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// Add includes one sample.
func (s *Stats) Add(value float64) {
	if s.Count == 0 || value < s.Min {
		s.Min = value
	}
	if s.Count == 0 || value > s.Max {
		s.Max = value
	}
	s.Count++
	s.Sum += value
	s.SumSquares += value * value
}

// Mean returns the arithmetic mean, or 0 with no samples.
func (s Stats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the population variance, or 0 with fewer than two
// samples.
func (s Stats) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	mean := s.Mean()
	variance := s.SumSquares/float64(s.Count) - mean*mean
	// Rounding can push a zero variance slightly negative.
	return math.Max(variance, 0)
}

// StdDev returns the population standard deviation.
func (s Stats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// ClientLatency is the latency summary for one receiving client.
type ClientLatency struct {
	Client string `json:"client"`
	Stats
}

// LatencyResult summarizes publication-to-reception latency.
type LatencyResult struct {
	// Mean is the mean of per-client means, in seconds.
	Mean float64 `json:"mean"`

	// Pooled summarizes every sample together, for min/max and
	// comparison with the equal-weight mean.
	Pooled Stats `json:"pooled"`

	// Negative counts receptions logged before the publication they
	// carry. They indicate clock skew between nodes. The join never
	// pairs them, so they appear here and in the anomalies but not in
	// the means.
	Negative int `json:"negative"`

	Clients []ClientLatency `json:"clients"`
}

func computeLatency(correlations []*correlate.Correlation) LatencyResult {
	perClient := make(map[string]*Stats)
	var result LatencyResult

	for _, correlation := range correlations {
		published := correlation.Publication.Timestamp
		for _, reception := range correlation.Receptions {
			latency := reception.Timestamp - published
			stats, ok := perClient[reception.Receiver]
			if !ok {
				stats = &Stats{}
				perClient[reception.Receiver] = stats
			}
			stats.Add(latency)
			result.Pooled.Add(latency)
		}
	}

	result.Clients = make([]ClientLatency, 0, len(perClient))
	for client, stats := range perClient {
		result.Clients = append(result.Clients, ClientLatency{Client: client, Stats: *stats})
	}
	slices.SortFunc(result.Clients, func(a, b ClientLatency) int {
		return strings.Compare(a.Client, b.Client)
	})

	if len(result.Clients) > 0 {
		sum := 0.0
		for _, client := range result.Clients {
			sum += client.Mean()
		}
		result.Mean = sum / float64(len(result.Clients))
	}
	return result
}
