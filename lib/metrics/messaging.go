// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"math"

	"github.com/bureau-foundation/pbacbench/lib/logparse"
	"github.com/bureau-foundation/pbacbench/lib/timeline"
)

// Per-publication header overhead estimate for MQTT v5: fixed header,
// topic length prefix, purpose user-property framing, and correlation
// data.
const (
	fixedHeaderBytes     = 5
	topicPrefixBytes     = 2
	userPropertyBytes    = 4
	correlationDataBytes = 8
)

// Messaging summarizes publication volume and overhead.
type Messaging struct {
	DataPublications      int `json:"data_publications"`
	OperationPublications int `json:"operation_publications"`

	// PublishRate is data publications per second between the first
	// and last data publication, 0 if they coincide.
	PublishRate float64 `json:"publish_rate"`

	// MeanHeaderBytes estimates the protocol header size of a data
	// publication carrying its purpose as a user property.
	MeanHeaderBytes float64 `json:"mean_header_bytes"`
}

func computeMessaging(index *timeline.Index) Messaging {
	var result Messaging
	first, last := math.Inf(1), math.Inf(-1)
	headerBytes := 0
	for _, publication := range index.Publications() {
		if !publication.Message.IsData() {
			result.OperationPublications++
			continue
		}
		result.DataPublications++
		first = math.Min(first, publication.Timestamp)
		last = math.Max(last, publication.Timestamp)
		headerBytes += fixedHeaderBytes +
			topicPrefixBytes + len(publication.Topic) +
			userPropertyBytes + len(publication.Purpose) +
			correlationDataBytes
	}
	if result.DataPublications > 0 {
		result.MeanHeaderBytes = float64(headerBytes) / float64(result.DataPublications)
		if last > first {
			result.PublishRate = float64(result.DataPublications) / (last - first)
		}
	}
	return result
}

// ResourceSummary combines the broker resource lines of every log.
type ResourceSummary struct {
	Samples  int     `json:"samples"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Avg      float64 `json:"avg"`
	Variance float64 `json:"variance"`
}

// BrokerResources holds the CPU and memory summaries.
type BrokerResources struct {
	CPU    ResourceSummary `json:"cpu"`
	Memory ResourceSummary `json:"memory"`
}

func summarizeBroker(cpu, memory []logparse.ResourceSample) BrokerResources {
	return BrokerResources{CPU: summarizeResource(cpu), Memory: summarizeResource(memory)}
}

// summarizeResource takes the extremes of the minima and maxima and
// averages the means and variances.
func summarizeResource(samples []logparse.ResourceSample) ResourceSummary {
	if len(samples) == 0 {
		return ResourceSummary{}
	}
	summary := ResourceSummary{Samples: len(samples), Min: samples[0].Min, Max: samples[0].Max}
	for _, sample := range samples {
		summary.Min = math.Min(summary.Min, sample.Min)
		summary.Max = math.Max(summary.Max, sample.Max)
		summary.Avg += sample.Avg
		summary.Variance += sample.Variance
	}
	summary.Avg /= float64(len(samples))
	summary.Variance /= float64(len(samples))
	return summary
}
