// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"

	"github.com/bureau-foundation/pbacbench/lib/correlate"
	"github.com/bureau-foundation/pbacbench/lib/event"
	"github.com/bureau-foundation/pbacbench/lib/logparse"
	"github.com/bureau-foundation/pbacbench/lib/purpose"
	"github.com/bureau-foundation/pbacbench/lib/timeline"
	"github.com/bureau-foundation/pbacbench/lib/topic"
)

// DefaultOperationPurpose is the purpose rights-operation messages are
// published with. PBAC correctness ignores such publications.
const DefaultOperationPurpose = "DAP_op"

// Input is everything Compute needs.
type Input struct {
	Index       *timeline.Index
	Correlation *correlate.Result
	Method      Method

	// Matcher must be the matcher the correlation ran with. Defaults
	// to topic.NewMatcher("", nil).
	Matcher *topic.Matcher

	// Purposes caches purpose-filter parses. Defaults to a fresh cache.
	Purposes *purpose.Cache

	// OperationPurpose defaults to DefaultOperationPurpose.
	OperationPurpose string

	// ResponsePrefix is the first topic level of operation responses.
	// Defaults to topic.OperationResponsePrefix.
	ResponsePrefix string

	// CPU and Memory are broker resource summaries from the logs.
	CPU    []logparse.ResourceSample
	Memory []logparse.ResourceSample

	// SampleLimit bounds the anomaly samples kept per kind. Defaults
	// to DefaultSampleLimit.
	SampleLimit int
}

// Result holds every metric of one run.
type Result struct {
	Latency    LatencyResult    `json:"latency"`
	Throughput ThroughputResult `json:"throughput"`
	PBAC       PBACResult       `json:"pbac"`
	Coverage   CoverageResult   `json:"coverage"`
	Messaging  Messaging        `json:"messaging"`
	Broker     BrokerResources  `json:"broker"`
	Anomalies  Anomalies        `json:"anomalies"`
}

// Compute runs every metric engine.
func Compute(input Input) *Result {
	if input.Matcher == nil {
		input.Matcher = topic.NewMatcher("", nil)
	}
	if input.Purposes == nil {
		input.Purposes = &purpose.Cache{}
	}
	if input.OperationPurpose == "" {
		input.OperationPurpose = DefaultOperationPurpose
	}
	if input.ResponsePrefix == "" {
		input.ResponsePrefix = topic.OperationResponsePrefix
	}

	anomalies := newAnomalyRecorder(input.SampleLimit)
	for _, skip := range input.Correlation.Skipped {
		anomalies.record(Anomaly{
			Kind:      AnomalySkippedPublication,
			Client:    skip.Key.Client,
			Timestamp: skip.Key.Timestamp,
			Detail:    fmt.Sprintf("%s: %s", skip.Key, skip.Reason),
		})
	}

	correlations := input.Correlation.Correlations
	result := &Result{
		Latency:    computeLatency(correlations),
		Throughput: computeThroughput(input.Index),
		Messaging:  computeMessaging(input.Index),
		Broker:     summarizeBroker(input.CPU, input.Memory),
	}
	result.Latency.Negative = classifyOrphans(input.Index, input.Correlation.Orphans, anomalies)
	result.PBAC = computePBAC(correlations, input.OperationPurpose, input.Purposes, anomalies)
	result.Coverage = computeCoverage(correlations, coverageInput{
		index:          input.Index,
		matcher:        input.Matcher,
		method:         input.Method,
		responsePrefix: input.ResponsePrefix,
	}, anomalies)
	result.Anomalies = anomalies.result()
	return result
}

// classifyOrphans records an anomaly for every reception that joined
// no publication. A reception whose publication exists but was logged
// later is clock skew and is reported as a negative latency; the
// return value counts those.
func classifyOrphans(index *timeline.Index, orphans []*event.Receive, anomalies *anomalyRecorder) int {
	type joinKey struct {
		sender        string
		correlationID int64
		message       event.MessageKind
	}
	earliest := make(map[joinKey]float64)
	for _, publication := range index.Publications() {
		key := joinKey{publication.Client, publication.CorrelationID, publication.Message}
		if _, seen := earliest[key]; !seen {
			earliest[key] = publication.Timestamp
		}
	}

	negative := 0
	for _, orphan := range orphans {
		published, ok := earliest[joinKey{orphan.Sender, orphan.CorrelationID, orphan.Message}]
		if ok && published > orphan.Timestamp {
			negative++
			anomalies.record(Anomaly{
				Kind:      AnomalyNegativeLatency,
				Client:    orphan.Receiver,
				Timestamp: orphan.Timestamp,
				Detail: fmt.Sprintf("%s received %s#%d from %s %.6fs before it was published (%s)",
					orphan.Receiver, orphan.Message, orphan.CorrelationID, orphan.Sender, published-orphan.Timestamp, orphan.Source),
			})
			continue
		}
		anomalies.record(Anomaly{
			Kind:      AnomalyOrphanReception,
			Client:    orphan.Receiver,
			Timestamp: orphan.Timestamp,
			Detail: fmt.Sprintf("%s received %s#%d from %s with no matching publication (%s)",
				orphan.Receiver, orphan.Message, orphan.CorrelationID, orphan.Sender, orphan.Source),
		})
	}
	return negative
}
