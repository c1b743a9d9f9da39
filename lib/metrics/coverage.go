// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bureau-foundation/pbacbench/lib/correlate"
	"github.com/bureau-foundation/pbacbench/lib/event"
	"github.com/bureau-foundation/pbacbench/lib/timeline"
	"github.com/bureau-foundation/pbacbench/lib/topic"
)

// Method is the purpose-management method a run used.
type Method struct {
	Name string `json:"name"`

	// BrokerAssisted is true when the broker answers rights requests
	// on subscribers' behalf. Direct methods leave responses to the
	// subscribers themselves.
	BrokerAssisted bool `json:"broker_assisted"`
}

// RequestCoverage is the outcome of one rights-operation request.
type RequestCoverage struct {
	Key      timeline.Key   `json:"key"`
	OpType   string         `json:"op_type"`
	Category event.Category `json:"category"`
	Topic    string         `json:"topic"`

	SubscribersExpected  int `json:"subscribers_expected"`
	SubscribersContacted int `json:"subscribers_contacted"`

	// Unexpected counts clients that received the request without
	// being expected to (leakage).
	Unexpected int `json:"unexpected"`

	ResponsesExpected int `json:"responses_expected"`
	ResponsesReceived int `json:"responses_received"`

	// DirectResponses counts operation responses that reached the
	// requester. Under direct methods it is informational only.
	DirectResponses int `json:"direct_responses"`
}

// Coverage is SubscribersContacted / SubscribersExpected, or 1 when no
// subscriber was expected.
func (r RequestCoverage) Coverage() float64 {
	return ratio(r.SubscribersContacted, r.SubscribersExpected, 1)
}

// Completion is ResponsesReceived / ResponsesExpected, or 1 when no
// response was expected. Duplicate responses can push it above 1.
func (r RequestCoverage) Completion() float64 {
	return ratio(r.ResponsesReceived, r.ResponsesExpected, 1)
}

// Leakage is the fraction of contacted clients that were not expected.
func (r RequestCoverage) Leakage() float64 {
	return ratio(r.Unexpected, r.SubscribersContacted+r.Unexpected, 0)
}

// OperationCount aggregates requests of one operation type and
// category.
type OperationCount struct {
	OpType    string         `json:"op_type"`
	Category  event.Category `json:"category"`
	Requests  int            `json:"requests"`
	Covered   int            `json:"covered"`
	Completed int            `json:"completed"`
}

type operationKey struct {
	opType   string
	category event.Category
}

// CoverageResult summarizes operation coverage.
type CoverageResult struct {
	Method Method `json:"method"`

	// MeanCoverage and MeanCompletion average the per-request values,
	// 1 when there were no requests.
	MeanCoverage   float64 `json:"mean_coverage"`
	MeanCompletion float64 `json:"mean_completion"`

	SubscribersExpected  int `json:"subscribers_expected"`
	SubscribersContacted int `json:"subscribers_contacted"`
	ResponsesExpected    int `json:"responses_expected"`
	ResponsesReceived    int `json:"responses_received"`

	ByOperation []OperationCount  `json:"by_operation"`
	Requests    []RequestCoverage `json:"requests"`
}

// coverageInput is what the coverage engine needs beyond correlations.
type coverageInput struct {
	index          *timeline.Index
	matcher        *topic.Matcher
	method         Method
	responsePrefix string
}

func computeCoverage(correlations []*correlate.Correlation, input coverageInput, anomalies *anomalyRecorder) CoverageResult {
	result := CoverageResult{Method: input.method, MeanCoverage: 1, MeanCompletion: 1}
	operations := make(map[operationKey]*OperationCount)

	coverageSum, completionSum := 0.0, 0.0
	for _, correlation := range correlations {
		publication := correlation.Publication
		if !isRequest(publication, input.responsePrefix) {
			continue
		}

		request, err := evaluateRequest(correlation, input)
		if err != nil {
			anomalies.record(Anomaly{
				Kind:      AnomalySkippedPublication,
				Client:    publication.Client,
				Timestamp: publication.Timestamp,
				Detail:    fmt.Sprintf("coverage of %s skipped: %v", correlation.Key, err),
			})
			continue
		}
		if request.SubscribersExpected == 0 {
			anomalies.record(Anomaly{
				Kind:      AnomalyNoExpectedSubscribers,
				Client:    publication.Client,
				Timestamp: publication.Timestamp,
				Detail:    fmt.Sprintf("%s request %s (%s) had no subscriber to contact", request.OpType, correlation.Key, request.Category),
			})
		}
		if request.ResponsesReceived > request.ResponsesExpected {
			anomalies.record(Anomaly{
				Kind:      AnomalyExcessResponses,
				Client:    publication.Client,
				Timestamp: publication.Timestamp,
				Detail:    fmt.Sprintf("%s got %d responses, expected %d", correlation.Key, request.ResponsesReceived, request.ResponsesExpected),
			})
		}

		result.Requests = append(result.Requests, request)
		result.SubscribersExpected += request.SubscribersExpected
		result.SubscribersContacted += request.SubscribersContacted
		result.ResponsesExpected += request.ResponsesExpected
		result.ResponsesReceived += request.ResponsesReceived
		coverageSum += request.Coverage()
		completionSum += request.Completion()

		groupKey := operationKey{opType: request.OpType, category: request.Category}
		count, ok := operations[groupKey]
		if !ok {
			count = &OperationCount{OpType: request.OpType, Category: request.Category}
			operations[groupKey] = count
		}
		count.Requests++
		if request.Coverage() >= 1 {
			count.Covered++
		}
		if request.Completion() >= 1 {
			count.Completed++
		}
	}

	if len(result.Requests) > 0 {
		result.MeanCoverage = coverageSum / float64(len(result.Requests))
		result.MeanCompletion = completionSum / float64(len(result.Requests))
	}
	for _, count := range operations {
		result.ByOperation = append(result.ByOperation, *count)
	}
	slices.SortFunc(result.ByOperation, func(a, b OperationCount) int {
		return cmp.Or(cmp.Compare(a.OpType, b.OpType), cmp.Compare(a.Category, b.Category))
	})
	return result
}

// isRequest reports whether a publication is a rights-operation
// request rather than a data message or an operation response.
func isRequest(publication *event.Publish, responsePrefix string) bool {
	return !publication.Message.IsData() && topic.FirstLevel(publication.Topic) != responsePrefix
}

func evaluateRequest(correlation *correlate.Correlation, input coverageInput) (RequestCoverage, error) {
	publication := correlation.Publication
	request := RequestCoverage{
		Key:      correlation.Key,
		OpType:   publication.Message.OpType,
		Category: publication.Message.OpCategory,
		Topic:    publication.Topic,
	}

	expected, err := expectedSubscribers(correlation, input)
	if err != nil {
		return request, err
	}

	contacted := make(map[string]bool)
	for _, reception := range correlation.Receptions {
		if reception.Receiver == publication.Client || contacted[reception.Receiver] {
			continue
		}
		contacted[reception.Receiver] = true
		if expected[reception.Receiver] {
			request.SubscribersContacted++
		} else {
			request.Unexpected++
		}
	}
	request.SubscribersExpected = len(expected)
	request.DirectResponses = countResponses(input.index.Client(publication.Client), publication, input.responsePrefix)

	if input.method.BrokerAssisted {
		request.ResponsesExpected = 1
		request.ResponsesReceived = request.DirectResponses
	} else {
		// Compliance operations may outlive a run, so under direct
		// methods a request counts as answered once it was received.
		request.ResponsesExpected = request.SubscribersExpected
		request.ResponsesReceived = request.SubscribersContacted
	}
	return request, nil
}

// expectedSubscribers returns the clients a request should reach.
func expectedSubscribers(correlation *correlate.Correlation, input coverageInput) (map[string]bool, error) {
	publication := correlation.Publication
	expected := make(map[string]bool)

	if input.method.BrokerAssisted {
		// The broker reaches every client whose subscription matches
		// now or later in the run.
		for _, id := range input.index.ClientIDs() {
			if id == publication.Client {
				continue
			}
			for _, subscription := range input.index.Client(id).SubscriptionsFrom(publication.Timestamp) {
				matched, err := input.matcher.Matches(subscription.TopicFilter, publication.Topic)
				if err != nil {
					return nil, fmt.Errorf("client %s subscription %d: %w", id, subscription.SubscriptionID, err)
				}
				if matched {
					expected[id] = true
					break
				}
			}
		}
	} else {
		for _, subscription := range correlation.Eligible {
			expected[subscription.Client] = true
		}
	}

	if publication.Message.OpCategory == event.CategoryC1 {
		return expected, nil
	}
	// C2 and C3 requests concern data the requester published, so only
	// clients that already received its data are relevant.
	for client := range expected {
		first, ok := input.index.EarliestReceipt(publication.Client, client)
		if !ok || first > publication.Timestamp {
			delete(expected, client)
		}
	}
	return expected, nil
}

// countResponses counts operation responses to request delivered to
// the requester.
func countResponses(requester *timeline.Client, request *event.Publish, responsePrefix string) int {
	if requester == nil {
		return 0
	}
	count := 0
	for _, reception := range requester.Received() {
		if reception.Timestamp < request.Timestamp ||
			reception.Message.IsData() ||
			reception.CorrelationID != request.CorrelationID ||
			reception.Message.OpType != request.Message.OpType ||
			topic.FirstLevel(reception.Topic) != responsePrefix {
			continue
		}
		count++
	}
	return count
}
