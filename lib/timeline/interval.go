// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/bureau-foundation/pbacbench/lib/event"
)

// Interval is the half-open time range [Start, End). An open interval
// has End = +Inf.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether t lies in [Start, End).
func (i Interval) Contains(t float64) bool {
	return t >= i.Start && t < i.End
}

// IsOpen reports whether the interval never closed.
func (i Interval) IsOpen() bool {
	return math.IsInf(i.End, 1)
}

func (i Interval) String() string {
	if i.IsOpen() {
		return fmt.Sprintf("[%g, +Inf)", i.Start)
	}
	return fmt.Sprintf("[%g, %g)", i.Start, i.End)
}

// Subscription is one subscription interval: the span during which a
// Subscribe event governed deliveries on its topic filter.
type Subscription struct {
	Interval
	Client         string
	Node           string
	TopicFilter    string
	PurposeFilter  string
	SubscriptionID int64
	Source         event.Source
}

// findInterval returns the interval in sorted, non-overlapping
// intervals that contains t.
func findInterval(intervals []Interval, t float64) (Interval, bool) {
	index := sort.Search(len(intervals), func(i int) bool {
		return intervals[i].Start > t
	})
	if index == 0 {
		return Interval{}, false
	}
	candidate := intervals[index-1]
	if candidate.Contains(t) {
		return candidate, true
	}
	return Interval{}, false
}
