// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/pbacbench/lib/correlate"
	"github.com/bureau-foundation/pbacbench/lib/purpose"
)

// Classification is the PBAC outcome of one (publication, subscriber)
// pair.
type Classification int

const (
	// NoEntry: the subscriber neither should have received the
	// publication nor did.
	NoEntry Classification = iota

	// Correct: every delivery to the subscriber arrived through a
	// subscription authorized for the publication's purpose.
	Correct

	// Improper: at least one delivery arrived through a subscription
	// not authorized for the publication's purpose. A privacy
	// violation, even when another delivery was authorized.
	Improper

	// NotMatched: an authorized subscription existed but nothing was
	// delivered.
	NotMatched
)

func (c Classification) String() string {
	switch c {
	case NoEntry:
		return "no-entry"
	case Correct:
		return "correct"
	case Improper:
		return "improper"
	case NotMatched:
		return "not-matched"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

// Classify decides the outcome for one pair from the subscription ids
// that should have delivered and the ids that actually did. Any
// delivery outside should makes the pair Improper.
func Classify(should, actual []int64) Classification {
	if len(actual) > 0 {
		for _, id := range actual {
			if !slices.Contains(should, id) {
				return Improper
			}
		}
		return Correct
	}
	if len(should) > 0 {
		return NotMatched
	}
	return NoEntry
}

// Tally counts PBAC outcomes.
type Tally struct {
	Correct    int `json:"correct"`
	Improper   int `json:"improper"`
	NotMatched int `json:"not_matched"`

	// Received counts pairs with at least one delivery (Correct +
	// Improper). Expected counts pairs with at least one authorized
	// subscription.
	Received int `json:"received"`
	Expected int `json:"expected"`

	// Duplicates counts deliveries beyond the first within one pair.
	Duplicates int `json:"duplicates"`
}

func (t *Tally) add(classification Classification, expected bool, deliveries int) {
	switch classification {
	case Correct:
		t.Correct++
	case Improper:
		t.Improper++
	case NotMatched:
		t.NotMatched++
	}
	if deliveries > 0 {
		t.Received++
		t.Duplicates += deliveries - 1
	}
	if expected {
		t.Expected++
	}
}

func (t *Tally) merge(other Tally) {
	t.Correct += other.Correct
	t.Improper += other.Improper
	t.NotMatched += other.NotMatched
	t.Received += other.Received
	t.Expected += other.Expected
	t.Duplicates += other.Duplicates
}

// FalseAcceptRate is Improper / Received, or 0 with nothing received.
func (t Tally) FalseAcceptRate() float64 {
	return ratio(t.Improper, t.Received, 0)
}

// FalseRejectRate is NotMatched / Expected, or 0 with nothing expected.
func (t Tally) FalseRejectRate() float64 {
	return ratio(t.NotMatched, t.Expected, 0)
}

// ClientTally is the tally for one receiving client.
type ClientTally struct {
	Client string `json:"client"`
	Tally
}

// PBACResult summarizes PBAC correctness.
type PBACResult struct {
	Aggregate Tally         `json:"aggregate"`
	Clients   []ClientTally `json:"clients"`

	// Publications counts the publications evaluated. Skipped counts
	// those left out because a purpose or purpose filter was malformed.
	Publications int `json:"publications"`
	Skipped      int `json:"skipped"`
}

// pair accumulates should/actual subscription ids for one client and
// one publication.
type pair struct {
	should []int64
	actual []int64
}

func computePBAC(correlations []*correlate.Correlation, operationPurpose string, purposes *purpose.Cache, anomalies *anomalyRecorder) PBACResult {
	var result PBACResult
	perClient := make(map[string]*Tally)

	for _, correlation := range correlations {
		publication := correlation.Publication
		if publication.Purpose == operationPurpose {
			continue
		}

		pairs, err := buildPairs(correlation, purposes)
		if err != nil {
			result.Skipped++
			anomalies.record(Anomaly{
				Kind:      AnomalySkippedPublication,
				Client:    publication.Client,
				Timestamp: publication.Timestamp,
				Detail:    fmt.Sprintf("PBAC evaluation of %s skipped: %v", correlation.Key, err),
			})
			continue
		}
		result.Publications++

		expectedAny := false
		for client, entry := range pairs {
			classification := Classify(entry.should, entry.actual)
			tally, ok := perClient[client]
			if !ok {
				tally = &Tally{}
				perClient[client] = tally
			}
			tally.add(classification, len(entry.should) > 0, len(entry.actual))
			expectedAny = expectedAny || len(entry.should) > 0
		}
		if !expectedAny && publication.Message.IsData() {
			anomalies.record(Anomaly{
				Kind:      AnomalyNoExpectedSubscribers,
				Client:    publication.Client,
				Timestamp: publication.Timestamp,
				Detail:    fmt.Sprintf("%s on %q with purpose %q had no authorized subscriber", correlation.Key, publication.Topic, publication.Purpose),
			})
		}
	}

	for client, tally := range perClient {
		result.Clients = append(result.Clients, ClientTally{Client: client, Tally: *tally})
		result.Aggregate.merge(*tally)
	}
	slices.SortFunc(result.Clients, func(a, b ClientTally) int {
		return strings.Compare(a.Client, b.Client)
	})
	return result
}

// buildPairs collects, per subscriber, the authorized subscription ids
// among the eligible subscriptions and the ids receptions arrived on.
func buildPairs(correlation *correlate.Correlation, purposes *purpose.Cache) (map[string]*pair, error) {
	publication := correlation.Publication
	if err := purpose.ValidatePurpose(publication.Purpose); err != nil {
		return nil, err
	}

	pairs := make(map[string]*pair)
	entry := func(client string) *pair {
		p, ok := pairs[client]
		if !ok {
			p = &pair{}
			pairs[client] = p
		}
		return p
	}

	for _, subscription := range correlation.Eligible {
		authorized, err := purposes.Describes(subscription.PurposeFilter, publication.Purpose)
		if err != nil {
			return nil, fmt.Errorf("client %s subscription %d: %w", subscription.Client, subscription.SubscriptionID, err)
		}
		if authorized {
			should := &entry(subscription.Client).should
			*should = append(*should, subscription.SubscriptionID)
		}
	}
	for _, reception := range correlation.Receptions {
		actual := &entry(reception.Receiver).actual
		*actual = append(*actual, reception.SubscriptionID)
	}
	return pairs, nil
}

func ratio(numerator, denominator int, empty float64) float64 {
	if denominator == 0 {
		return empty
	}
	return float64(numerator) / float64(denominator)
}
