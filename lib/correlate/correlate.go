// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package correlate

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/pbacbench/lib/event"
	"github.com/bureau-foundation/pbacbench/lib/timeline"
	"github.com/bureau-foundation/pbacbench/lib/topic"
)

// cancelCheckInterval is how many publications a partition processes
// between context checks.
const cancelCheckInterval = 256

// Options configures Correlate.
type Options struct {
	// Matcher decides topic matches. Defaults to topic.NewMatcher("",
	// nil).
	Matcher *topic.Matcher

	// Workers is the number of client partitions. Defaults to
	// GOMAXPROCS.
	Workers int

	// Logger receives skip warnings. Defaults to a discard logger.
	Logger *slog.Logger
}

// Correlation is the joined view of one publication.
type Correlation struct {
	Key         timeline.Key
	Publication *event.Publish

	// Receptions caused by the publication, ordered by receiver then
	// time.
	Receptions []*event.Receive

	// Eligible subscriptions, ordered by client then start time.
	Eligible []timeline.Subscription
}

// Skip records a publication excluded from correlation.
type Skip struct {
	Key    timeline.Key `json:"key"`
	Reason string       `json:"reason"`
}

// Result holds the output of one correlation pass.
type Result struct {
	// Correlations in publication order, without skipped publications.
	Correlations []*Correlation

	// Skipped publications in publication order.
	Skipped []Skip

	// Orphans are receptions that joined no publication, in receiver
	// then time order.
	Orphans []*event.Receive
}

// joinKey is the reception side of the publish→receive join.
type joinKey struct {
	sender        string
	correlationID int64
	message       event.MessageKind
}

// partial is one partition's output.
type partial struct {
	receptions map[timeline.Key][]*event.Receive
	eligible   map[timeline.Key][]timeline.Subscription
	skips      map[timeline.Key]string
	orphans    []*event.Receive
}

// Correlate runs the correlation pass over a fully built index.
func Correlate(ctx context.Context, index *timeline.Index, options Options) (*Result, error) {
	matcher := options.Matcher
	if matcher == nil {
		matcher = topic.NewMatcher("", nil)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	clientIDs := index.ClientIDs()
	if workers > len(clientIDs) {
		workers = max(len(clientIDs), 1)
	}

	publications := index.Publications()
	joins := make(map[joinKey][]*event.Publish)
	invalid := make(map[timeline.Key]string)
	for _, publication := range publications {
		key := joinKey{
			sender:        publication.Client,
			correlationID: publication.CorrelationID,
			message:       publication.Message,
		}
		joins[key] = append(joins[key], publication)
		if err := topic.ValidateTopic(publication.Topic); err != nil {
			invalid[timeline.KeyOf(publication)] = err.Error()
		}
	}

	partials := make([]*partial, workers)
	group, groupContext := errgroup.WithContext(ctx)
	for worker := range workers {
		var owned []*timeline.Client
		for position := worker; position < len(clientIDs); position += workers {
			owned = append(owned, index.Client(clientIDs[position]))
		}
		group.Go(func() error {
			result, err := correlatePartition(groupContext, owned, publications, joins, invalid, matcher)
			if err != nil {
				return err
			}
			partials[worker] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := merge(publications, partials, invalid)
	for _, skip := range result.Skipped {
		logger.Warn("publication skipped", "publication", skip.Key.String(), "reason", skip.Reason)
	}
	logger.Info("correlation complete",
		"publications", len(publications),
		"correlated", len(result.Correlations),
		"skipped", len(result.Skipped),
		"orphans", len(result.Orphans),
		"partitions", workers,
	)
	return result, nil
}

func correlatePartition(
	ctx context.Context,
	clients []*timeline.Client,
	publications []*event.Publish,
	joins map[joinKey][]*event.Publish,
	invalid map[timeline.Key]string,
	matcher *topic.Matcher,
) (*partial, error) {
	output := &partial{
		receptions: make(map[timeline.Key][]*event.Receive),
		eligible:   make(map[timeline.Key][]timeline.Subscription),
		skips:      make(map[timeline.Key]string),
	}

	// Publish → receive.
	for _, client := range clients {
		for _, reception := range client.Received() {
			candidates := joins[joinKey{
				sender:        reception.Sender,
				correlationID: reception.CorrelationID,
				message:       reception.Message,
			}]
			joined := false
			for _, publication := range candidates {
				if reception.Timestamp >= publication.Timestamp {
					key := timeline.KeyOf(publication)
					output.receptions[key] = append(output.receptions[key], reception)
					joined = true
				}
			}
			if !joined {
				output.orphans = append(output.orphans, reception)
			}
		}
	}

	// Publish → eligible subscriptions.
	for position, publication := range publications {
		if position%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		key := timeline.KeyOf(publication)
		if _, bad := invalid[key]; bad {
			continue
		}
		eligible, err := eligibleSubscriptions(clients, publication, matcher)
		if err != nil {
			output.skips[key] = err.Error()
			continue
		}
		if len(eligible) > 0 {
			output.eligible[key] = eligible
		}
	}
	return output, nil
}

// eligibleSubscriptions returns the subscriptions among clients that
// should have delivered publication, ignoring purpose.
func eligibleSubscriptions(clients []*timeline.Client, publication *event.Publish, matcher *topic.Matcher) ([]timeline.Subscription, error) {
	var eligible []timeline.Subscription
	at := publication.Timestamp
	for _, client := range clients {
		if client.ID() == publication.Client {
			continue
		}
		session, online := client.OnlineAt(at)
		if !online {
			continue
		}
		for _, subscription := range client.SubscriptionsAt(at) {
			if subscription.Start < session.Start {
				continue
			}
			matched, err := matcher.Matches(subscription.TopicFilter, publication.Topic)
			if err != nil {
				return nil, fmt.Errorf("client %s subscription %d: %w", client.ID(), subscription.SubscriptionID, err)
			}
			if matched {
				eligible = append(eligible, subscription)
			}
		}
	}
	return eligible, nil
}

func merge(publications []*event.Publish, partials []*partial, invalid map[timeline.Key]string) *Result {
	result := &Result{}

	for _, publication := range publications {
		key := timeline.KeyOf(publication)

		var reasons []string
		if reason, bad := invalid[key]; bad {
			reasons = append(reasons, reason)
		}
		for _, part := range partials {
			if reason, skipped := part.skips[key]; skipped {
				reasons = append(reasons, reason)
			}
		}
		if len(reasons) > 0 {
			result.Skipped = append(result.Skipped, Skip{Key: key, Reason: strings.Join(reasons, "; ")})
			continue
		}

		correlation := &Correlation{Key: key, Publication: publication}
		for _, part := range partials {
			correlation.Receptions = append(correlation.Receptions, part.receptions[key]...)
			correlation.Eligible = append(correlation.Eligible, part.eligible[key]...)
		}
		slices.SortFunc(correlation.Receptions, compareReceptions)
		slices.SortFunc(correlation.Eligible, func(a, b timeline.Subscription) int {
			return cmp.Or(
				cmp.Compare(a.Client, b.Client),
				cmp.Compare(a.Start, b.Start),
				cmp.Compare(a.SubscriptionID, b.SubscriptionID),
			)
		})
		result.Correlations = append(result.Correlations, correlation)
	}

	for _, part := range partials {
		result.Orphans = append(result.Orphans, part.orphans...)
	}
	slices.SortFunc(result.Orphans, compareReceptions)
	return result
}

func compareReceptions(a, b *event.Receive) int {
	return cmp.Or(
		cmp.Compare(a.Receiver, b.Receiver),
		cmp.Compare(a.Timestamp, b.Timestamp),
		cmp.Compare(a.Source.File, b.Source.File),
		cmp.Compare(a.Source.Line, b.Source.Line),
	)
}
