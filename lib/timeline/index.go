// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/bureau-foundation/pbacbench/lib/event"
)

// Key identifies a publication within one run.
type Key struct {
	Client        string  `json:"client"`
	Timestamp     float64 `json:"timestamp"`
	CorrelationID int64   `json:"correlation_id"`
}

// KeyOf returns the identity of a publication.
func KeyOf(publication *event.Publish) Key {
	return Key{
		Client:        publication.Client,
		Timestamp:     publication.Timestamp,
		CorrelationID: publication.CorrelationID,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%g#%d", k.Client, k.Timestamp, k.CorrelationID)
}

// CompareKeys orders keys by timestamp, client, then correlation id.
func CompareKeys(a, b Key) int {
	switch {
	case a.Timestamp < b.Timestamp:
		return -1
	case a.Timestamp > b.Timestamp:
		return 1
	case a.Client != b.Client:
		if a.Client < b.Client {
			return -1
		}
		return 1
	case a.CorrelationID < b.CorrelationID:
		return -1
	case a.CorrelationID > b.CorrelationID:
		return 1
	default:
		return 0
	}
}

// DuplicatePublicationError reports two publications with the same
// identity. The logs are not a consistent record of one run.
type DuplicatePublicationError struct {
	Key    Key
	First  event.Source
	Second event.Source
}

func (e *DuplicatePublicationError) Error() string {
	return fmt.Sprintf("duplicate publication %s at %s (first at %s)", e.Key, e.Second, e.First)
}

// Pair is an ordered (sender, receiver) pair.
type Pair struct {
	Sender   string
	Receiver string
}

// Counts tallies the events an index was built from.
type Counts struct {
	Clients               int `json:"clients"`
	Connects              int `json:"connects"`
	Disconnects           int `json:"disconnects"`
	Subscriptions         int `json:"subscriptions"`
	DataPublications      int `json:"data_publications"`
	OperationPublications int `json:"operation_publications"`
	DataReceptions        int `json:"data_receptions"`
	OperationReceptions   int `json:"operation_receptions"`
}

// Publications returns the total number of publications.
func (c Counts) Publications() int {
	return c.DataPublications + c.OperationPublications
}

// Receptions returns the total number of receptions.
func (c Counts) Receptions() int {
	return c.DataReceptions + c.OperationReceptions
}

// Client is the per-client part of the index.
type Client struct {
	id            string
	online        []Interval
	subscriptions []Subscription
	published     []*event.Publish
	received      []*event.Receive
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

// Online returns the client's online intervals in time order.
func (c *Client) Online() []Interval { return c.online }

// Subscriptions returns every subscription interval in start order.
func (c *Client) Subscriptions() []Subscription { return c.subscriptions }

// Published returns the client's publications in time order.
func (c *Client) Published() []*event.Publish { return c.published }

// Received returns the client's receptions in time order.
func (c *Client) Received() []*event.Receive { return c.received }

// OnlineAt returns the online interval containing t.
func (c *Client) OnlineAt(t float64) (Interval, bool) {
	return findInterval(c.online, t)
}

// SubscriptionsAt returns the subscription intervals that contain t,
// in start order.
func (c *Client) SubscriptionsAt(t float64) []Subscription {
	end := sort.Search(len(c.subscriptions), func(i int) bool {
		return c.subscriptions[i].Start > t
	})
	var active []Subscription
	for _, subscription := range c.subscriptions[:end] {
		if subscription.Contains(t) {
			active = append(active, subscription)
		}
	}
	return active
}

// SubscriptionsFrom returns the subscription intervals that are active
// at t or start after it: every subscription whose End is after t.
func (c *Client) SubscriptionsFrom(t float64) []Subscription {
	var active []Subscription
	for _, subscription := range c.subscriptions {
		if subscription.End > t {
			active = append(active, subscription)
		}
	}
	return active
}

// Index is the complete temporal index of one run.
type Index struct {
	clients      map[string]*Client
	ids          []string
	publications []*event.Publish
	byKey        map[Key]*event.Publish
	earliest     map[Pair]float64
	counts       Counts
}

// Client returns the index entry for id, or nil if the client never
// appears in the logs.
func (x *Index) Client(id string) *Client {
	return x.clients[id]
}

// ClientIDs returns every client identifier, sorted.
func (x *Index) ClientIDs() []string {
	return x.ids
}

// Publications returns every publication ordered by timestamp (ties in
// event order).
func (x *Index) Publications() []*event.Publish {
	return x.publications
}

// Publication looks a publication up by identity.
func (x *Index) Publication(key Key) (*event.Publish, bool) {
	publication, ok := x.byKey[key]
	return publication, ok
}

// EarliestReceipt returns the first time receiver got a data message
// from sender.
func (x *Index) EarliestReceipt(sender, receiver string) (float64, bool) {
	t, ok := x.earliest[Pair{Sender: sender, Receiver: receiver}]
	return t, ok
}

// Counts returns event tallies.
func (x *Index) Counts() Counts {
	return x.counts
}

// builder holds the mutable state Build needs while scanning.
type builder struct {
	index *Index

	// Per-client scan state.
	onlineSince map[string]float64
	// openSubscriptions maps client → topic filter → position in that
	// client's subscriptions slice.
	openSubscriptions map[string]map[string]int
	keySources        map[Key]event.Source
}

// Build constructs an index from events. Events are sorted with
// event.Compare first if they are not already in that order; the input
// slice is not modified.
func Build(events []event.Event) (*Index, error) {
	if !slices.IsSortedFunc(events, event.Compare) {
		events = slices.Clone(events)
		slices.SortStableFunc(events, event.Compare)
	}

	b := &builder{
		index: &Index{
			clients:  make(map[string]*Client),
			byKey:    make(map[Key]*event.Publish),
			earliest: make(map[Pair]float64),
		},
		onlineSince:       make(map[string]float64),
		openSubscriptions: make(map[string]map[string]int),
		keySources:        make(map[Key]event.Source),
	}

	for _, record := range events {
		if err := b.add(record); err != nil {
			return nil, err
		}
	}
	b.finish()
	return b.index, nil
}

func (b *builder) client(id string) *Client {
	client, ok := b.index.clients[id]
	if !ok {
		client = &Client{id: id}
		b.index.clients[id] = client
	}
	return client
}

func (b *builder) add(record event.Event) error {
	switch v := record.(type) {
	case *event.Connect:
		b.index.counts.Connects++
		b.client(v.Client)
		if _, online := b.onlineSince[v.Client]; !online {
			b.onlineSince[v.Client] = v.Timestamp
		}

	case *event.Disconnect:
		b.index.counts.Disconnects++
		client := b.client(v.Client)
		if since, online := b.onlineSince[v.Client]; online {
			if v.Timestamp > since {
				client.online = append(client.online, Interval{Start: since, End: v.Timestamp})
			}
			delete(b.onlineSince, v.Client)
		}
		for _, position := range b.openSubscriptions[v.Client] {
			client.subscriptions[position].End = v.Timestamp
		}
		delete(b.openSubscriptions, v.Client)

	case *event.Subscribe:
		b.index.counts.Subscriptions++
		client := b.client(v.Client)
		open := b.openSubscriptions[v.Client]
		if open == nil {
			open = make(map[string]int)
			b.openSubscriptions[v.Client] = open
		}
		if previous, ok := open[v.TopicFilter]; ok {
			client.subscriptions[previous].End = v.Timestamp
		}
		open[v.TopicFilter] = len(client.subscriptions)
		client.subscriptions = append(client.subscriptions, Subscription{
			Interval:       Interval{Start: v.Timestamp, End: math.Inf(1)},
			Client:         v.Client,
			Node:           v.Node,
			TopicFilter:    v.TopicFilter,
			PurposeFilter:  v.PurposeFilter,
			SubscriptionID: v.SubscriptionID,
			Source:         v.Source,
		})

	case *event.Publish:
		if v.Message.IsData() {
			b.index.counts.DataPublications++
		} else {
			b.index.counts.OperationPublications++
		}
		key := KeyOf(v)
		if first, exists := b.keySources[key]; exists {
			return &DuplicatePublicationError{Key: key, First: first, Second: v.Source}
		}
		b.keySources[key] = v.Source
		b.index.byKey[key] = v
		b.index.publications = append(b.index.publications, v)
		client := b.client(v.Client)
		client.published = append(client.published, v)

	case *event.Receive:
		client := b.client(v.Receiver)
		client.received = append(client.received, v)
		if v.Message.IsData() {
			b.index.counts.DataReceptions++
			pair := Pair{Sender: v.Sender, Receiver: v.Receiver}
			if earliest, seen := b.index.earliest[pair]; !seen || v.Timestamp < earliest {
				b.index.earliest[pair] = v.Timestamp
			}
		} else {
			b.index.counts.OperationReceptions++
		}

	default:
		panic(fmt.Sprintf("timeline: unhandled event variant %T", record))
	}
	return nil
}

func (b *builder) finish() {
	for id, since := range b.onlineSince {
		client := b.index.clients[id]
		client.online = append(client.online, Interval{Start: since, End: math.Inf(1)})
	}
	b.index.ids = make([]string, 0, len(b.index.clients))
	for id := range b.index.clients {
		b.index.ids = append(b.index.ids, id)
	}
	slices.Sort(b.index.ids)
	b.index.counts.Clients = len(b.index.ids)
}
