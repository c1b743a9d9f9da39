// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"math"

	"github.com/bureau-foundation/pbacbench/lib/timeline"
)

// ClientThroughput is one receiving client's one-second bucket series.
type ClientThroughput struct {
	Client   string  `json:"client"`
	Messages int     `json:"messages"`
	First    float64 `json:"first"`
	Last     float64 `json:"last"`

	// Span is the number of one-second buckets from First through
	// Last, empty ones included.
	Span int64 `json:"span"`

	// Buckets holds the non-empty buckets in offset order.
	Buckets []Bucket `json:"buckets"`

	// Mean is messages per second over Span.
	Mean float64 `json:"mean"`
	Peak int     `json:"peak"`
}

// Bucket counts receptions in [First+Offset, First+Offset+1).
type Bucket struct {
	Offset int64 `json:"offset"`
	Count  int   `json:"count"`
}

// ThroughputResult summarizes reception throughput.
type ThroughputResult struct {
	// Mean is the mean of per-client means, in messages per second.
	Mean float64 `json:"mean"`

	// Peak is the busiest single bucket of any client.
	Peak int `json:"peak"`

	Clients []ClientThroughput `json:"clients"`
}

func computeThroughput(index *timeline.Index) ThroughputResult {
	var result ThroughputResult
	for _, id := range index.ClientIDs() {
		received := index.Client(id).Received()
		if len(received) == 0 {
			continue
		}
		first := received[0].Timestamp
		last := received[len(received)-1].Timestamp
		client := ClientThroughput{
			Client:   id,
			Messages: len(received),
			First:    first,
			Last:     last,
			Span:     int64(math.Floor(last-first)) + 1,
		}
		// Received is in timestamp order, so equal offsets are adjacent.
		for _, reception := range received {
			offset := int64(math.Floor(reception.Timestamp - first))
			if n := len(client.Buckets); n > 0 && client.Buckets[n-1].Offset == offset {
				client.Buckets[n-1].Count++
			} else {
				client.Buckets = append(client.Buckets, Bucket{Offset: offset, Count: 1})
			}
		}
		client.Mean = float64(client.Messages) / float64(client.Span)
		for _, bucket := range client.Buckets {
			client.Peak = max(client.Peak, bucket.Count)
		}
		result.Peak = max(result.Peak, client.Peak)
		result.Clients = append(result.Clients, client)
	}

	if len(result.Clients) > 0 {
		sum := 0.0
		for _, client := range result.Clients {
			sum += client.Mean
		}
		result.Mean = sum / float64(len(result.Clients))
	}
	return result
}
