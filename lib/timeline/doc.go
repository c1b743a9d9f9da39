// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package timeline builds the read-only temporal index an analysis run
// correlates against.
//
// [Build] consumes the merged, ordered event stream of a run and
// derives, per client:
//
//   - Online intervals. Connect/Disconnect events are scanned in order.
//     A Connect while already online extends the current session
//     instead of starting a new one; a Disconnect while offline is
//     ignored. A session still open at the end of the logs extends to
//     +Inf.
//   - Subscription intervals, one per Subscribe event, covering
//     [subscribed_at, ends_at). ends_at is the client's next Disconnect
//     or its next Subscribe on the same topic filter, whichever comes
//     first in event order. Re-subscribing supersedes the previous
//     purpose filter from the new subscription's start onward; it never
//     rewrites an interval that was already closed.
//   - Publications sent and receptions received, in time order.
//
// Globally it keeps every publication in time order, indexed by its
// identity (client, timestamp, correlation id), and the earliest time
// each receiver got a data message from each sender.
//
// All intervals are half-open. Lookups binary-search sorted slices.
// Nothing in an [Index] changes after Build returns, so the index may
// be shared by any number of goroutines.
package timeline
