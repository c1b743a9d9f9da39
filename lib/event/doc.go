// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the closed set of records a benchmark node
// writes to its event log: connects, disconnects, subscriptions,
// publications, and receptions.
//
// Event is a sealed interface. Code that needs to handle every variant
// switches on the concrete type (or on [Kind]) and treats anything else
// as a programming error, so adding a variant is a compile-visible
// change in every consumer that uses exhaustive switches.
//
// Every variant embeds a [Header] carrying the timestamp (seconds since
// the epoch, as logged by the node), the node identifier, and the
// [Source] position the record was parsed from. Source positions give
// a total order across files for events that share a timestamp; see
// [Less].
//
// Message kinds distinguish ordinary data publications from "rights
// operations" (data-subject requests such as erasure or access
// notices). Operations carry an operation type and one of three
// categories:
//
//   - C1: broadcast notification to every reachable subscriber.
//   - C2: per-subscriber request/response.
//   - C3: broker-mediated request/response.
//
// The zero [MessageKind] is a data message.
package event
