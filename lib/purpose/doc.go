// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package purpose implements the purpose-filter expression language
// used by PBAC subscriptions.
//
// A purpose is a "/"-delimited path of literal segments, for example
// "billing/auto". A purpose filter has the same shape, except that any
// segment may be a brace-enclosed, comma-separated alternation:
//
//	{billing,ads}/{auto,profiling}
//
// The filter describes the Cartesian product of its segment
// alternatives: billing/auto, billing/profiling, ads/auto, and
// ads/profiling. [Describes] is exact membership in that set. It is
// not a prefix match and not a hierarchical match: "billing" does not
// describe "billing/auto".
//
// [AllPurposes] ("*") is an ordinary literal segment. A filter of "*"
// describes only the purpose "*". A publisher that wants its message
// to reach "any purpose" subscribers must publish with "*" itself.
package purpose
