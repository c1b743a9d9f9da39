// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rules implements the "purpose" and "topic" command groups,
// which evaluate the matching rules the analyzer applies so an operator
// can check why a subscription did or did not count as a match.
package rules
