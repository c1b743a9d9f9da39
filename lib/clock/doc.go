// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable wall clock for testability.
//
// Production code accepts a Clock instead of calling time.Now
// directly. In production, Real() provides the standard library
// behavior. In tests, Fake() provides a clock that moves only when
// Advance or Set is called, so report timestamps and default output
// file names are reproducible.
//
// # Wiring Pattern
//
// Add a Clock field to structs that read the time:
//
//	type Builder struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	b := &Builder{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	b := &Builder{clock: c}
//	c.Advance(5 * time.Second)
package clock
