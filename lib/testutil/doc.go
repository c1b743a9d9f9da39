// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for pbacbench packages.
//
// [Log] builds benchmark log text line by line with the same labels and
// field order the benchmark nodes write, so tests read as a scenario
// ("A connects at 0, subscribes at 1, B publishes at 10") rather than as
// separator-joined strings. [WriteLog] and [LogDir] put that text on
// disk for tests that exercise file discovery and the CLI.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package depends only on the standard library so that every
// package, including logparse itself, can use it in tests.
package testutil
