// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui holds the terminal styling shared by pbacbench's
// interactive output: the color theme and the rules that map a
// metric's value to a severity color.
//
// The analyzer has no full-screen viewer. Its only interactive output
// is the short summary printed after an analysis when stdout is a
// terminal; the report package renders that summary with this theme.
package tui
