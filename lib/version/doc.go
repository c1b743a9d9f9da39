// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the pbacbench
// binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// These default to "unknown" / "0.1.0-dev" when not injected, which
// occurs during development builds and test runs. For example:
//
//	go build -ldflags "-X github.com/bureau-foundation/pbacbench/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// [Info], [Full], and [Short] format the variables for the version
// command. [Current] returns them as a [Build] for embedding in
// reports.
package version
