// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint helper that turns the
// error returned by a command tree into a process exit. It is the one
// place outside the CLI commands that writes to stderr directly, since
// it runs after the structured logger has gone out of scope.
package process
