// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for pbacbench.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function receiving a context and a logger.
// Commands are assembled into a tree in cmd/pbacbench/commands and
// dispatched via [Command.ExecuteContext], which handles flag parsing,
// subcommand routing, and help output with examples.
//
// Parameter structs declare flags with struct tags and are bound by
// [FlagsFromParams]. Embedding [JSONOutput] adds --json.
//
// When a user types an unknown subcommand or flag, the framework
// suggests the closest known name within an edit distance of three.
//
// Commands report classified failures as [ExitError] values; main
// exits with their code. Any other error is a usage error.
package cli
