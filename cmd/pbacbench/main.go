// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/commands"
	"github.com/bureau-foundation/pbacbench/lib/process"
)

func main() {
	if err := run(); err != nil {
		// Classified failures carry their own exit code; anything else
		// is a usage error from the command framework.
		process.Exit(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root().ExecuteContext(ctx, os.Args[1:], nil)
}
