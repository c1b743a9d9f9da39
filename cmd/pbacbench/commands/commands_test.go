// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/cli"
	"github.com/bureau-foundation/pbacbench/lib/version"
)

// TestCommandTreeDocumented walks the production command tree and checks
// that every command can describe itself in its parent's help listing.
func TestCommandTreeDocumented(t *testing.T) {
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", strings.Join(path, " "))
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor Subcommands", strings.Join(path, " "))
		}
		if command.Flags != nil {
			// FlagsFromParams panics on a bad params struct.
			command.Flags()
		}
	})
}

func TestRootNames(t *testing.T) {
	var names []string
	for _, command := range Root().Subcommands {
		names = append(names, command.Name)
	}
	got := strings.Join(names, " ")
	if got != "analyze runs purpose topic version" {
		t.Errorf("subcommands = %q", got)
	}
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	quiet := slog.New(slog.DiscardHandler)

	if err := versionCommand(&stdout).ExecuteContext(context.Background(), nil, quiet); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "pbacbench "+version.Info()) {
		t.Errorf("version printed %q", stdout.String())
	}

	stdout.Reset()
	if err := versionCommand(&stdout).ExecuteContext(context.Background(), []string{"--json"}, quiet); err != nil {
		t.Fatalf("version --json: %v", err)
	}
	var build version.Build
	if err := json.Unmarshal(stdout.Bytes(), &build); err != nil {
		t.Fatalf("decoding %q: %v", stdout.String(), err)
	}
	if build != version.Current() {
		t.Errorf("build = %+v, want %+v", build, version.Current())
	}
}

func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
