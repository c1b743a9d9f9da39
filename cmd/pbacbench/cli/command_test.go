// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

var quiet = slog.New(slog.DiscardHandler)

func execute(command *Command, args ...string) error {
	return command.ExecuteContext(context.Background(), args, quiet)
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "pbacbench",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(context.Context, []string, *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "analyze",
				Run: func(context.Context, []string, *slog.Logger) error {
					called = "analyze"
					return nil
				},
			},
		},
	}

	if err := execute(root, "analyze"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "analyze" {
		t.Errorf("dispatched to %q, want %q", called, "analyze")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "pbacbench",
		Subcommands: []*Command{
			{
				Name: "topic",
				Subcommands: []*Command{
					{
						Name: "match",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "topic match"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := execute(root, "topic", "match", "a/+", "a/b"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "topic match" {
		t.Errorf("dispatched to %q, want %q", called, "topic match")
	}
	if len(receivedArgs) != 2 || receivedArgs[0] != "a/+" || receivedArgs[1] != "a/b" {
		t.Errorf("args = %v, want [a/+ a/b]", receivedArgs)
	}
}

func TestCommand_Execute_PassesContextAndLogger(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	var gotValue any
	var gotLogger *slog.Logger
	command := &Command{
		Name: "analyze",
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			gotValue = ctx.Value(key{})
			gotLogger = logger
			return nil
		},
	}

	if err := command.ExecuteContext(ctx, nil, quiet); err != nil {
		t.Fatalf("ExecuteContext() error: %v", err)
	}
	if gotValue != "marker" {
		t.Errorf("context value = %v, want marker", gotValue)
	}
	if gotLogger != quiet {
		t.Error("Run did not receive the supplied logger")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var outfile string
	var directory string

	command := &Command{
		Name: "analyze",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.StringVar(&outfile, "outfile", "report.txt", "report path")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				directory = args[0]
			}
			return nil
		},
	}

	if err := execute(command, "--outfile", "/tmp/custom.txt", "logs"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if outfile != "/tmp/custom.txt" {
		t.Errorf("outfile = %q, want %q", outfile, "/tmp/custom.txt")
	}
	if directory != "logs" {
		t.Errorf("directory = %q, want %q", directory, "logs")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "analyze",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.Bool("summary", false, "print a summary")
			flagSet.String("outfile", "", "report path")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := execute(command, "--sumary")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --summary") {
		t.Errorf("error = %q, want suggestion for '--summary'", errStr)
	}
	if !strings.Contains(errStr, "sumary") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "analyze",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.Bool("summary", false, "print a summary")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := execute(command, "--zzzzzzzzz")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "pbacbench",
		Subcommands: []*Command{
			{Name: "analyze"},
			{Name: "purpose"},
			{Name: "version"},
		},
	}

	err := execute(root, "analyse")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"analyze\"") {
		t.Errorf("error = %q, want suggestion for 'analyze'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "pbacbench",
		Subcommands: []*Command{
			{Name: "analyze"},
			{Name: "purpose"},
		},
	}

	err := execute(root, "zzzzzzz")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "pbacbench",
				Summary: "benchmark log analysis",
				Subcommands: []*Command{
					{Name: "analyze", Summary: "Analyze a log directory"},
				},
			}

			if err := execute(root, helpArg); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "pbacbench",
		Subcommands: []*Command{
			{Name: "analyze", Summary: "Analyze a log directory"},
		},
	}

	err := execute(root)
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_Execute_RunErrorPassesThrough(t *testing.T) {
	want := &ExitError{Code: 10}
	command := &Command{
		Name: "analyze",
		Run: func(context.Context, []string, *slog.Logger) error {
			return want
		},
	}

	if err := execute(command); err != want {
		t.Errorf("Execute() = %v, want %v", err, want)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "pbacbench",
		Description: "Offline analysis of PBAC benchmark logs.",
		Subcommands: []*Command{
			{Name: "analyze", Summary: "Analyze a log directory"},
			{Name: "topic", Summary: "Inspect topic filter matching"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Analyze one benchmark run",
				Command:     "pbacbench analyze ./logs",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Offline analysis of PBAC benchmark logs.",
		"Usage:",
		"pbacbench <command> [flags]",
		"Commands:",
		"analyze",
		"Analyze a log directory",
		"Inspect topic filter matching",
		"Examples:",
		"# Analyze one benchmark run",
		"pbacbench analyze ./logs",
		"Run 'pbacbench <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "analyze",
		Summary: "Analyze a log directory",
		Usage:   "pbacbench analyze <log-directory> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.String("outfile", "", "text report path")
			flagSet.Bool("summary", false, "print a summary box")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"pbacbench analyze <log-directory> [flags]",
		"Flags:",
		"--outfile",
		"text report path",
		"--summary",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	var name string
	leaf := &Command{Name: "expand"}
	leaf.Run = func(context.Context, []string, *slog.Logger) error {
		name = leaf.fullName()
		return nil
	}
	root := &Command{
		Name:        "pbacbench",
		Subcommands: []*Command{{Name: "purpose", Subcommands: []*Command{leaf}}},
	}

	if err := execute(root, "purpose", "expand"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if name != "pbacbench purpose expand" {
		t.Errorf("fullName() = %q, want %q", name, "pbacbench purpose expand")
	}
}
