// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/pbacbench/lib/clock"
	"github.com/bureau-foundation/pbacbench/lib/config"
	"github.com/bureau-foundation/pbacbench/lib/resultstore"
	"github.com/bureau-foundation/pbacbench/lib/testutil"
)

var generated = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func benchmarkRun() map[string]*testutil.Log {
	return map[string]*testutil.Log{
		"node1": testutil.NewLog("node1").
			Seed(11).
			Method("PM_2").
			Connect(0, "A").
			Subscribe(1, "A", "data/+", "billing", 3).
			Receive(10.05, "A", "B", "data/x", 3, 7).
			Disconnect(100, "A"),
		"node2": testutil.NewLog("node2").
			Seed(22).
			Method("PM_2").
			Connect(0, "B").
			Publish(10, "B", "data/x", "billing", 7).
			Disconnect(100, "B"),
	}
}

// analyze runs the command with a fake clock, capturing stdout.
func analyze(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	var stdout bytes.Buffer
	command := newCommand(clock.Fake(generated), &stdout)
	err := command.ExecuteContext(context.Background(), args, slog.New(slog.DiscardHandler))
	return stdout.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

func TestAnalyzeWritesReport(t *testing.T) {
	logs := testutil.LogDir(t, benchmarkRun())
	outfile := filepath.Join(t.TempDir(), "report.txt")

	stdout, err := analyze(t, logs, "--outfile", outfile)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing without --summary on a pipe", stdout)
	}

	data, err := os.ReadFile(outfile)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	for _, want := range []string{"=== Run ===", "PM_2 (broker-assisted)", "=== PBAC Correctness ==="} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestAnalyzeDefaultReportName(t *testing.T) {
	logs := testutil.LogDir(t, benchmarkRun())
	output := t.TempDir()
	configPath := testutil.WriteLog(t, t.TempDir(), "pbacbench.yaml",
		"output:\n  directory: "+output+"\n  prefix: Nightly\n")

	if _, err := analyze(t, logs, "--config", configPath); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	want := filepath.Join(output, "Nightly_2026-03-01_12-00-00.txt")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("default report %s: %v", want, err)
	}
}

func TestAnalyzeExports(t *testing.T) {
	logs := testutil.LogDir(t, benchmarkRun())
	dir := t.TempDir()
	outfile := filepath.Join(dir, "report.txt")
	exportPath := filepath.Join(dir, "report.json")
	database := filepath.Join(dir, "results.db")
	textfile := filepath.Join(dir, "pbacbench.prom")

	stdout, err := analyze(t, logs,
		"--outfile", outfile,
		"--export", exportPath,
		"--db", database,
		"--prometheus-textfile", textfile,
		"--workers", "2",
		"--summary",
	)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	exported, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(exported), `"run_id"`) {
		t.Errorf("export is not the JSON report: %.80s", exported)
	}

	prom, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	if !strings.Contains(string(prom), "pbacbench_pbac_outcomes") {
		t.Errorf("textfile missing pbac outcomes:\n%s", prom)
	}

	store, err := resultstore.Open(resultstore.Config{Path: database})
	if err != nil {
		t.Fatalf("opening result store: %v", err)
	}
	defer store.Close()
	runs, err := store.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Method.Name != "PM_2" {
		t.Errorf("runs = %+v, want one PM_2 run", runs)
	}

	if !strings.Contains(stdout, "False accept") {
		t.Errorf("--summary printed %q, want the summary box", stdout)
	}
}

func TestAnalyzeExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) []string
		want  int
	}{
		{
			name: "no arguments",
			setup: func(t *testing.T) []string {
				return nil
			},
			want: 1,
		},
		{
			name: "negative workers",
			setup: func(t *testing.T) []string {
				return []string{testutil.LogDir(t, benchmarkRun()), "--workers", "-1"}
			},
			want: 1,
		},
		{
			name: "unknown export format",
			setup: func(t *testing.T) []string {
				return []string{testutil.LogDir(t, benchmarkRun()),
					"--outfile", filepath.Join(t.TempDir(), "r.txt"),
					"--export", filepath.Join(t.TempDir(), "r.xml")}
			},
			want: 1,
		},
		{
			name: "malformed config",
			setup: func(t *testing.T) []string {
				configPath := testutil.WriteLog(t, t.TempDir(), "bad.yaml", "logs: [unterminated\n")
				return []string{testutil.LogDir(t, benchmarkRun()), "--config", configPath}
			},
			want: ExitMalformedConfig,
		},
		{
			name: "missing config",
			setup: func(t *testing.T) []string {
				return []string{testutil.LogDir(t, benchmarkRun()), "--config", filepath.Join(t.TempDir(), "absent.yaml")}
			},
			want: ExitMalformedConfig,
		},
		{
			name: "malformed log",
			setup: func(t *testing.T) []string {
				logs := benchmarkRun()
				logs["node3"] = testutil.NewLog("node3").Raw("BOGUS@@1")
				return []string{testutil.LogDir(t, logs), "--outfile", filepath.Join(t.TempDir(), "r.txt")}
			},
			want: ExitMalformedLog,
		},
		{
			name: "conflicting methods",
			setup: func(t *testing.T) []string {
				logs := benchmarkRun()
				logs["node3"] = testutil.NewLog("node3").Method("PM_3")
				return []string{testutil.LogDir(t, logs), "--outfile", filepath.Join(t.TempDir(), "r.txt")}
			},
			want: ExitConflictingLogs,
		},
		{
			name: "duplicate publication",
			setup: func(t *testing.T) []string {
				logs := benchmarkRun()
				logs["node3"] = testutil.NewLog("node3").Publish(10, "B", "data/y", "billing", 7)
				return []string{testutil.LogDir(t, logs), "--outfile", filepath.Join(t.TempDir(), "r.txt")}
			},
			want: ExitConflictingLogs,
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) []string {
				return []string{filepath.Join(t.TempDir(), "absent"), "--outfile", filepath.Join(t.TempDir(), "r.txt")}
			},
			want: ExitNoLogs,
		},
		{
			name: "no log files",
			setup: func(t *testing.T) []string {
				dir := t.TempDir()
				testutil.WriteLog(t, dir, "README", "not a log\n")
				return []string{dir, "--outfile", filepath.Join(t.TempDir(), "r.txt")}
			},
			want: ExitNoLogs,
		},
		{
			name: "report exists",
			setup: func(t *testing.T) []string {
				outfile := testutil.WriteLog(t, t.TempDir(), "r.txt", "previous run\n")
				return []string{testutil.LogDir(t, benchmarkRun()), "--outfile", outfile}
			},
			want: ExitOutputExists,
		},
		{
			name: "export exists",
			setup: func(t *testing.T) []string {
				exportPath := testutil.WriteLog(t, t.TempDir(), "r.json", "{}\n")
				return []string{testutil.LogDir(t, benchmarkRun()),
					"--outfile", filepath.Join(t.TempDir(), "r.txt"),
					"--export", exportPath}
			},
			want: ExitOutputExists,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := analyze(t, test.setup(t)...)
			if got := exitCode(err); got != test.want {
				t.Errorf("exit code = %d (error %v), want %d", got, err, test.want)
			}
		})
	}
}

func TestAnalyzeLeavesExistingReportUntouched(t *testing.T) {
	outfile := testutil.WriteLog(t, t.TempDir(), "r.txt", "previous run\n")

	_, err := analyze(t, testutil.LogDir(t, benchmarkRun()), "--outfile", outfile)
	if exitCode(err) != ExitOutputExists {
		t.Fatalf("exit code = %d, want %d", exitCode(err), ExitOutputExists)
	}
	data, err := os.ReadFile(outfile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous run\n" {
		t.Errorf("report overwritten with %q", data)
	}
}

func TestExitCodeClassifiesWrappedErrors(t *testing.T) {
	if got := ExitCode(errors.New("disk on fire")); got != ExitUnexpected {
		t.Errorf("ExitCode(unclassified) = %d, want %d", got, ExitUnexpected)
	}
	wrapped := errors.Join(errors.New("writing report"), os.ErrExist)
	if got := ExitCode(wrapped); got != ExitOutputExists {
		t.Errorf("ExitCode(wrapped ErrExist) = %d, want %d", got, ExitOutputExists)
	}
}
