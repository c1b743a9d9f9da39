// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/cli"
	"github.com/bureau-foundation/pbacbench/lib/analysis"
	"github.com/bureau-foundation/pbacbench/lib/clock"
	"github.com/bureau-foundation/pbacbench/lib/config"
	"github.com/bureau-foundation/pbacbench/lib/resultstore"
	"github.com/bureau-foundation/pbacbench/lib/testutil"
)

var quiet = slog.New(slog.DiscardHandler)

// storeWithRuns analyzes a small run once per id and records each in a
// new store.
func storeWithRuns(t *testing.T, runIDs ...string) string {
	t.Helper()
	logs := testutil.LogDir(t, map[string]*testutil.Log{
		"node1": testutil.NewLog("node1").
			Method("PM_1").
			Connect(0, "A").
			Subscribe(1, "A", "data/+", "billing", 3).
			Receive(10.02, "A", "B", "data/x", 3, 7).
			Connect(0, "B").
			Publish(10, "B", "data/x", "billing", 7),
	})

	path := filepath.Join(t.TempDir(), "results.db")
	store, err := resultstore.Open(resultstore.Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	wallClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	for _, runID := range runIDs {
		analyzed, err := analysis.Run(context.Background(), logs, analysis.Options{Clock: wallClock, RunID: runID})
		if err != nil {
			t.Fatalf("analysis.Run: %v", err)
		}
		if err := store.Save(context.Background(), analyzed); err != nil {
			t.Fatalf("Save: %v", err)
		}
		wallClock.Advance(time.Hour)
	}
	return path
}

func execute(t *testing.T, command *cli.Command, args ...string) error {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	return command.ExecuteContext(context.Background(), args, quiet)
}

func TestList(t *testing.T) {
	path := storeWithRuns(t, "run-a", "run-b")

	var stdout bytes.Buffer
	if err := execute(t, listCommand(&stdout), "--db", path); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("list printed %d lines, want header and two runs:\n%s", len(lines), stdout.String())
	}
	if !strings.HasPrefix(lines[0], "RUN") || !strings.HasPrefix(lines[1], "run-a") || !strings.HasPrefix(lines[2], "run-b") {
		t.Errorf("list output out of order:\n%s", stdout.String())
	}
	if !strings.Contains(lines[1], "PM_1") {
		t.Errorf("list row %q missing the method", lines[1])
	}
}

func TestListJSON(t *testing.T) {
	path := storeWithRuns(t, "run-a")

	var stdout bytes.Buffer
	if err := execute(t, listCommand(&stdout), "--db", path, "--json"); err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []Entry
	if err := json.Unmarshal(stdout.Bytes(), &entries); err != nil {
		t.Fatalf("decoding %q: %v", stdout.String(), err)
	}
	if len(entries) != 1 || entries[0].RunID != "run-a" || entries[0].Method != "PM_1" || entries[0].BrokerAssisted {
		t.Errorf("entries = %+v, want one direct PM_1 run", entries)
	}
	if entries[0].Clients != 2 {
		t.Errorf("clients = %d, want 2", entries[0].Clients)
	}
}

func TestListDatabaseFromConfig(t *testing.T) {
	path := storeWithRuns(t, "run-a")
	configPath := testutil.WriteLog(t, t.TempDir(), "pbacbench.yaml", "export:\n  database: "+path+"\n")

	var stdout bytes.Buffer
	if err := execute(t, listCommand(&stdout), "--config", configPath, "--json"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout.String(), "run-a") {
		t.Errorf("list output %q missing run-a", stdout.String())
	}
}

func TestShow(t *testing.T) {
	path := storeWithRuns(t, "run-a")

	var stdout bytes.Buffer
	if err := execute(t, showCommand(&stdout), "--db", path, "run-a"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(stdout.String(), "=== PBAC Correctness ===") {
		t.Errorf("show printed:\n%s\nwant the text report", stdout.String())
	}

	stdout.Reset()
	if err := execute(t, showCommand(&stdout), "--db", path, "--format", "json", "run-a"); err != nil {
		t.Fatalf("show --format json: %v", err)
	}
	var decoded struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if decoded.RunID != "run-a" {
		t.Errorf("run id = %q, want run-a", decoded.RunID)
	}

	if err := execute(t, showCommand(&stdout), "--db", path, "--format", "xml", "run-a"); err == nil {
		t.Error("show with an unknown format succeeded")
	}
	err := execute(t, showCommand(&stdout), "--db", path, "run-zzz")
	if !errors.Is(err, resultstore.ErrRunNotFound) {
		t.Errorf("show of unknown run: got %v, want ErrRunNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	path := storeWithRuns(t, "run-a", "run-b")

	if err := execute(t, deleteCommand(), "--db", path, "run-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err := execute(t, deleteCommand(), "--db", path, "run-a", "run-b")
	if !errors.Is(err, resultstore.ErrRunNotFound) {
		t.Errorf("second delete of run-a: got %v, want ErrRunNotFound", err)
	}

	var stdout bytes.Buffer
	if err := execute(t, listCommand(&stdout), "--db", path, "--json"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "[]" {
		t.Errorf("runs after delete = %s, want []", stdout.String())
	}
}

func TestMissingStore(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.db")
	var stdout bytes.Buffer

	err := execute(t, listCommand(&stdout), "--db", missing)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("list on a missing store: got %v, want os.ErrNotExist", err)
	}
	if _, statErr := os.Stat(missing); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("list created the missing store")
	}

	if err := execute(t, listCommand(&stdout)); err == nil {
		t.Error("list without --db or export.database succeeded")
	}
}
