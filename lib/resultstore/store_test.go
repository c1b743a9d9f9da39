// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/pbacbench/lib/analysis"
	"github.com/bureau-foundation/pbacbench/lib/clock"
	"github.com/bureau-foundation/pbacbench/lib/report"
	"github.com/bureau-foundation/pbacbench/lib/testutil"
)

func analyze(t *testing.T, runID string, generated time.Time) *report.Report {
	t.Helper()
	logs := map[string]*testutil.Log{
		"node": testutil.NewLog("node").
			Seed(3).
			Method("PM_2").
			Connect(0, "A").
			Connect(0, "B").
			Connect(0, "R").
			Subscribe(1, "A", "data/+", "billing", 3).
			Subscribe(1, "R", "op_resp/R", "DAP_op", 9).
			Publish(10, "B", "data/x", "billing", 7).
			Receive(10.05, "A", "B", "data/x", 3, 7).
			PublishOp(20, "R", "$OSYS/data/x", "DAP_op", "ORS", "C1", 50).
			ReceiveOp(20.2, "R", "broker", "op_resp/R", 9, "ORS", "C1", "OK", 50),
	}
	built, err := analysis.Run(context.Background(), testutil.LogDir(t, logs), analysis.Options{
		Clock: clock.Fake(generated),
		RunID: runID,
	})
	if err != nil {
		t.Fatalf("analysis.Run: %v", err)
	}
	return built
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "results.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func countRows(t *testing.T, store *Store, table, runID string) int {
	t.Helper()
	var count int
	err := store.pool.With(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT COUNT(*) FROM "+table+" WHERE run_id = ?", &sqlitex.ExecOptions{
			Args: []any{runID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				count = stmt.ColumnInt(0)
				return nil
			},
		})
	})
	if err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return count
}

func TestSaveAndReport(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	generated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	saved := analyze(t, "run-a", generated)

	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Report(ctx, "run-a")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if loaded.RunID != "run-a" || loaded.Method != saved.Method {
		t.Errorf("loaded = %s %+v, want run-a %+v", loaded.RunID, loaded.Method, saved.Method)
	}
	if loaded.Generated.Unix() != generated.Unix() {
		t.Errorf("generated = %v, want %v", loaded.Generated, generated)
	}
	if loaded.Metrics.PBAC.Aggregate != saved.Metrics.PBAC.Aggregate {
		t.Errorf("pbac = %+v, want %+v", loaded.Metrics.PBAC.Aggregate, saved.Metrics.PBAC.Aggregate)
	}
	if len(loaded.Metrics.Coverage.Requests) != len(saved.Metrics.Coverage.Requests) {
		t.Errorf("requests = %d, want %d", len(loaded.Metrics.Coverage.Requests), len(saved.Metrics.Coverage.Requests))
	}

	if got := countRows(t, store, "input_files", "run-a"); got != 1 {
		t.Errorf("input_files rows = %d, want 1", got)
	}
	var correct, samples int
	err = store.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT correct, latency_samples FROM client_metrics WHERE run_id = ? AND client = ?", &sqlitex.ExecOptions{
			Args: []any{"run-a", "A"},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				correct = stmt.ColumnInt(0)
				samples = stmt.ColumnInt(1)
				return nil
			},
		})
	})
	if err != nil {
		t.Fatalf("reading client A: %v", err)
	}
	if correct != 1 || samples != 1 {
		t.Errorf("client A correct=%d samples=%d, want 1 and 1", correct, samples)
	}
	if got := countRows(t, store, "requests", "run-a"); got != len(saved.Metrics.Coverage.Requests) {
		t.Errorf("requests rows = %d, want %d", got, len(saved.Metrics.Coverage.Requests))
	}
}

func TestSaveRejectsDuplicateRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	saved := analyze(t, "run-a", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	err := store.Save(ctx, saved)
	if !errors.Is(err, ErrRunExists) {
		t.Fatalf("second Save error = %v, want ErrRunExists", err)
	}
	if got := countRows(t, store, "input_files", "run-a"); got != 1 {
		t.Errorf("input_files rows after rejected save = %d, want 1", got)
	}
}

func TestSaveRequiresMetrics(t *testing.T) {
	store := openStore(t)
	if err := store.Save(context.Background(), &report.Report{RunID: "empty"}); err == nil {
		t.Error("expected Save to reject a report without metrics")
	}
}

func TestRunsOrderedByGeneration(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	later := analyze(t, "run-late", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	earlier := analyze(t, "run-early", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	for _, saved := range []*report.Report{later, earlier} {
		if err := store.Save(ctx, saved); err != nil {
			t.Fatalf("Save %s: %v", saved.RunID, err)
		}
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "run-early" || runs[1].RunID != "run-late" {
		t.Errorf("order = %s, %s; want run-early, run-late", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].Method.Name != "PM_2" || !runs[0].Method.BrokerAssisted {
		t.Errorf("method = %+v, want broker-assisted PM_2", runs[0].Method)
	}
	if runs[0].Clients != 3 {
		t.Errorf("clients = %d, want 3", runs[0].Clients)
	}
}

func TestDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, analyze(t, "run-a", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(ctx, "run-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, table := range []string{"input_files", "client_metrics", "requests", "anomalies"} {
		if got := countRows(t, store, table, "run-a"); got != 0 {
			t.Errorf("%s rows after delete = %d, want 0", table, got)
		}
	}

	if err := store.Delete(ctx, "run-a"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("second Delete error = %v, want ErrRunNotFound", err)
	}
	if _, err := store.Report(ctx, "run-a"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Report error = %v, want ErrRunNotFound", err)
	}
}
