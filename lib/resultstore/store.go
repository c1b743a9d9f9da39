// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/pbacbench/lib/codec"
	"github.com/bureau-foundation/pbacbench/lib/metrics"
	"github.com/bureau-foundation/pbacbench/lib/report"
	"github.com/bureau-foundation/pbacbench/lib/sqlitepool"
)

// ErrRunExists is returned by Save when the run id is already stored.
var ErrRunExists = errors.New("run already stored")

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Config configures Open.
type Config struct {
	// Path is the database file, created if missing.
	Path string

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Store is an archive of analysis reports.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// RunSummary is the headline of one stored run.
type RunSummary struct {
	RunID           string
	Generated       time.Time
	Directory       string
	Method          metrics.Method
	Files           int
	Clients         int
	MeanLatency     float64
	FalseAcceptRate float64
	FalseRejectRate float64
	MeanCoverage    float64
	Anomalies       int
}

// Open opens or creates a store.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Logger: logger,
		Schema: schema,
	})
	if err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Save writes one report.
func (s *Store) Save(ctx context.Context, saved *report.Report) (err error) {
	if saved.Metrics == nil {
		return fmt.Errorf("result store: report %s has no metrics", saved.RunID)
	}
	blob, err := codec.Marshal(saved)
	if err != nil {
		return fmt.Errorf("result store: encoding report: %w", err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("result store: save: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("result store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	exists, err := runExists(conn, saved.RunID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("result store: %w: %s", ErrRunExists, saved.RunID)
	}

	if err = insertRun(conn, saved, blob); err != nil {
		return err
	}
	if err = insertFiles(conn, saved); err != nil {
		return err
	}
	if err = insertClients(conn, saved); err != nil {
		return err
	}
	if err = insertRequests(conn, saved); err != nil {
		return err
	}
	if err = insertAnomalies(conn, saved); err != nil {
		return err
	}

	s.logger.Info("run saved",
		"run_id", saved.RunID,
		"path", s.pool.Path(),
		"requests", len(saved.Metrics.Coverage.Requests),
	)
	return nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	var runs []RunSummary
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT
				run_id, generated, directory, method, broker_assisted, files,
				clients, mean_latency, false_accept_rate, false_reject_rate,
				mean_coverage, anomalies
			FROM runs ORDER BY generated, run_id`,
			&sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					generated, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(1))
					if err != nil {
						return fmt.Errorf("run %s: generated: %w", stmt.ColumnText(0), err)
					}
					runs = append(runs, RunSummary{
						RunID:     stmt.ColumnText(0),
						Generated: generated,
						Directory: stmt.ColumnText(2),
						Method: metrics.Method{
							Name:           stmt.ColumnText(3),
							BrokerAssisted: stmt.ColumnInt(4) != 0,
						},
						Files:           stmt.ColumnInt(5),
						Clients:         stmt.ColumnInt(6),
						MeanLatency:     stmt.ColumnFloat(7),
						FalseAcceptRate: stmt.ColumnFloat(8),
						FalseRejectRate: stmt.ColumnFloat(9),
						MeanCoverage:    stmt.ColumnFloat(10),
						Anomalies:       stmt.ColumnInt(11),
					})
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("result store: listing runs: %w", err)
	}
	return runs, nil
}

// Report decodes the full report of a stored run.
func (s *Store) Report(ctx context.Context, runID string) (*report.Report, error) {
	var blob []byte
	found := false
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT report FROM runs WHERE run_id = ?", &sqlitex.ExecOptions{
			Args: []any{runID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				blob = make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, blob)
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("result store: reading run %s: %w", runID, err)
	}
	if !found {
		return nil, fmt.Errorf("result store: %w: %s", ErrRunNotFound, runID)
	}

	var decoded report.Report
	if err := codec.Unmarshal(blob, &decoded); err != nil {
		return nil, fmt.Errorf("result store: decoding run %s: %w", runID, err)
	}
	return &decoded, nil
}

// Delete removes a run and its detail rows.
func (s *Store) Delete(ctx context.Context, runID string) error {
	return s.pool.With(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "DELETE FROM runs WHERE run_id = ?", &sqlitex.ExecOptions{
			Args: []any{runID},
		}); err != nil {
			return fmt.Errorf("result store: deleting run %s: %w", runID, err)
		}
		if conn.Changes() == 0 {
			return fmt.Errorf("result store: %w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}

func runExists(conn *sqlite.Conn, runID string) (bool, error) {
	exists := false
	err := sqlitex.Execute(conn, "SELECT 1 FROM runs WHERE run_id = ?", &sqlitex.ExecOptions{
		Args: []any{runID},
		ResultFunc: func(*sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("result store: checking run %s: %w", runID, err)
	}
	return exists, nil
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func insertRun(conn *sqlite.Conn, saved *report.Report, blob []byte) error {
	result := saved.Metrics
	err := sqlitex.Execute(conn, `INSERT INTO runs
		(run_id, generated, directory, method, broker_assisted, analyzer_version,
		 files, clients, publications, receptions, mean_latency, mean_throughput,
		 correct, improper, not_matched, false_accept_rate, false_reject_rate,
		 mean_coverage, mean_completion, anomalies, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				saved.RunID,
				saved.Generated.UTC().Format(time.RFC3339Nano),
				saved.Directory,
				saved.Method.Name,
				boolInt(saved.Method.BrokerAssisted),
				saved.Build.Version,
				len(saved.Files),
				saved.Counts.Clients,
				saved.Counts.Publications(),
				saved.Counts.Receptions(),
				result.Latency.Mean,
				result.Throughput.Mean,
				result.PBAC.Aggregate.Correct,
				result.PBAC.Aggregate.Improper,
				result.PBAC.Aggregate.NotMatched,
				result.PBAC.Aggregate.FalseAcceptRate(),
				result.PBAC.Aggregate.FalseRejectRate(),
				result.Coverage.MeanCoverage,
				result.Coverage.MeanCompletion,
				result.Anomalies.Total(),
				blob,
			},
		})
	if err != nil {
		return fmt.Errorf("result store: insert run: %w", err)
	}
	return nil
}

func insertFiles(conn *sqlite.Conn, saved *report.Report) error {
	for _, file := range saved.Files {
		var seed any
		if file.Seed != nil {
			seed = *file.Seed
		}
		err := sqlitex.Execute(conn, `INSERT INTO input_files
			(run_id, path, seed, lines, events, digest) VALUES (?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{saved.RunID, file.Path, seed, file.Lines, file.Events, file.Digest.String()},
			})
		if err != nil {
			return fmt.Errorf("result store: insert file %s: %w", file.Path, err)
		}
	}
	return nil
}

// clientRow joins the per-client results of the three engines.
type clientRow struct {
	latencySamples int
	meanLatency    float64
	messages       int
	meanThroughput float64
	peak           int
	tally          metrics.Tally
}

func insertClients(conn *sqlite.Conn, saved *report.Report) error {
	rows := make(map[string]*clientRow)
	var order []string
	row := func(client string) *clientRow {
		entry, ok := rows[client]
		if !ok {
			entry = &clientRow{}
			rows[client] = entry
			order = append(order, client)
		}
		return entry
	}

	result := saved.Metrics
	for _, client := range result.Latency.Clients {
		entry := row(client.Client)
		entry.latencySamples = client.Count
		entry.meanLatency = client.Mean()
	}
	for _, client := range result.Throughput.Clients {
		entry := row(client.Client)
		entry.messages = client.Messages
		entry.meanThroughput = client.Mean
		entry.peak = client.Peak
	}
	for _, client := range result.PBAC.Clients {
		row(client.Client).tally = client.Tally
	}

	for _, client := range order {
		entry := rows[client]
		err := sqlitex.Execute(conn, `INSERT INTO client_metrics
			(run_id, client, latency_samples, mean_latency, messages, mean_throughput,
			 peak_throughput, correct, improper, not_matched)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					saved.RunID, client,
					entry.latencySamples, entry.meanLatency,
					entry.messages, entry.meanThroughput, entry.peak,
					entry.tally.Correct, entry.tally.Improper, entry.tally.NotMatched,
				},
			})
		if err != nil {
			return fmt.Errorf("result store: insert client %s: %w", client, err)
		}
	}
	return nil
}

func insertRequests(conn *sqlite.Conn, saved *report.Report) error {
	for _, request := range saved.Metrics.Coverage.Requests {
		err := sqlitex.Execute(conn, `INSERT INTO requests
			(run_id, requester, timestamp, correlation_id, op_type, category, topic,
			 subscribers_expected, subscribers_contacted, unexpected,
			 responses_expected, responses_received)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					saved.RunID,
					request.Key.Client, request.Key.Timestamp, request.Key.CorrelationID,
					request.OpType, string(request.Category), request.Topic,
					request.SubscribersExpected, request.SubscribersContacted, request.Unexpected,
					request.ResponsesExpected, request.ResponsesReceived,
				},
			})
		if err != nil {
			return fmt.Errorf("result store: insert request %s: %w", request.Key, err)
		}
	}
	return nil
}

func insertAnomalies(conn *sqlite.Conn, saved *report.Report) error {
	for _, count := range saved.Metrics.Anomalies.Counts {
		err := sqlitex.Execute(conn, "INSERT INTO anomalies (run_id, kind, count) VALUES (?, ?, ?)",
			&sqlitex.ExecOptions{
				Args: []any{saved.RunID, string(count.Kind), count.Count},
			})
		if err != nil {
			return fmt.Errorf("result store: insert anomaly count %s: %w", count.Kind, err)
		}
	}
	return nil
}
