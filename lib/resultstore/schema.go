// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultstore

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	generated         TEXT NOT NULL,
	directory         TEXT NOT NULL,
	method            TEXT NOT NULL,
	broker_assisted   INTEGER NOT NULL,
	analyzer_version  TEXT NOT NULL,
	files             INTEGER NOT NULL,
	clients           INTEGER NOT NULL,
	publications      INTEGER NOT NULL,
	receptions        INTEGER NOT NULL,
	mean_latency      REAL NOT NULL,
	mean_throughput   REAL NOT NULL,
	correct           INTEGER NOT NULL,
	improper          INTEGER NOT NULL,
	not_matched       INTEGER NOT NULL,
	false_accept_rate REAL NOT NULL,
	false_reject_rate REAL NOT NULL,
	mean_coverage     REAL NOT NULL,
	mean_completion   REAL NOT NULL,
	anomalies         INTEGER NOT NULL,
	report            BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_by_generated ON runs (generated);

CREATE TABLE IF NOT EXISTS input_files (
	run_id TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
	path   TEXT NOT NULL,
	seed   INTEGER,
	lines  INTEGER NOT NULL,
	events INTEGER NOT NULL,
	digest TEXT NOT NULL,
	PRIMARY KEY (run_id, path)
);

CREATE TABLE IF NOT EXISTS client_metrics (
	run_id          TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
	client          TEXT NOT NULL,
	latency_samples INTEGER NOT NULL,
	mean_latency    REAL NOT NULL,
	messages        INTEGER NOT NULL,
	mean_throughput REAL NOT NULL,
	peak_throughput INTEGER NOT NULL,
	correct         INTEGER NOT NULL,
	improper        INTEGER NOT NULL,
	not_matched     INTEGER NOT NULL,
	PRIMARY KEY (run_id, client)
);

CREATE TABLE IF NOT EXISTS requests (
	run_id                TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
	requester             TEXT NOT NULL,
	timestamp             REAL NOT NULL,
	correlation_id        INTEGER NOT NULL,
	op_type               TEXT NOT NULL,
	category              TEXT NOT NULL,
	topic                 TEXT NOT NULL,
	subscribers_expected  INTEGER NOT NULL,
	subscribers_contacted INTEGER NOT NULL,
	unexpected            INTEGER NOT NULL,
	responses_expected    INTEGER NOT NULL,
	responses_received    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS requests_by_run ON requests (run_id);

CREATE TABLE IF NOT EXISTS anomalies (
	run_id TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
	kind   TEXT NOT NULL,
	count  INTEGER NOT NULL,
	PRIMARY KEY (run_id, kind)
);
`
