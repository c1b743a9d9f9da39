// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the
// result store.
//
// It wraps zombiezen.com/go/sqlite with the defaults an archive of
// benchmark results wants: WAL journal mode so a reader can list runs
// while another analysis is saving, FULL synchronous so a saved run
// survives power loss, foreign keys enforced so deleting a run removes
// its rows, and a busy timeout for concurrent writers.
//
// Callers [Pool.Take] a connection, perform work, and [Pool.Put] it
// back, or use [Pool.With] for the common take-use-put shape.
// Connections are NOT safe for concurrent use.
//
// # Pragmas
//
// Every connection in the pool is initialized with:
//
//   - journal_mode=WAL
//   - synchronous=FULL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - temp_store=MEMORY
//
// After the pragmas, [Config.Schema] is executed as a script on each
// new connection, so it must be idempotent (CREATE ... IF NOT EXISTS).
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "results.db",
//	    Schema: schema,
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.With(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, "SELECT ...", nil)
//	})
package sqlitepool
