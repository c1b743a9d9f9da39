// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteLog writes content to dir/name, creating intermediate
// directories, and returns the full path.
func WriteLog(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// LogDir creates a temporary directory holding one "<node>.log" file per
// entry in logs and returns the directory.
func LogDir(t testing.TB, logs map[string]*Log) string {
	t.Helper()
	dir := t.TempDir()
	for node, log := range logs {
		WriteLog(t, dir, node+".log", log.String())
	}
	return dir
}
