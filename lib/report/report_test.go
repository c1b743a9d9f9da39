// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/pbacbench/lib/analysis"
	"github.com/bureau-foundation/pbacbench/lib/clock"
	"github.com/bureau-foundation/pbacbench/lib/codec"
	"github.com/bureau-foundation/pbacbench/lib/report"
	"github.com/bureau-foundation/pbacbench/lib/testutil"
)

var generated = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	logs := map[string]*testutil.Log{
		"broker": testutil.NewLog("broker").
			Seed(5).
			Method("PM_1").
			Resource("CPU_METRICS", 1, 9, 4, 2).
			Resource("MEM_METRICS", 100, 120, 110, 6),
		"clients": testutil.NewLog("clients").
			Seed(6).
			Method("PM_1").
			Connect(0, "A").
			Connect(0, "B").
			Subscribe(1, "A", "data/+", "billing", 3).
			Publish(10, "B", "data/x", "billing", 7).
			Receive(10.05, "A", "B", "data/x", 3, 7).
			Publish(11, "B", "data/x", "ads", 8).
			Receive(11.1, "A", "B", "data/x", 3, 8).
			Disconnect(100, "A"),
	}
	built, err := analysis.Run(context.Background(), testutil.LogDir(t, logs), analysis.Options{
		Clock: clock.Fake(generated),
		RunID: "run-42",
	})
	if err != nil {
		t.Fatalf("analysis.Run: %v", err)
	}
	return built
}

func TestBuildMetadata(t *testing.T) {
	built := sampleReport(t)

	if built.RunID != "run-42" {
		t.Errorf("run id = %q, want run-42", built.RunID)
	}
	if built.Method.Name != "PM_1" || built.Method.BrokerAssisted {
		t.Errorf("method = %+v, want direct PM_1", built.Method)
	}
	if got := built.MethodLabel(); got != "PM_1 (direct)" {
		t.Errorf("method label = %q", got)
	}
	if len(built.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(built.Files))
	}
	for _, file := range built.Files {
		if file.Digest.IsZero() {
			t.Errorf("file %s has no digest", file.Path)
		}
		if file.Seed == nil {
			t.Errorf("file %s has no seed", file.Path)
		}
	}
}

func TestBuildWithoutInputs(t *testing.T) {
	built := report.Build(report.Input{Clock: clock.Fake(generated)})
	if built.RunID == "" {
		t.Error("expected a generated run id")
	}
	if built.MethodLabel() != "(undeclared, treated as direct)" {
		t.Errorf("method label = %q", built.MethodLabel())
	}

	var buffer bytes.Buffer
	if err := report.WriteText(&buffer, built); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buffer.String(), "=== "+report.SectionCounts+" ===") {
		t.Errorf("text report without metrics lacks counts:\n%s", buffer.String())
	}
}

func TestWriteTextSectionOrder(t *testing.T) {
	var buffer bytes.Buffer
	if err := report.WriteText(&buffer, sampleReport(t)); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	text := buffer.String()

	previous := -1
	for _, section := range report.Sections {
		position := strings.Index(text, "=== "+section+" ===")
		if position < 0 {
			t.Fatalf("section %q missing from report:\n%s", section, text)
		}
		if position <= previous {
			t.Errorf("section %q at %d, want after %d", section, position, previous)
		}
		previous = position
	}

	for _, want := range []string{
		"run-42",
		"PM_1 (direct)",
		"Correctly matched:",
		"1 (50.00%)",
		"Improperly matched:",
		"50.000 ms",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestWriteKeyValue(t *testing.T) {
	var buffer bytes.Buffer
	if err := report.WriteKeyValue(&buffer, sampleReport(t)); err != nil {
		t.Fatalf("WriteKeyValue: %v", err)
	}

	records, err := csv.NewReader(&buffer).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(records) < 2 {
		t.Fatalf("got %d records, want header plus rows", len(records))
	}
	if strings.Join(records[0], ",") != "section,key,value" {
		t.Errorf("header = %v", records[0])
	}

	values := map[string]string{}
	for _, record := range records[1:] {
		if len(record) != 3 {
			t.Fatalf("record %v has %d columns, want 3", record, len(record))
		}
		values[record[0]+"|"+record[1]] = record[2]
	}
	checks := map[string]string{
		report.SectionRun + "|run_id":          "run-42",
		report.SectionRun + "|method":          "PM_1",
		report.SectionPBAC + "|correct":        "1",
		report.SectionPBAC + "|improper":       "1",
		report.SectionCounts + "|clients":      "2",
		report.SectionBroker + "|cpu_max":      "9.000000",
		report.SectionLatency + "|A/samples":   "2",
		report.SectionRun + "|broker_assisted": "false",
	}
	for key, want := range checks {
		if got := values[key]; got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buffer bytes.Buffer
	if err := report.WriteJSON(&buffer, sampleReport(t)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
	if decoded["run_id"] != "run-42" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
	files, ok := decoded["files"].([]any)
	if !ok || len(files) != 2 {
		t.Fatalf("files = %v", decoded["files"])
	}
	first := files[0].(map[string]any)
	if digestText, _ := first["digest"].(string); len(digestText) != 64 {
		t.Errorf("digest = %v, want 64 hex characters", first["digest"])
	}
}

func TestWriteCBOR(t *testing.T) {
	original := sampleReport(t)
	var buffer bytes.Buffer
	if err := report.WriteCBOR(&buffer, original); err != nil {
		t.Fatalf("WriteCBOR: %v", err)
	}

	var decoded report.Report
	if err := codec.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("codec.Unmarshal: %v", err)
	}
	if decoded.RunID != original.RunID {
		t.Errorf("run id = %q, want %q", decoded.RunID, original.RunID)
	}
	if decoded.Files[0].Digest != original.Files[0].Digest {
		t.Errorf("digest = %s, want %s", decoded.Files[0].Digest, original.Files[0].Digest)
	}
	if decoded.Metrics.PBAC.Aggregate != original.Metrics.PBAC.Aggregate {
		t.Errorf("pbac = %+v, want %+v", decoded.Metrics.PBAC.Aggregate, original.Metrics.PBAC.Aggregate)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    report.Format
		wantErr bool
	}{
		{"out.txt", report.FormatText, false},
		{"out.CSV", report.FormatKeyValue, false},
		{"dir/out.json", report.FormatJSON, false},
		{"out.cbor", report.FormatCBOR, false},
		{"out.xml", 0, true},
		{"out", 0, true},
	}
	for _, test := range tests {
		got, err := report.FormatFor(test.path)
		if (err != nil) != test.wantErr {
			t.Errorf("FormatFor(%q) error = %v, wantErr %v", test.path, err, test.wantErr)
			continue
		}
		if err == nil && got != test.want {
			t.Errorf("FormatFor(%q) = %s, want %s", test.path, got, test.want)
		}
	}
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	built := sampleReport(t)
	path := filepath.Join(t.TempDir(), "results.txt")

	exists, err := report.Exists(path)
	if err != nil || exists {
		t.Fatalf("Exists before write = %v, %v", exists, err)
	}
	if err := report.WriteFile(path, report.FormatText, built); err != nil {
		t.Fatalf("first WriteFile: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}

	err = report.WriteFile(path, report.FormatJSON, built)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("second WriteFile error = %v, want os.ErrExist", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("existing report was modified")
	}
	if exists, _ := report.Exists(path); !exists {
		t.Error("Exists after write = false")
	}
}

func TestRenderSummary(t *testing.T) {
	summary := report.RenderSummary(sampleReport(t), 60)
	for _, want := range []string{"run-42", "False accept", "50.00%", "Coverage"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
