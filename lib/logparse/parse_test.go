// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/pbacbench/lib/event"
	"github.com/bureau-foundation/pbacbench/lib/testutil"
)

func TestParseAllLabels(t *testing.T) {
	log := testutil.NewLog("node-1").
		Seed(42).
		Method("Per-Message Declaration").
		Connect(0, "A").
		Subscribe(1, "A", "data/+", "{billing,ads}", 3).
		Publish(10, "B", "data/x", "billing", 7).
		PublishOp(11, "B", "$OSYS", "DAP_op", "erase", "C2", 8).
		Receive(10.05, "A", "B", "data/x", 3, 7).
		ReceiveOp(11.5, "B", "broker", "op_resp/B", 0, "erase", "C2", "OK", 8).
		Resource("CPU_METRICS", 1, 9, 4.5, 2.25).
		Resource("MEM_METRICS", 100, 200, 150, 10).
		Disconnect(100, "A")

	file, err := Parse("node-1.log", strings.NewReader(log.String()), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !file.HasSeed || file.Seed != 42 {
		t.Errorf("seed = %d (set %v), want 42", file.Seed, file.HasSeed)
	}
	if file.Method != "Per-Message Declaration" {
		t.Errorf("method = %q", file.Method)
	}
	if file.Lines != 11 {
		t.Errorf("lines = %d, want 11", file.Lines)
	}
	if len(file.Events) != 7 {
		t.Fatalf("events = %d, want 7", len(file.Events))
	}
	if len(file.CPU) != 1 || file.CPU[0].Avg != 4.5 {
		t.Errorf("CPU samples = %+v", file.CPU)
	}
	if len(file.Memory) != 1 || file.Memory[0].Max != 200 {
		t.Errorf("memory samples = %+v", file.Memory)
	}

	subscribe, ok := file.Events[1].(*event.Subscribe)
	if !ok {
		t.Fatalf("event 1 is %T, want *event.Subscribe", file.Events[1])
	}
	if subscribe.TopicFilter != "data/+" || subscribe.PurposeFilter != "{billing,ads}" || subscribe.SubscriptionID != 3 {
		t.Errorf("subscribe = %+v", subscribe)
	}
	if subscribe.Source.Line != 4 || subscribe.Node != "node-1" {
		t.Errorf("subscribe source = %v node = %q", subscribe.Source, subscribe.Node)
	}

	operation, ok := file.Events[3].(*event.Publish)
	if !ok {
		t.Fatalf("event 3 is %T, want *event.Publish", file.Events[3])
	}
	if operation.Message != event.Operation("erase", event.CategoryC2) || operation.CorrelationID != 8 {
		t.Errorf("publish op = %+v", operation)
	}

	receive, ok := file.Events[4].(*event.Receive)
	if !ok {
		t.Fatalf("event 4 is %T, want *event.Receive", file.Events[4])
	}
	if receive.Receiver != "A" || receive.Sender != "B" || !receive.Message.IsData() || receive.Timestamp != 10.05 {
		t.Errorf("receive = %+v", receive)
	}

	receiveOp := file.Events[5].(*event.Receive)
	if receiveOp.OpStatus != "OK" || receiveOp.Message.OpType != "erase" {
		t.Errorf("receive op = %+v", receiveOp)
	}
}

func TestParseAliases(t *testing.T) {
	text := "SET_SEED@@7\nSET_PURPOSE_MANAGEMENT_METHOD@@None\n"
	file, err := Parse("alias.log", strings.NewReader(text), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if file.Seed != 7 || file.Method != "None" {
		t.Errorf("seed = %d method = %q", file.Seed, file.Method)
	}
}

func TestParseSkipsBlankLinesAndCarriageReturns(t *testing.T) {
	text := "\nCONNECT@@1@@n@@A\r\n\n   \nDISCONNECT@@2@@n@@A\r\n"
	file, err := Parse("crlf.log", strings.NewReader(text), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(file.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(file.Events))
	}
	if got := file.Events[0].(*event.Connect).Client; got != "A" {
		t.Errorf("client = %q, want A", got)
	}
	if got := file.Events[1].Head().Source.Line; got != 5 {
		t.Errorf("second event line = %d, want 5", got)
	}
}

func TestParseCustomSeparator(t *testing.T) {
	file, err := Parse("pipe.log", strings.NewReader("CONNECT|1.5|n|A\n"), "|")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := file.Events[0].Head().Timestamp; got != 1.5 {
		t.Errorf("timestamp = %v, want 1.5", got)
	}
}

func TestParseFatalCauses(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		cause Cause
		line  int
	}{
		{"unknown label", "CONNECT@@1@@n@@A\nHELLO@@1\n", CauseUnknownLabel, 2},
		{"lowercase label", "connect@@1@@n@@A\n", CauseUnknownLabel, 1},
		{"too few fields", "CONNECT@@1@@n\n", CauseArity, 1},
		{"too many fields", "PUBLISH@@1@@n@@A@@t@@p@@DATA@@7@@extra\n", CauseArity, 1},
		{"bad timestamp", "CONNECT@@soon@@n@@A\n", CauseNumber, 1},
		{"infinite timestamp", "CONNECT@@Inf@@n@@A\n", CauseNumber, 1},
		{"bad correlation id", "PUBLISH@@1@@n@@A@@t@@p@@DATA@@seven\n", CauseNumber, 1},
		{"bad subscription id", "SUBSCRIBE@@1@@n@@A@@t@@p@@x\n", CauseNumber, 1},
		{"bad seed", "SEED@@abc\n", CauseNumber, 1},
		{"bad resource", "CPU_METRICS@@1@@2@@x@@4\n", CauseNumber, 1},
		{"publish without DATA", "PUBLISH@@1@@n@@A@@t@@p@@OP@@7\n", CauseLiteral, 1},
		{"receive without DATA", "RECV@@1@@n@@A@@B@@t@@3@@data@@7\n", CauseLiteral, 1},
		{"bad category", "PUBLISH_OP@@1@@n@@A@@t@@p@@erase@@C9@@7\n", CauseCategory, 1},
		{"duplicate seed", "SEED@@1\nCONNECT@@1@@n@@A\nSEED@@1\n", CauseDuplicateSeed, 3},
		{"conflicting method in one file", "PM_METHOD@@None\nPM_METHOD@@Per-Message Declaration\n", CauseConflictingMethod, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse("bad.log", strings.NewReader(test.text), "")
			var parseErr *Error
			if !errors.As(err, &parseErr) {
				t.Fatalf("Parse error = %v, want *Error", err)
			}
			if parseErr.Cause != test.cause {
				t.Errorf("cause = %s, want %s", parseErr.Cause, test.cause)
			}
			if parseErr.Line != test.line {
				t.Errorf("line = %d, want %d", parseErr.Line, test.line)
			}
			if parseErr.Path != "bad.log" {
				t.Errorf("path = %q", parseErr.Path)
			}
		})
	}
}

func TestParseRepeatedIdenticalMethodIsAccepted(t *testing.T) {
	text := "PM_METHOD@@None\nPM_METHOD@@None\n"
	if _, err := Parse("same.log", strings.NewReader(text), ""); err != nil {
		t.Errorf("Parse: %v", err)
	}
}

func TestErrorMessageIncludesPosition(t *testing.T) {
	_, err := Parse("node-3.log", strings.NewReader("BOGUS\n"), "")
	if err == nil {
		t.Fatal("expected error")
	}
	message := err.Error()
	if !strings.Contains(message, "node-3.log:1") || !strings.Contains(message, "unknown label") {
		t.Errorf("error message %q lacks position or cause", message)
	}
}
