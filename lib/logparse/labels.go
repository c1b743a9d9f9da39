// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logparse

// DefaultSeparator joins the fields of a log line.
const DefaultSeparator = "@@"

// Line labels.
const (
	LabelSeed          = "SEED"
	LabelSetSeed       = "SET_SEED"
	LabelMethod        = "PM_METHOD"
	LabelSetMethod     = "SET_PURPOSE_MANAGEMENT_METHOD"
	LabelConnect       = "CONNECT"
	LabelDisconnect    = "DISCONNECT"
	LabelSubscribe     = "SUBSCRIBE"
	LabelPublish       = "PUBLISH"
	LabelPublishOp     = "PUBLISH_OP"
	LabelReceive       = "RECV"
	LabelReceiveOp     = "RECV_OP"
	LabelCPUMetrics    = "CPU_METRICS"
	LabelMemoryMetrics = "MEM_METRICS"
)

// arity is the number of fields after the label for every known label.
var arity = map[string]int{
	LabelSeed:          1,
	LabelSetSeed:       1,
	LabelMethod:        1,
	LabelSetMethod:     1,
	LabelConnect:       3,
	LabelDisconnect:    3,
	LabelSubscribe:     6,
	LabelPublish:       7,
	LabelPublishOp:     8,
	LabelReceive:       8,
	LabelReceiveOp:     10,
	LabelCPUMetrics:    4,
	LabelMemoryMetrics: 4,
}
