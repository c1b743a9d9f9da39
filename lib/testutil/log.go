// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strconv"
	"strings"
)

const separator = "@@"

// Log accumulates log lines for one benchmark node. Methods return the
// receiver so scenarios can be chained.
type Log struct {
	node  string
	lines []string
}

// NewLog starts a log for the given node identifier.
func NewLog(node string) *Log {
	return &Log{node: node}
}

func formatTime(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func formatInt(value int64) string {
	return strconv.FormatInt(value, 10)
}

func (l *Log) add(fields ...string) *Log {
	l.lines = append(l.lines, strings.Join(fields, separator))
	return l
}

// Raw appends a line verbatim.
func (l *Log) Raw(line string) *Log {
	l.lines = append(l.lines, line)
	return l
}

// Seed appends a SEED declaration.
func (l *Log) Seed(seed int64) *Log {
	return l.add("SEED", formatInt(seed))
}

// Method appends a PM_METHOD declaration.
func (l *Log) Method(method string) *Log {
	return l.add("PM_METHOD", method)
}

// Connect appends a CONNECT line.
func (l *Log) Connect(at float64, client string) *Log {
	return l.add("CONNECT", formatTime(at), l.node, client)
}

// Disconnect appends a DISCONNECT line.
func (l *Log) Disconnect(at float64, client string) *Log {
	return l.add("DISCONNECT", formatTime(at), l.node, client)
}

// Subscribe appends a SUBSCRIBE line.
func (l *Log) Subscribe(at float64, client, topicFilter, purposeFilter string, subscriptionID int64) *Log {
	return l.add("SUBSCRIBE", formatTime(at), l.node, client, topicFilter, purposeFilter, formatInt(subscriptionID))
}

// Publish appends a data PUBLISH line.
func (l *Log) Publish(at float64, client, topic, purpose string, correlationID int64) *Log {
	return l.add("PUBLISH", formatTime(at), l.node, client, topic, purpose, "DATA", formatInt(correlationID))
}

// PublishOp appends a PUBLISH_OP line.
func (l *Log) PublishOp(at float64, client, topic, purpose, opType, category string, correlationID int64) *Log {
	return l.add("PUBLISH_OP", formatTime(at), l.node, client, topic, purpose, opType, category, formatInt(correlationID))
}

// Receive appends a data RECV line.
func (l *Log) Receive(at float64, receiver, sender, topic string, subscriptionID, correlationID int64) *Log {
	return l.add("RECV", formatTime(at), l.node, receiver, sender, topic, formatInt(subscriptionID), "DATA", formatInt(correlationID))
}

// ReceiveOp appends a RECV_OP line.
func (l *Log) ReceiveOp(at float64, receiver, sender, topic string, subscriptionID int64, opType, category, status string, correlationID int64) *Log {
	return l.add("RECV_OP", formatTime(at), l.node, receiver, sender, topic, formatInt(subscriptionID), opType, category, status, formatInt(correlationID))
}

// Resource appends a CPU_METRICS or MEM_METRICS line.
func (l *Log) Resource(label string, minimum, maximum, average, variance float64) *Log {
	return l.add(label, formatTime(minimum), formatTime(maximum), formatTime(average), formatTime(variance))
}

// String returns the log text, one line per record, newline-terminated.
func (l *Log) String() string {
	if len(l.lines) == 0 {
		return ""
	}
	return strings.Join(l.lines, "\n") + "\n"
}
