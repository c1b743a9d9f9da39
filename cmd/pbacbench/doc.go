// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// pbacbench analyzes the logs of a PBAC MQTT benchmark run.
//
// Usage:
//
//	pbacbench analyze <log-directory> [--outfile PATH] [--config PATH]
//	    [--export PATH] [--db PATH] [--prometheus-textfile PATH]
//	    [--workers N] [--summary]
//	pbacbench runs list|show|delete [--db PATH]
//	pbacbench purpose expand <filter>...
//	pbacbench purpose describes <filter> <purpose>
//	pbacbench topic match <filter> <topic>
//	pbacbench version
//
// Exit codes:
//
//	0   success
//	1   bad arguments
//	2   malformed configuration
//	7   malformed log file
//	8   conflicting log files
//	10  missing log directory or no log files
//	11  output file exists
//	99  unexpected failure
package main
