// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/pbacbench/lib/metrics"
)

// Section titles, in report order.
const (
	SectionRun        = "Run"
	SectionCounts     = "Overall Counts"
	SectionLatency    = "Latency"
	SectionThroughput = "Throughput"
	SectionPBAC       = "PBAC Correctness"
	SectionCoverage   = "Operation Coverage"
	SectionAnomalies  = "Anomalies"
	SectionBroker     = "Broker Resources"
)

// Sections lists the text report's sections in order.
var Sections = []string{
	SectionRun,
	SectionCounts,
	SectionLatency,
	SectionThroughput,
	SectionPBAC,
	SectionCoverage,
	SectionAnomalies,
	SectionBroker,
}

// WriteText writes the human-readable report.
func WriteText(w io.Writer, report *Report) error {
	var buffer bytes.Buffer
	text := &textRenderer{buffer: &buffer}

	text.run(report)
	text.counts(report)
	if report.Metrics != nil {
		text.latency(report.Metrics.Latency)
		text.throughput(report.Metrics.Throughput)
		text.pbac(report.Metrics.PBAC)
		text.coverage(report.Metrics.Coverage)
		text.anomalies(report.Metrics.Anomalies)
		text.broker(report.Metrics.Broker)
	}

	_, err := w.Write(buffer.Bytes())
	return err
}

type textRenderer struct {
	buffer *bytes.Buffer
}

func (t *textRenderer) heading(title string) {
	if t.buffer.Len() > 0 {
		t.buffer.WriteByte('\n')
	}
	fmt.Fprintf(t.buffer, "=== %s ===\n", title)
}

func (t *textRenderer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(t.buffer, 2, 0, 3, ' ', 0)
}

func (t *textRenderer) run(report *Report) {
	t.heading(SectionRun)
	fields := t.table()
	fmt.Fprintf(fields, "Run ID:\t%s\n", report.RunID)
	fmt.Fprintf(fields, "Generated:\t%s\n", report.Generated.Format(time.RFC3339))
	fmt.Fprintf(fields, "Analyzer:\t%s (%s)\n", report.Build.Version, report.Build.Commit)
	fmt.Fprintf(fields, "Log directory:\t%s\n", report.Directory)
	fmt.Fprintf(fields, "Purpose management:\t%s\n", report.MethodLabel())
	fields.Flush()

	if len(report.Files) == 0 {
		return
	}
	t.buffer.WriteString("\nFiles:\n")
	files := t.table()
	fmt.Fprintf(files, "  PATH\tSEED\tLINES\tEVENTS\tDIGEST\n")
	for _, file := range report.Files {
		seed := "-"
		if file.Seed != nil {
			seed = strconv.FormatInt(*file.Seed, 10)
		}
		fmt.Fprintf(files, "  %s\t%s\t%d\t%d\t%s\n", file.Path, seed, file.Lines, file.Events, file.Digest.Short())
	}
	files.Flush()
}

func (t *textRenderer) counts(report *Report) {
	t.heading(SectionCounts)
	counts := report.Counts
	fields := t.table()
	fmt.Fprintf(fields, "Clients:\t%d\n", counts.Clients)
	fmt.Fprintf(fields, "Connects:\t%d\n", counts.Connects)
	fmt.Fprintf(fields, "Disconnects:\t%d\n", counts.Disconnects)
	fmt.Fprintf(fields, "Subscriptions:\t%d\n", counts.Subscriptions)
	fmt.Fprintf(fields, "Data publications:\t%d\n", counts.DataPublications)
	fmt.Fprintf(fields, "Operation publications:\t%d\n", counts.OperationPublications)
	fmt.Fprintf(fields, "Data receptions:\t%d\n", counts.DataReceptions)
	fmt.Fprintf(fields, "Operation receptions:\t%d\n", counts.OperationReceptions)
	fmt.Fprintf(fields, "Unjoined receptions:\t%d\n", report.Orphans)
	if report.Metrics != nil {
		messaging := report.Metrics.Messaging
		fmt.Fprintf(fields, "Publish rate:\t%.2f msgs/sec\n", messaging.PublishRate)
		fmt.Fprintf(fields, "Mean header size:\t%.2f bytes\n", messaging.MeanHeaderBytes)
	}
	fields.Flush()
}

func (t *textRenderer) latency(latency metrics.LatencyResult) {
	t.heading(SectionLatency)
	fields := t.table()
	fmt.Fprintf(fields, "Mean (per-client):\t%s\n", milliseconds(latency.Mean))
	fmt.Fprintf(fields, "Samples:\t%d\n", latency.Pooled.Count)
	if latency.Pooled.Count > 0 {
		fmt.Fprintf(fields, "Pooled mean:\t%s\n", milliseconds(latency.Pooled.Mean()))
		fmt.Fprintf(fields, "Min:\t%s\n", milliseconds(latency.Pooled.Min))
		fmt.Fprintf(fields, "Max:\t%s\n", milliseconds(latency.Pooled.Max))
		fmt.Fprintf(fields, "Std dev:\t%s\n", milliseconds(latency.Pooled.StdDev()))
	}
	fmt.Fprintf(fields, "Negative (clock skew):\t%d\n", latency.Negative)
	fields.Flush()

	if len(latency.Clients) == 0 {
		return
	}
	t.buffer.WriteString("\nPer client:\n")
	clients := t.table()
	fmt.Fprintf(clients, "  CLIENT\tSAMPLES\tMEAN\tMIN\tMAX\tSTD DEV\n")
	for _, client := range latency.Clients {
		fmt.Fprintf(clients, "  %s\t%d\t%s\t%s\t%s\t%s\n",
			client.Client, client.Count,
			milliseconds(client.Mean()), milliseconds(client.Min),
			milliseconds(client.Max), milliseconds(client.StdDev()))
	}
	clients.Flush()
}

func (t *textRenderer) throughput(throughput metrics.ThroughputResult) {
	t.heading(SectionThroughput)
	fields := t.table()
	fmt.Fprintf(fields, "Mean (per-client):\t%.2f msgs/sec\n", throughput.Mean)
	fmt.Fprintf(fields, "Peak second:\t%d msgs\n", throughput.Peak)
	fields.Flush()

	if len(throughput.Clients) == 0 {
		return
	}
	t.buffer.WriteString("\nPer client:\n")
	clients := t.table()
	fmt.Fprintf(clients, "  CLIENT\tMESSAGES\tSECONDS\tMEAN\tPEAK\n")
	for _, client := range throughput.Clients {
		fmt.Fprintf(clients, "  %s\t%d\t%d\t%.2f\t%d\n",
			client.Client, client.Messages, client.Span, client.Mean, client.Peak)
	}
	clients.Flush()
}

func (t *textRenderer) pbac(pbac metrics.PBACResult) {
	t.heading(SectionPBAC)
	aggregate := pbac.Aggregate
	fields := t.table()
	fmt.Fprintf(fields, "Publications evaluated:\t%d\n", pbac.Publications)
	fmt.Fprintf(fields, "Publications skipped:\t%d\n", pbac.Skipped)
	fmt.Fprintf(fields, "Correctly matched:\t%s\n", withPercent(aggregate.Correct, aggregate.Received))
	fmt.Fprintf(fields, "Improperly matched:\t%s\n", withPercent(aggregate.Improper, aggregate.Received))
	fmt.Fprintf(fields, "Not matched:\t%s\n", withPercent(aggregate.NotMatched, aggregate.Expected))
	fmt.Fprintf(fields, "Received:\t%d\n", aggregate.Received)
	fmt.Fprintf(fields, "Expected:\t%d\n", aggregate.Expected)
	fmt.Fprintf(fields, "Duplicate deliveries:\t%d\n", aggregate.Duplicates)
	fmt.Fprintf(fields, "False accept rate:\t%s\n", percent(aggregate.FalseAcceptRate()))
	fmt.Fprintf(fields, "False reject rate:\t%s\n", percent(aggregate.FalseRejectRate()))
	fields.Flush()

	if len(pbac.Clients) == 0 {
		return
	}
	t.buffer.WriteString("\nPer client:\n")
	clients := t.table()
	fmt.Fprintf(clients, "  CLIENT\tCORRECT\tIMPROPER\tNOT MATCHED\tFALSE ACCEPT\tFALSE REJECT\n")
	for _, client := range pbac.Clients {
		fmt.Fprintf(clients, "  %s\t%d\t%d\t%d\t%s\t%s\n",
			client.Client, client.Correct, client.Improper, client.NotMatched,
			percent(client.FalseAcceptRate()), percent(client.FalseRejectRate()))
	}
	clients.Flush()
}

func (t *textRenderer) coverage(coverage metrics.CoverageResult) {
	t.heading(SectionCoverage)
	fields := t.table()
	fmt.Fprintf(fields, "Requests:\t%d\n", len(coverage.Requests))
	fmt.Fprintf(fields, "Mean coverage:\t%s\n", percent(coverage.MeanCoverage))
	fmt.Fprintf(fields, "Mean completion:\t%s\n", percent(coverage.MeanCompletion))
	fmt.Fprintf(fields, "Subscribers contacted:\t%d of %d\n", coverage.SubscribersContacted, coverage.SubscribersExpected)
	fmt.Fprintf(fields, "Responses received:\t%d of %d\n", coverage.ResponsesReceived, coverage.ResponsesExpected)
	fields.Flush()

	if len(coverage.ByOperation) > 0 {
		t.buffer.WriteString("\nBy operation:\n")
		operations := t.table()
		fmt.Fprintf(operations, "  OPERATION\tCATEGORY\tREQUESTS\tCOVERED\tCOMPLETED\n")
		for _, operation := range coverage.ByOperation {
			fmt.Fprintf(operations, "  %s\t%s\t%d\t%d\t%d\n",
				operation.OpType, operation.Category, operation.Requests, operation.Covered, operation.Completed)
		}
		operations.Flush()
	}

	if len(coverage.Requests) > 0 {
		t.buffer.WriteString("\nRequests:\n")
		requests := t.table()
		fmt.Fprintf(requests, "  REQUESTER\tTIME\tCORR\tOPERATION\tTOPIC\tSUBSCRIBERS\tRESPONSES\tUNEXPECTED\n")
		for _, request := range coverage.Requests {
			fmt.Fprintf(requests, "  %s\t%.3f\t%d\t%s/%s\t%s\t%d/%d\t%d/%d\t%d\n",
				request.Key.Client, request.Key.Timestamp, request.Key.CorrelationID,
				request.OpType, request.Category, request.Topic,
				request.SubscribersContacted, request.SubscribersExpected,
				request.ResponsesReceived, request.ResponsesExpected,
				request.Unexpected)
		}
		requests.Flush()
	}
}

func (t *textRenderer) anomalies(anomalies metrics.Anomalies) {
	t.heading(SectionAnomalies)
	if anomalies.Total() == 0 {
		t.buffer.WriteString("None.\n")
		return
	}
	fields := t.table()
	for _, count := range anomalies.Counts {
		fmt.Fprintf(fields, "%s:\t%d\n", count.Kind, count.Count)
	}
	fields.Flush()

	if len(anomalies.Samples) == 0 {
		return
	}
	t.buffer.WriteString("\nExamples:\n")
	for _, sample := range anomalies.Samples {
		client := sample.Client
		if client == "" {
			client = "-"
		}
		fmt.Fprintf(t.buffer, "  [%s] %s t=%.3f %s\n", sample.Kind, client, sample.Timestamp,
			strings.ReplaceAll(sample.Detail, "\n", " "))
	}
}

func (t *textRenderer) broker(broker metrics.BrokerResources) {
	t.heading(SectionBroker)
	if broker.CPU.Samples == 0 && broker.Memory.Samples == 0 {
		t.buffer.WriteString("No resource samples.\n")
		return
	}
	fields := t.table()
	fmt.Fprintf(fields, "  \tSAMPLES\tMIN\tMAX\tAVG\tVARIANCE\n")
	fmt.Fprintf(fields, "  CPU (%%)\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
		broker.CPU.Samples, broker.CPU.Min, broker.CPU.Max, broker.CPU.Avg, broker.CPU.Variance)
	fmt.Fprintf(fields, "  Memory (MB)\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
		broker.Memory.Samples, broker.Memory.Min, broker.Memory.Max, broker.Memory.Avg, broker.Memory.Variance)
	fields.Flush()
}

func milliseconds(seconds float64) string {
	return fmt.Sprintf("%.3f ms", seconds*1000)
}

func percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// withPercent renders "n (p%)" where p is n's share of total, or just n
// when total is zero.
func withPercent(n, total int) string {
	if total == 0 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%d (%s)", n, percent(float64(n)/float64(total)))
}
