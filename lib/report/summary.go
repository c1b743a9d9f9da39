// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/pbacbench/lib/tui"
)

// Rates above these are shown as bad rather than as a warning.
const (
	summaryErrorRateWarn    = 0.01
	summaryCompletenessWarn = 0.9
)

// RenderSummary returns a short styled summary of the report for an
// interactive terminal, boxed to at most width columns. A width of
// zero leaves the box unconstrained.
func RenderSummary(report *Report, width int) string {
	return renderSummary(report, width, tui.DefaultTheme)
}

func renderSummary(report *Report, width int, theme tui.Theme) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)
	label := lipgloss.NewStyle().Foreground(theme.FaintText)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)
	graded := func(text string, severity tui.Severity) string {
		return lipgloss.NewStyle().Foreground(theme.SeverityColor(severity)).Render(text)
	}

	var lines []string
	row := func(name, rendered string) {
		lines = append(lines, label.Render(fmt.Sprintf("%-16s", name))+" "+rendered)
	}

	lines = append(lines, title.Render("pbacbench "+report.RunID))
	row("Method", value.Render(report.MethodLabel()))
	row("Clients", value.Render(fmt.Sprintf("%d", report.Counts.Clients)))
	row("Publications", value.Render(fmt.Sprintf("%d", report.Counts.Publications())))

	if result := report.Metrics; result != nil {
		row("Latency", value.Render(milliseconds(result.Latency.Mean)))
		row("Throughput", value.Render(fmt.Sprintf("%.2f msgs/sec", result.Throughput.Mean)))

		falseAccept := result.PBAC.Aggregate.FalseAcceptRate()
		falseReject := result.PBAC.Aggregate.FalseRejectRate()
		row("False accept", graded(percent(falseAccept), tui.ErrorRateSeverity(falseAccept, summaryErrorRateWarn)))
		row("False reject", graded(percent(falseReject), tui.ErrorRateSeverity(falseReject, summaryErrorRateWarn)))

		coverage := result.Coverage
		row("Coverage", graded(percent(coverage.MeanCoverage), tui.CompletenessSeverity(coverage.MeanCoverage, summaryCompletenessWarn)))
		row("Completion", graded(percent(coverage.MeanCompletion), tui.CompletenessSeverity(coverage.MeanCompletion, summaryCompletenessWarn)))

		anomalies := result.Anomalies.Total()
		severity := tui.SeverityGood
		if anomalies > 0 {
			severity = tui.SeverityWarning
		}
		row("Anomalies", graded(fmt.Sprintf("%d", anomalies), severity))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 1)
	if width > 0 {
		box = box.MaxWidth(width)
	}
	return box.Render(strings.Join(lines, "\n"))
}
