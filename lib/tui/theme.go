// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for pbacbench's terminal output.
// All colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color

	// Severity colors for metric values.
	Good    lipgloss.Color
	Warning lipgloss.Color
	Bad     lipgloss.Color
}

// Severity grades a metric value.
type Severity int

const (
	SeverityGood Severity = iota
	SeverityWarning
	SeverityBad
)

// SeverityColor returns the color for a severity. Out-of-range values
// return NormalText.
func (theme Theme) SeverityColor(severity Severity) lipgloss.Color {
	switch severity {
	case SeverityGood:
		return theme.Good
	case SeverityWarning:
		return theme.Warning
	case SeverityBad:
		return theme.Bad
	default:
		return theme.NormalText
	}
}

// ErrorRateSeverity grades a rate where zero is ideal, such as a false
// accept rate: zero is good, anything up to warnAt is a warning, and
// above that is bad.
func ErrorRateSeverity(rate, warnAt float64) Severity {
	switch {
	case rate <= 0:
		return SeverityGood
	case rate <= warnAt:
		return SeverityWarning
	default:
		return SeverityBad
	}
}

// CompletenessSeverity grades a rate where one is ideal, such as
// operation coverage: one or more is good, at least warnAt is a
// warning, and below that is bad.
func CompletenessSeverity(rate, warnAt float64) Severity {
	switch {
	case rate >= 1:
		return SeverityGood
	case rate >= warnAt:
		return SeverityWarning
	default:
		return SeverityBad
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),

	Good:    lipgloss.Color("114"), // green
	Warning: lipgloss.Color("220"), // yellow/amber
	Bad:     lipgloss.Color("196"), // red
}
