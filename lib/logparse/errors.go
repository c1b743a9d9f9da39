// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logparse

import (
	"errors"
	"fmt"
)

// ErrNoLogDirectory is returned when the log root does not exist or is
// not a directory.
var ErrNoLogDirectory = errors.New("log directory not found")

// ErrNoLogFiles is returned when the log root holds no file with a
// recognized extension.
var ErrNoLogFiles = errors.New("no log files found")

// Cause classifies a fatal parse error.
type Cause int

const (
	CauseRead Cause = iota + 1
	CauseUnknownLabel
	CauseArity
	CauseNumber
	CauseLiteral
	CauseCategory
	CauseDuplicateSeed
	CauseConflictingMethod
)

func (c Cause) String() string {
	switch c {
	case CauseRead:
		return "read error"
	case CauseUnknownLabel:
		return "unknown label"
	case CauseArity:
		return "wrong field count"
	case CauseNumber:
		return "invalid number"
	case CauseLiteral:
		return "unexpected literal"
	case CauseCategory:
		return "invalid operation category"
	case CauseDuplicateSeed:
		return "duplicate seed"
	case CauseConflictingMethod:
		return "conflicting purpose-management method"
	default:
		return fmt.Sprintf("cause(%d)", int(c))
	}
}

// Conflict reports whether the cause is a disagreement between log
// files (as opposed to a malformed line within one file).
func (c Cause) Conflict() bool {
	return c == CauseConflictingMethod
}

// Error is a fatal parse error. Line is zero for errors that are not
// attributable to a single line.
type Error struct {
	Cause Cause
	Path  string
	Line  int
	Text  string
	Err   error
}

func (e *Error) Error() string {
	location := e.Path
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	message := fmt.Sprintf("%s: %s", location, e.Cause)
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	if e.Text != "" {
		message += fmt.Sprintf(" (line %q)", truncate(e.Text, 120))
	}
	return message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "…"
}
