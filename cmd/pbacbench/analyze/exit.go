// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"errors"
	"os"

	"github.com/bureau-foundation/pbacbench/cmd/pbacbench/cli"
	"github.com/bureau-foundation/pbacbench/lib/logparse"
	"github.com/bureau-foundation/pbacbench/lib/timeline"
)

// Process exit codes. Usage errors exit with 1 through the command
// framework.
const (
	ExitMalformedConfig = 2
	ExitMalformedLog    = 7
	ExitConflictingLogs = 8
	ExitNoLogs          = 10
	ExitOutputExists    = 11
	ExitUnexpected      = 99
)

// ExitCode classifies an analysis failure.
func ExitCode(err error) int {
	var parseErr *logparse.Error
	var duplicate *timeline.DuplicatePublicationError
	switch {
	case errors.Is(err, logparse.ErrNoLogDirectory), errors.Is(err, logparse.ErrNoLogFiles):
		return ExitNoLogs
	case errors.As(err, &parseErr):
		if parseErr.Cause.Conflict() {
			return ExitConflictingLogs
		}
		return ExitMalformedLog
	case errors.As(err, &duplicate):
		return ExitConflictingLogs
	case errors.Is(err, os.ErrExist):
		return ExitOutputExists
	default:
		return ExitUnexpected
	}
}

func classify(err error) error {
	return cli.Exit(ExitCode(err), err)
}
