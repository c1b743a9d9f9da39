// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// coded is implemented by errors that carry their own exit code.
type coded interface {
	error
	ExitCode() int
}

// Code returns the exit code for err and whether its message should be
// printed. Errors without an exit code exit with 1. A coded error whose
// Unwrap returns nil has already written its own output.
func Code(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var withCode coded
	if !errors.As(err, &withCode) {
		return 1, true
	}
	if unwrapper, ok := withCode.(interface{ Unwrap() error }); ok && unwrapper.Unwrap() == nil {
		return withCode.ExitCode(), false
	}
	return withCode.ExitCode(), true
}

// Exit writes "error: err" to stderr when err should be reported and
// exits with its code. A nil err exits with 0.
func Exit(err error) {
	os.Exit(report(os.Stderr, err))
}

func report(w io.Writer, err error) int {
	code, printable := Code(err)
	if printable {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return code
}
