// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError carries the process exit code for a failed command. When
// Err is nil the command has already written its own output and main
// exits without printing anything further; otherwise main prints Err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code. main checks for this interface on
// returned errors to distinguish a classified failure from a usage
// error.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Exit wraps err with an exit code. A nil err stays nil.
func Exit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}
