// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func TestCode(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantPrint bool
	}{
		{"nil", nil, 0, false},
		{"plain", errors.New("unknown command"), 1, true},
		{"coded", &exitError{code: 7, err: errors.New("bad line")}, 7, true},
		{"wrapped coded", fmt.Errorf("analyze: %w", &exitError{code: 10, err: errors.New("no logs")}), 10, true},
		{"silent", &exitError{code: 3}, 3, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, printable := Code(test.err)
			if code != test.wantCode || printable != test.wantPrint {
				t.Errorf("Code() = (%d, %v), want (%d, %v)", code, printable, test.wantCode, test.wantPrint)
			}
		})
	}
}

func TestReport(t *testing.T) {
	var buffer bytes.Buffer
	if code := report(&buffer, &exitError{code: 11, err: errors.New("output file exists")}); code != 11 {
		t.Errorf("code = %d, want 11", code)
	}
	if buffer.String() != "error: output file exists\n" {
		t.Errorf("stderr = %q", buffer.String())
	}

	buffer.Reset()
	if code := report(&buffer, &exitError{code: 2}); code != 2 {
		t.Errorf("code = %d, want 2", code)
	}
	if buffer.Len() != 0 {
		t.Errorf("silent error wrote %q", buffer.String())
	}
}
