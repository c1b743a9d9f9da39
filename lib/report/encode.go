// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/pbacbench/lib/codec"
)

// Format selects a report encoding.
type Format int

const (
	FormatText Format = iota
	FormatKeyValue
	FormatJSON
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatKeyValue:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFor picks the format from a file extension: .txt, .csv, .json,
// or .cbor.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return FormatText, nil
	case ".csv":
		return FormatKeyValue, nil
	case ".json":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("cannot infer export format from %q (want .txt, .csv, .json, or .cbor)", path)
	}
}

// Write encodes report to w in the given format.
func Write(w io.Writer, format Format, report *Report) error {
	switch format {
	case FormatText:
		return WriteText(w, report)
	case FormatKeyValue:
		return WriteKeyValue(w, report)
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatCBOR:
		return WriteCBOR(w, report)
	default:
		return fmt.Errorf("unknown report format %s", format)
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// WriteCBOR writes the report as deterministic CBOR.
func WriteCBOR(w io.Writer, report *Report) error {
	return codec.NewEncoder(w).Encode(report)
}

// WriteFile creates path and writes report to it. An existing file is
// left untouched and the error wraps os.ErrExist. A partially written
// file is removed.
func WriteFile(path string, format Format, report *Report) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("closing report %s: %w", path, closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := Write(file, format, report); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing file, so callers can
// refuse an analysis before doing the work.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
