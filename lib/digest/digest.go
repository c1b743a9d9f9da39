// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest fingerprints benchmark input files with keyed BLAKE3.
//
// A report lists the digest of every log it was computed from, so two
// reports can be compared for "same input" without shipping the logs.
// Digests cover the bytes on disk: a compressed log and its
// decompressed form have different digests.
package digest

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// logDomainKey separates log-file digests from any other BLAKE3 use of
// the same bytes. The value is the ASCII domain name, zero-padded.
var logDomainKey = [32]byte{
	'p', 'b', 'a', 'c', 'b', 'e', 'n', 'c', 'h', '.', 'l', 'o', 'g', 'f', 'i', 'l',
	'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// String returns the full lowercase hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for display.
func (h Hash) Short() string {
	return h.String()[:12]
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalText implements encoding.TextMarshaler so hashes render as hex
// in JSON and CBOR exports.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, the inverse of
// MarshalText.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Parse decodes a full hex digest.
func Parse(text string) (Hash, error) {
	var h Hash
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return h, fmt.Errorf("digest: %w", err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("digest: got %d bytes, want %d", len(decoded), len(h))
	}
	copy(h[:], decoded)
	return h, nil
}

// Writer accumulates a digest over everything written to it.
type Writer struct {
	hasher hash.Hash
}

// NewWriter returns a Writer in the log-file domain.
func NewWriter() *Writer {
	hasher, err := blake3.NewKeyed(logDomainKey[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return &Writer{hasher: hasher}
}

func (w *Writer) Write(data []byte) (int, error) {
	return w.hasher.Write(data)
}

// Sum returns the digest of the bytes written so far.
func (w *Writer) Sum() Hash {
	var h Hash
	copy(h[:], w.hasher.Sum(nil))
	return h
}

// Bytes returns the digest of data.
func Bytes(data []byte) Hash {
	writer := NewWriter()
	writer.Write(data)
	return writer.Sum()
}

// File returns the digest of the file at path.
func File(path string) (Hash, error) {
	file, err := os.Open(path)
	if err != nil {
		return Hash{}, err
	}
	defer file.Close()

	writer := NewWriter()
	if _, err := io.Copy(writer, file); err != nil {
		return Hash{}, fmt.Errorf("digest: reading %s: %w", path, err)
	}
	return writer.Sum(), nil
}
