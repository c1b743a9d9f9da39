// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by the
// report exporter and the result store.
//
// Reports are written as JSON for people and scripts, and as CBOR for
// compact archival (the --export .cbor format and the report blob in
// the result store). The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2), so the same report always produces identical bytes
// and two archived runs can be compared by digest.
//
//	data, err := codec.Marshal(report)
//	err = codec.Unmarshal(data, &report)
//
// Report types carry only `json` struct tags. fxamacker/cbor reads
// `json` tags when `cbor` tags are absent, so one tag controls field
// naming and omitempty for both formats.
package codec
