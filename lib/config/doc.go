// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the pbacbench
// analyzer.
//
// Every setting has a default (see [Default]) that matches the
// benchmark's own conventions, so an analysis runs without any file.
// A configuration file is selected by either the PBACBENCH_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]); values in the file replace the defaults field by field.
// There is no automatic file search.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed; anything else is YAML. Both use the same
// field names.
//
// After loading, ${VAR} and ${VAR:-default} patterns are expanded in
// output paths and in the InfluxDB token, so secrets can stay in the
// environment. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Logs, Topics, Purposes, Methods,
//     Analysis, Output, Export
//   - [Default] -- returns a Config with benchmark defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.BrokerAssisted] -- classifies a purpose-management method as
//     broker-assisted or direct
//
// This package depends on no other pbacbench packages.
package config
