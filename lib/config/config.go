// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "PBACBENCH_CONFIG"

// Config is the master configuration for the analyzer.
type Config struct {
	// Logs configures input discovery and line format.
	Logs LogsConfig `yaml:"logs"`

	// Topics configures topic matching.
	Topics TopicsConfig `yaml:"topics"`

	// Purposes configures purpose handling.
	Purposes PurposesConfig `yaml:"purposes"`

	// Methods classifies purpose-management methods.
	Methods MethodsConfig `yaml:"methods"`

	// Analysis configures the correlation and metric passes.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Output configures the text report.
	Output OutputConfig `yaml:"output"`

	// Export configures optional machine-readable outputs.
	Export ExportConfig `yaml:"export"`
}

// LogsConfig configures log discovery.
type LogsConfig struct {
	// Separator joins the fields of a log line.
	Separator string `yaml:"separator"`

	// Extensions are the file suffixes treated as logs.
	Extensions []string `yaml:"extensions"`
}

// TopicsConfig configures the topic matcher.
type TopicsConfig struct {
	// System is the topic rights requests are published to when the
	// broker fans them out.
	System string `yaml:"system"`

	// Operational are the first levels of operational topics that
	// cross-link with the system topic.
	Operational []string `yaml:"operational"`

	// Response is the first level of operation-response topics.
	Response string `yaml:"response"`
}

// PurposesConfig configures purpose handling.
type PurposesConfig struct {
	// Operation is the purpose rights operations are published with.
	Operation string `yaml:"operation"`
}

// MethodsConfig classifies purpose-management methods.
type MethodsConfig struct {
	// Direct lists the methods (by logged name) under which clients
	// answer rights requests themselves. Every other method is
	// broker-assisted. A run that declares no method is treated as
	// direct.
	Direct []string `yaml:"direct"`
}

// AnalysisConfig configures the analysis passes.
type AnalysisConfig struct {
	// Workers bounds parse and correlation parallelism. Zero selects
	// GOMAXPROCS.
	Workers int `yaml:"workers"`

	// AnomalySamples is how many anomalies of each kind the report
	// lists.
	AnomalySamples int `yaml:"anomaly_samples"`
}

// OutputConfig configures the text report.
type OutputConfig struct {
	// Directory receives reports written under the default name.
	Directory string `yaml:"directory"`

	// Prefix starts the default report name; a UTC timestamp and
	// ".txt" follow.
	Prefix string `yaml:"prefix"`
}

// ExportConfig configures optional exports. Empty paths disable them.
type ExportConfig struct {
	// Database is a SQLite file that accumulates one row set per run.
	Database string `yaml:"database"`

	// PrometheusTextfile is written in the node_exporter textfile
	// collector format.
	PrometheusTextfile string `yaml:"prometheus_textfile"`

	// Influx configures the InfluxDB export.
	Influx InfluxConfig `yaml:"influx"`
}

// InfluxConfig configures the InfluxDB export. The export is enabled
// when URL is set.
type InfluxConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// Enabled reports whether the InfluxDB export is configured.
func (c InfluxConfig) Enabled() bool {
	return c.URL != ""
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logs: LogsConfig{
			Separator:  "@@",
			Extensions: []string{".log", ".log.zst", ".log.lz4"},
		},
		Topics: TopicsConfig{
			System:      "$OSYS",
			Operational: []string{"ON", "ONP", "OR", "ORS", "op_resp"},
			Response:    "op_resp",
		},
		Purposes: PurposesConfig{
			Operation: "DAP_op",
		},
		Methods: MethodsConfig{
			Direct: []string{"None", "Purpose-Encoding Topics", "PM_0", "PM_1"},
		},
		Analysis: AnalysisConfig{
			Workers:        0,
			AnomalySamples: 20,
		},
		Output: OutputConfig{
			Directory: ".",
			Prefix:    "BenchmarkResults",
		},
		Export: ExportConfig{
			Influx: InfluxConfig{
				Measurement: "pbac_benchmark",
			},
		},
	}
}

// Load loads configuration from the file named by PBACBENCH_CONFIG, or
// returns Default() if the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path over the
// defaults, expands variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile merges a single configuration file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so the yaml tags serve both once
		// comments and trailing commas are stripped. Compacting removes
		// tab indentation, which YAML rejects.
		var compact bytes.Buffer
		if err := json.Compact(&compact, jsonc.ToJSON(data)); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		data = compact.Bytes()
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Output.Directory = expandVars(c.Output.Directory, vars)
	c.Export.Database = expandVars(c.Export.Database, vars)
	c.Export.PrometheusTextfile = expandVars(c.Export.PrometheusTextfile, vars)
	c.Export.Influx.Token = expandVars(c.Export.Influx.Token, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Logs.Separator == "" {
		errs = append(errs, fmt.Errorf("logs.separator is required"))
	}
	if len(c.Logs.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("logs.extensions must list at least one suffix"))
	}
	for _, extension := range c.Logs.Extensions {
		if extension == "" {
			errs = append(errs, fmt.Errorf("logs.extensions contains an empty suffix"))
			break
		}
	}

	if c.Topics.System == "" {
		errs = append(errs, fmt.Errorf("topics.system is required"))
	}
	if strings.ContainsAny(c.Topics.System, "+#/") {
		errs = append(errs, fmt.Errorf("topics.system must be a single concrete topic level, got %q", c.Topics.System))
	}
	if len(c.Topics.Operational) == 0 {
		errs = append(errs, fmt.Errorf("topics.operational must list at least one prefix"))
	}
	if c.Topics.Response == "" {
		errs = append(errs, fmt.Errorf("topics.response is required"))
	}

	if c.Purposes.Operation == "" {
		errs = append(errs, fmt.Errorf("purposes.operation is required"))
	}

	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must not be negative"))
	}
	if c.Analysis.AnomalySamples < 0 {
		errs = append(errs, fmt.Errorf("analysis.anomaly_samples must not be negative"))
	}

	if c.Output.Prefix == "" {
		errs = append(errs, fmt.Errorf("output.prefix is required"))
	}

	if c.Export.Influx.Enabled() && c.Export.Influx.Bucket == "" {
		errs = append(errs, fmt.Errorf("export.influx.bucket is required when export.influx.url is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// BrokerAssisted reports whether method is a broker-assisted
// purpose-management method. An empty (undeclared) method is direct.
func (c *Config) BrokerAssisted(method string) bool {
	if method == "" {
		return false
	}
	return !slices.Contains(c.Methods.Direct, method)
}
