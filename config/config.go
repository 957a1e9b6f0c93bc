// Package config loads hub options from a TOML or YAML file.
//
//	# throwctx.toml
//	[capture]
//	error_id_key   = "error.id"
//	raise_site_key = "error.site"
//	max_fields     = 32
//	trace_source   = true
//
//	[metrics]
//	enabled   = true
//	namespace = "orders"
//
// Default matches a bare throwctx.NewHub(): error_id_key is empty, so no id key
// is merged unless the file names one.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	throwctx "github.com/xgx-io/xgx-throwctx"
	"github.com/xgx-io/xgx-throwctx/throwotel"
)

// EnvVar names the environment variable LoadFromEnv reads the path from.
const EnvVar = "THROWCTX_CONFIG"

// Config holds the complete capture configuration.
type Config struct {
	Capture CaptureConfig `toml:"capture" yaml:"capture"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// CaptureConfig mirrors the hub options.
type CaptureConfig struct {
	ErrorIDKey   string `toml:"error_id_key" yaml:"error_id_key"`
	RaiseSiteKey string `toml:"raise_site_key" yaml:"raise_site_key"`
	MaxFields    int    `toml:"max_fields" yaml:"max_fields"`
	Unwrap       bool   `toml:"unwrap" yaml:"unwrap"`
	RethrowFill  bool   `toml:"rethrow_fill" yaml:"rethrow_fill"`
	TraceSource  bool   `toml:"trace_source" yaml:"trace_source"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Metrics: MetricsConfig{Namespace: "throwctx"},
	}
}

// Load reads path, choosing the decoder by extension (.toml, .yaml, .yml).
// Missing keys keep their Default values.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by THROWCTX_CONFIG, falling back to
// ./throwctx.toml and ./throwctx.yaml. With nothing found it returns Default.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range []string{"./throwctx.toml", "./throwctx.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// Validate rejects values the hub cannot use.
func (c *Config) Validate() error {
	if c.Capture.MaxFields < 0 {
		return fmt.Errorf("capture.max_fields must be >= 0, got %d", c.Capture.MaxFields)
	}
	if c.Capture.ErrorIDKey != "" && c.Capture.ErrorIDKey == c.Capture.RaiseSiteKey {
		return fmt.Errorf("capture.error_id_key and capture.raise_site_key must differ (%q)", c.Capture.ErrorIDKey)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required when metrics are enabled")
	}
	return nil
}

// Options converts the capture section into hub options.
func (c *Config) Options() []throwctx.Option {
	opts := []throwctx.Option{
		throwctx.WithErrorIDKey(c.Capture.ErrorIDKey),
		throwctx.WithRaiseSite(c.Capture.RaiseSiteKey),
		throwctx.WithMaxFields(c.Capture.MaxFields),
		throwctx.WithUnwrap(c.Capture.Unwrap),
		throwctx.WithRethrowFill(c.Capture.RethrowFill),
	}
	if c.Capture.TraceSource {
		opts = append(opts, throwctx.WithSource(throwotel.SpanSource))
	}
	return opts
}
