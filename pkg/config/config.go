// Package config provides configuration structures and loading logic for oxy.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied before a file is read.
const (
	DefaultLogLevel    = "info"
	DefaultEvalTimeout = 10 * time.Millisecond
	DefaultMetricsPath = "/metrics"
	DefaultServiceName = "oxy"
	DefaultEntrypoint  = "oxy/decision"
)

// Config holds the global configuration for oxy.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" json:"logging" toml:"logging"`
	Evaluator EvaluatorConfig `yaml:"evaluator" json:"evaluator" toml:"evaluator"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics" toml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry" toml:"telemetry"`
	Policy    PolicyConfig    `yaml:"policy" json:"policy" toml:"policy"`

	// Vars are bound into the evaluator scope before any program runs.
	Vars map[string]any `yaml:"vars" json:"vars" toml:"vars"`
	// Script is run by `oxy watch` after every successful reload.
	Script string `yaml:"script" json:"script" toml:"script"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" toml:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty" toml:"pretty"`
}

// EvaluatorConfig bounds program evaluation.
type EvaluatorConfig struct {
	Timeout Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
}

// MetricsConfig holds the Prometheus listener settings. An empty address
// disables the listener.
type MetricsConfig struct {
	Address string `yaml:"address" json:"address" toml:"address"`
	Path    string `yaml:"path" json:"path" toml:"path"`
}

// TelemetryConfig holds configuration for OpenTelemetry.
type TelemetryConfig struct {
	OTLPEndpoint string            `yaml:"otlp_endpoint" json:"otlp_endpoint" toml:"otlp_endpoint"`
	Insecure     bool              `yaml:"insecure" json:"insecure" toml:"insecure"`
	ServiceName  string            `yaml:"service_name" json:"service_name" toml:"service_name"`
	Environment  string            `yaml:"environment" json:"environment" toml:"environment"`
	Headers      map[string]string `yaml:"headers" json:"headers" toml:"headers"`
}

// PolicyConfig names the Rego modules that gate evaluation results. No
// modules means every result is allowed.
type PolicyConfig struct {
	// Modules are file paths, resolved against the config file directory.
	Modules    []string `yaml:"modules" json:"modules" toml:"modules"`
	Entrypoint string   `yaml:"entrypoint" json:"entrypoint" toml:"entrypoint"`
}

// Enabled reports whether any policy module is configured.
func (c PolicyConfig) Enabled() bool { return len(c.Modules) > 0 }

// Duration is a time.Duration written as a Go duration string ("25ms").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Logging:   LoggingConfig{Level: DefaultLogLevel},
		Evaluator: EvaluatorConfig{Timeout: Duration(DefaultEvalTimeout)},
		Metrics:   MetricsConfig{Path: DefaultMetricsPath},
		Telemetry: TelemetryConfig{ServiceName: DefaultServiceName},
		Policy:    PolicyConfig{Entrypoint: DefaultEntrypoint},
	}
}

// Load reads configuration from a file and applies environment variable
// overrides. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		//nolint:gosec // Config file path is controlled by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.Policy.resolve(filepath.Dir(path))
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// decode picks the format from the file extension. Anything that is not
// .toml or .json is read as YAML, falling back to JSON.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".json":
		return json.Unmarshal(data, cfg)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("OXY_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("OXY_LOG_PRETTY"); val == "true" {
		cfg.Logging.Pretty = true
	}

	if val := os.Getenv("OXY_EVAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Evaluator.Timeout = Duration(d)
		} else if ms, err := strconv.Atoi(val); err == nil {
			cfg.Evaluator.Timeout = Duration(time.Duration(ms) * time.Millisecond)
		}
	}

	if val := os.Getenv("OXY_METRICS_ADDR"); val != "" {
		cfg.Metrics.Address = val
	}

	if val := os.Getenv("OXY_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("OXY_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}
}

// Validate performs comprehensive validation of the entire configuration
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}

	if err := c.Evaluator.Validate(); err != nil {
		return fmt.Errorf("evaluator configuration: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics configuration: %w", err)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry configuration: %w", err)
	}

	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy configuration: %w", err)
	}

	for name := range c.Vars {
		if !isIdentifier(name) {
			return fmt.Errorf("vars: %q is not a valid identifier", name)
		}
	}

	return nil
}

// Validate performs validation of logging configuration
func (c *LoggingConfig) Validate() error {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = DefaultLogLevel
	}

	level := strings.TrimSpace(strings.ToLower(c.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Level = level
		return nil
	default:
		return fmt.Errorf("invalid log level %q, supported levels: debug, info, warn, error", c.Level)
	}
}

// Validate performs validation of evaluator configuration
func (c *EvaluatorConfig) Validate() error {
	switch {
	case c.Timeout == 0:
		c.Timeout = Duration(DefaultEvalTimeout)
	case c.Timeout < 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout.Std())
	}
	return nil
}

// Validate performs validation of metrics configuration
func (c *MetricsConfig) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		c.Path = DefaultMetricsPath
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with /", c.Path)
	}
	return nil
}

// Validate performs validation of telemetry configuration
func (c *TelemetryConfig) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = DefaultServiceName
	}
	return nil
}

// Validate performs validation of policy configuration
func (c *PolicyConfig) Validate() error {
	c.Entrypoint = strings.Trim(strings.TrimSpace(c.Entrypoint), "/")
	if c.Entrypoint == "" {
		c.Entrypoint = DefaultEntrypoint
	}
	for i, m := range c.Modules {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("modules[%d] is empty", i)
		}
	}
	return nil
}

func (c *PolicyConfig) resolve(dir string) {
	for i, m := range c.Modules {
		if m != "" && !filepath.IsAbs(m) {
			c.Modules[i] = filepath.Join(dir, m)
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
