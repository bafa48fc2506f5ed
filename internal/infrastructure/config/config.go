package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input" toml:"input"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Logging LogConfig     `yaml:"logging" toml:"logging"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// InputConfig controls how input paths are expanded.
type InputConfig struct {
	Pattern string `envconfig:"TRACE2JSON_INPUT_PATTERN" default:"*.log*" yaml:"pattern" toml:"pattern"`
}

// OutputConfig controls the trace sink.
type OutputConfig struct {
	Path        string `envconfig:"TRACE2JSON_OUTPUT" default:"-" yaml:"path" toml:"path"`
	Format      string `envconfig:"TRACE2JSON_OUTPUT_FORMAT" default:"json" yaml:"format" toml:"format"`
	Compression string `envconfig:"TRACE2JSON_OUTPUT_COMPRESSION" default:"auto" yaml:"compression" toml:"compression"`
	Pretty      bool   `envconfig:"TRACE2JSON_OUTPUT_PRETTY" default:"false" yaml:"pretty" toml:"pretty"`
}

// WindowConfig controls when open traces are emitted.
type WindowConfig struct {
	// ReadinessLag is how far the watermark must pass a root close time
	// before the trace is emitted. Zero means strictly before.
	ReadinessLag Duration `envconfig:"TRACE2JSON_READINESS_LAG" default:"0s" yaml:"readiness_lag" toml:"readiness_lag"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"TRACE2JSON_LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"TRACE2JSON_LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// MetricsConfig holds run metrics configuration.
type MetricsConfig struct {
	File string `envconfig:"TRACE2JSON_METRICS_FILE" yaml:"file" toml:"file"`
}

// Duration is a time.Duration read from "1m30s" style text.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var (
	formats      = []string{"json", "msgpack"}
	compressions = []string{"auto", "none", "gzip", "zstd"}
	levels       = []string{"debug", "info", "warn", "error"}
)

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile overlays a YAML or TOML file onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Pattern: "*.log*",
		},
		Output: OutputConfig{
			Path:        "-",
			Format:      "json",
			Compression: "auto",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate checks enumerated fields and ranges.
func (c *Config) Validate() error {
	if !oneOf(c.Output.Format, formats) {
		return fmt.Errorf("output format %q: want one of %s", c.Output.Format, strings.Join(formats, ", "))
	}
	if !oneOf(c.Output.Compression, compressions) {
		return fmt.Errorf("output compression %q: want one of %s", c.Output.Compression, strings.Join(compressions, ", "))
	}
	if !oneOf(c.Logging.Level, levels) {
		return fmt.Errorf("log level %q: want one of %s", c.Logging.Level, strings.Join(levels, ", "))
	}
	if c.Window.ReadinessLag < 0 {
		return fmt.Errorf("readiness lag %s must not be negative", c.Window.ReadinessLag.Std())
	}
	if c.Input.Pattern == "" {
		return fmt.Errorf("input pattern must not be empty")
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
