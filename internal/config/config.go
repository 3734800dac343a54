// Package config provides configuration types, defaults, and loading for
// vicut, grounded on internal/config's viper-based layered loading (flag >
// env > config file > default).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	viperlib "github.com/spf13/viper"
)

// Config holds all configuration options for vicut.
type Config struct {
	// DefaultRegister is read from the config file and environment but is
	// not consulted anywhere else: field capture never writes a register,
	// and a script's "put" uses the unnamed register unless a
	// "set register" directive names another.
	DefaultRegister string `mapstructure:"default_register"`

	// OutputMode selects the default formatter when -o is not given on the
	// command line: "raw", "delimited", "json", "yaml", or "template".
	OutputMode string `mapstructure:"output_mode"`

	// Delimiter is the default field/record separator for the "delimited"
	// output mode.
	Delimiter string `mapstructure:"delimiter"`

	// Workers is the default fan-out worker pool size for --per-line and
	// multi-file invocations. 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers"`

	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// LogConfig holds structured-logging configuration.
type LogConfig struct {
	// Path is the destination file for structured logs. Empty disables
	// file logging.
	Path string `mapstructure:"path"`

	// Level gates which severities are written: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
}

// TracingConfig gates OpenTelemetry span export, per SPEC_FULL.md §4.10.
type TracingConfig struct {
	// Enabled turns on span export; otherwise a no-op tracer provider is
	// installed and Executor spans are dropped at creation.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the span sink: "stdout", "file", or "otlp".
	Exporter string `mapstructure:"exporter"`

	// Path is the destination for the "file" exporter.
	Path string `mapstructure:"path"`

	// Endpoint is the collector address for the "otlp" exporter.
	Endpoint string `mapstructure:"endpoint"`
}

// Defaults returns vicut's zero-config defaults.
func Defaults() Config {
	return Config{
		DefaultRegister: "",
		OutputMode:      "raw",
		Delimiter:       "\t",
		Workers:         0,
		Log: LogConfig{
			Level: "warn",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}

// Load builds a Config by layering, highest priority last-applied-wins:
// built-in defaults, then a config file (explicit path, or discovered at
// .vicut.yaml / ~/.config/vicut/config.yaml), then VICUT_-prefixed
// environment variables. Only one config file is read. Flags are not bound
// here; the caller applies them over the returned Config.
func Load(explicitPath string) (Config, *viperlib.Viper, error) {
	v := viperlib.NewWithOptions(viperlib.KeyDelimiter("::"))
	defaults := Defaults()

	v.SetDefault("default_register", defaults.DefaultRegister)
	v.SetDefault("output_mode", defaults.OutputMode)
	v.SetDefault("delimiter", defaults.Delimiter)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("log::level", defaults.Log.Level)
	v.SetDefault("tracing::enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing::exporter", defaults.Tracing.Exporter)

	v.SetEnvPrefix("VICUT")
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		if _, err := os.Stat(".vicut.yaml"); err == nil {
			v.SetConfigFile(".vicut.yaml")
		} else if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "vicut"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viperlib.ConfigFileNotFoundError); !ok {
			return Config{}, v, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, v, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, v, nil
}

// WriteDefault writes a commented default config file to path, creating
// its parent directory if needed.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigTemplate), 0o600)
}

const defaultConfigTemplate = `# vicut configuration.
# default_register: ""
# output_mode: raw   # raw, delimited, json, yaml, template
# delimiter: "\t"
# workers: 0          # 0 = GOMAXPROCS

# log:
#   path: ""
#   level: warn

# tracing:
#   enabled: false
#   exporter: stdout   # stdout, file, otlp
#   path: ""
#   endpoint: ""
`
