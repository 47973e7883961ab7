// Package config loads specload settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sumup/specload/internal/spec"
)

// Config holds all application configuration.
type Config struct {
	Parser  string        `mapstructure:"parser"`
	Field   string        `mapstructure:"field"`
	Timeout time.Duration `mapstructure:"timeout"`
	Strict  bool          `mapstructure:"strict"`
	Types   bool          `mapstructure:"types"`
	Log     LogConfig     `mapstructure:"log"`
	OTEL    OTELConfig    `mapstructure:"otel"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OTELConfig holds OpenTelemetry exporter settings. An empty endpoint
// disables export.
type OTELConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name"`
}

// Load reads configuration from environment variables with the SPECLOAD_
// prefix, e.g. SPECLOAD_LOG_LEVEL. It does not validate: callers apply
// their overrides first and then call Validate.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPECLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("parser", spec.BackendLibopenapi)
	v.SetDefault("field", "")
	v.SetDefault("timeout", "30s")
	v.SetDefault("strict", false)
	v.SetDefault("types", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.insecure", false)
	v.SetDefault("otel.service_name", "specload")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if !slices.Contains(spec.Backends(), c.Parser) {
		return fmt.Errorf("config: parser %q is not one of %v", c.Parser, spec.Backends())
	}
	if c.Types && c.Parser != spec.BackendLibopenapi {
		return fmt.Errorf("config: types need the %s parser", spec.BackendLibopenapi)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log format %q must be text or json", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", l.Level, err)
	}
	return level, nil
}
