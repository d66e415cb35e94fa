// Package internal provides the application configuration and the watch
// runtime entry point.
package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ConfigFileName is the optional per-workspace config, looked up inside
// the marker directory.
const ConfigFileName = "config.yaml"

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Watch WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// WatchConfig holds watch-mode configuration.
type WatchConfig struct {
	Root       string `yaml:"root"`
	DebounceMs int    `yaml:"debounce_ms"`
	LogToFile  bool   `yaml:"log_to_file"`
}

// Validate validates the watch configuration. The debounce window is
// bounded: below 50ms it no longer coalesces editor save bursts, above 10s
// the tool stops feeling live.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.DebounceMs, validation.Required, validation.Min(50), validation.Max(10000)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Watch: WatchConfig{
			Root:       ".",
			DebounceMs: 500,
		},
	}
}
