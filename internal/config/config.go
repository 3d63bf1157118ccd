package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogConfig holds logging parameters.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error

	// File enables a rolling log file next to stdout output.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultLog returns LogConfig writing info level to stdout only.
func DefaultLog() LogConfig {
	return LogConfig{
		Level:      "info",
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
	}
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parsing log level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// MetricsConfig holds the Prometheus / status endpoint parameters.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultMetrics returns MetricsConfig listening on localhost.
func DefaultMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}
