// Package config manages resmigrate settings.
//
// Settings come from environment variables so that wrapper scripts and CI
// jobs can pin them; command-line flags override them per run.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLogLevel      = "RESMIGRATE_LOG_LEVEL"
	EnvLogFormat     = "RESMIGRATE_LOG_FORMAT"
	EnvTargetVersion = "RESMIGRATE_TARGET_VERSION"

	// DefaultTargetVersion is the release whose layout the migration produces.
	DefaultTargetVersion = "4.0.0"
)

// Settings contains the values resmigrate reads from its environment.
type Settings struct {
	// LogLevel is the minimum level written by the logger (default: info)
	LogLevel slog.Level

	// LogFormat is "text" or "json" (default: text)
	LogFormat string

	// TargetVersion is the tooling version the project is being upgraded to
	TargetVersion string
}

// Load returns settings built from the environment.
// - RESMIGRATE_LOG_LEVEL: debug, info, warn or error
// - RESMIGRATE_LOG_FORMAT: text or json
// - RESMIGRATE_TARGET_VERSION: semantic version (default 4.0.0)
func Load() (*Settings, error) {
	settings := &Settings{
		LogLevel:      slog.LevelInfo,
		LogFormat:     "text",
		TargetVersion: DefaultTargetVersion,
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		parsed, err := ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		settings.LogLevel = parsed
	}

	if format := os.Getenv(EnvLogFormat); format != "" {
		format = strings.ToLower(strings.TrimSpace(format))
		if format != "text" && format != "json" {
			return nil, fmt.Errorf("invalid %s %q: must be text or json", EnvLogFormat, format)
		}
		settings.LogFormat = format
	}

	if version := os.Getenv(EnvTargetVersion); version != "" {
		settings.TargetVersion = strings.TrimSpace(version)
	}

	return settings, nil
}

// ParseLevel converts a level name into a slog.Level. Callers name the
// source of the value when wrapping the error.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
