package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings are process-level knobs read from the ambient environment before
// the validated configuration is loaded. They select the override file and
// tune logging and the HTTP server.
type Settings struct {
	EnvFile           string        `envconfig:"ENV_FILE" default:".env"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"min=0"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s" validate:"min=0"`
	BodyLimit         int64         `envconfig:"BODY_LIMIT" default:"102400" validate:"min=1"`
}

// LoadSettings processes the environment into Settings and validates them.
func LoadSettings() (Settings, error) {
	var settings Settings
	if err := envconfig.Process("", &settings); err != nil {
		return Settings{}, fmt.Errorf("error processing environment variables: %w", err)
	}

	if err := newValidator().Struct(settings); err != nil {
		return Settings{}, fmt.Errorf("invalid runtime settings: %w", err)
	}

	return settings, nil
}

// DefaultSettings returns the settings used when nothing is set in the
// environment.
func DefaultSettings() Settings {
	return Settings{
		EnvFile:           DefaultOverridePath,
		LogLevel:          "info",
		LogFormat:         "json",
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		BodyLimit:         100 * 1024,
	}
}

func (s Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
