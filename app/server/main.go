package main

import (
	"fmt"
	"log/slog"
	"os"

	nexususers "gitlab.com/navyx/nexus/nexus-users"
	"gitlab.com/navyx/nexus/nexus-users/pkg/config"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := initLogger(settings)
	app := &App{logger: logger, settings: settings}
	os.Exit(app.Run())
}

func initLogger(settings config.Settings) *slog.Logger {
	level := settings.SlogLevel()

	// Create Logger based on environment
	var logger *slog.Logger
	if useTextLogs(settings, config.ReadSource(settings.EnvFile)) {
		handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)
	} else {
		opts := slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: unixTimestampHandler,
		}
		handler := slog.NewJSONHandler(os.Stdout, &opts)
		logger = slog.New(handler).With(
			"service", nexususers.ServiceName,
			"version", nexususers.GetVersion(),
		)
	}

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// useTextLogs picks the human readable handler when asked for explicitly or
// when NODE_ENV, from the environment or the override file, is development.
func useTextLogs(settings config.Settings, source map[string]string) bool {
	return settings.LogFormat == "text" || source[config.KeyNodeEnv] == string(config.EnvDevelopment)
}

func unixTimestampHandler(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Int64("ts", a.Value.Time().UnixNano()/1e6) // millisecond precision
	}
	return a
}
