package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/navyx/nexus/nexus-users/pkg/config"
	"gitlab.com/navyx/nexus/nexus-users/pkg/server"
)

type App struct {
	logger   *slog.Logger
	settings config.Settings
}

// Run loads the configuration and serves until interrupted. It returns the
// process exit code.
func (a *App) Run() int {
	cfg, ok := a.loadConfig()
	if !ok {
		return 1
	}
	a.logger.Info("Configuration loaded", "config", cfg)

	ctx, stop := a._WaitForInteruption()
	defer stop()

	err := server.New(cfg,
		server.WithLogger(a.logger),
		server.WithSettings(a.settings),
	).Run(ctx)
	if err != nil {
		a.logger.Error("Users api server stopped", "err", err)
		return 1
	}

	return 0
}

func (a *App) _WaitForInteruption() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
}

func (a *App) loadConfig() (*config.Config, bool) {
	cfg, err := config.Load(a.settings.EnvFile)
	if err == nil {
		return cfg, true
	}

	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		for _, issue := range validationErr.Issues {
			a.logger.Error("Invalid configuration", "field", issue.Field, "rule", issue.Tag, "reason", issue.Reason)
		}
	}
	a.logger.Error("Failed to load configuration", "err", err)

	return nil, false
}
