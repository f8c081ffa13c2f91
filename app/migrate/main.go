package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/navyx/nexus/nexus-users/db"
	"gitlab.com/navyx/nexus/nexus-users/pkg/config"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess"
	"gitlab.com/navyx/nexus/nexus-users/pkg/migrate"
	"gitlab.com/navyx/nexus/nexus-users/pkg/server"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(0)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := setupLogger(settings)

	migrateCmd := os.Args[1]

	step, dryRun, help := parseFlags()

	if help || migrateCmd == "-h" || migrateCmd == "help" {
		printHelp()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status, direction, err := parseCommand(migrateCmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printHelp()
		os.Exit(1)
	}

	if status {
		os.Exit(showStatus(ctx, logger, settings))
	}
	os.Exit(runMigration(ctx, logger, settings, direction, step, dryRun))
}

// parseCommand resolves the first argument to either the status command or
// a migration direction.
func parseCommand(arg string) (bool, migrate.Direction, error) {
	if arg == "status" {
		return true, "", nil
	}

	direction, err := migrate.ParseDirection(arg)
	if err != nil {
		return false, "", fmt.Errorf("unknown command %q", arg)
	}
	return false, direction, nil
}

func setupLogger(settings config.Settings) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: settings.SlogLevel()})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseFlags() (int, bool, bool) {
	var step int
	var help bool
	dryRun := false

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.IntVar(&step, "s", 0, "Number of migrations to run")
	fs.BoolVar(&dryRun, "d", false, "Run migrations in dry run mode")
	fs.BoolVar(&help, "h", false, "Display help message")
	if err := fs.Parse(os.Args[2:]); err != nil {
		help = true
	}

	return step, dryRun, help
}

func printHelp() {
	helpMessage := `
Usage: migrate [command] [options]

Commands:
up       Run migrations up
down     Run migrations down
status   List known migrations and whether they are applied

Options:
-s    Number of migrations to run. Default is runs all migrations for up, and 1 for down.
-d    Run migrations in dry run mode. Default is false. Used for testing migrations.
-h    Display this help message

The database is read from DB_CONNECTION_STRING, in the environment or in the
file named by ENV_FILE (default .env).
`
	os.Stderr.WriteString(helpMessage)
}

// connectToDatabase reads only the connection string, so the migrate tool
// does not need the rest of the service configuration.
func connectToDatabase(ctx context.Context, logger *slog.Logger, settings config.Settings) (server.Database, error) {
	connString := config.ReadSource(settings.EnvFile)[config.KeyDBConnectionString]
	if connString == "" {
		return nil, errors.New(config.KeyDBConnectionString + " is not set")
	}

	logger.Info("Connecting to database", "url", config.RedactURL(connString))

	connector := &server.PoolConnector{Logger: logger}
	return connector.Connect(ctx, connString)
}

func newMigrator(ds dbaccess.DataSource, logger *slog.Logger) *migrate.Migrator {
	return migrate.New(ds, migrate.Config{
		Logger:     logger,
		Migrations: db.MigrationFS,
	})
}

func runMigration(ctx context.Context, logger *slog.Logger, settings config.Settings, direction migrate.Direction, step int, dryRun bool) int {
	logger.Info("Running migrations", "direction", direction, "steps", step, "dryRun", dryRun)

	pool, err := connectToDatabase(ctx, logger, settings)
	if err != nil {
		logger.Error("Failed to connect to database", "err", err)
		return 1
	}
	defer pool.Close()

	res, err := newMigrator(pool, logger).Migrate(ctx, direction, &migrate.MigrateOpts{MaxSteps: step, DryRun: dryRun})
	if err != nil {
		logger.Error("Failed to migrate database", "error", err.Error())
		return 2
	}

	for _, version := range res.Versions {
		logger.Info("Applied migration", "direction", res.Direction, "version", version.Version, "duration", version.Duration)
	}
	logger.Info("Database migrated", "count", len(res.Versions))

	return 0
}

func showStatus(ctx context.Context, logger *slog.Logger, settings config.Settings) int {
	pool, err := connectToDatabase(ctx, logger, settings)
	if err != nil {
		logger.Error("Failed to connect to database", "err", err)
		return 1
	}
	defer pool.Close()

	statuses, err := newMigrator(pool, logger).Status(ctx)
	if err != nil {
		logger.Error("Failed to read migration status", "error", err.Error())
		return 2
	}

	for _, status := range statuses {
		state := "pending"
		if status.Applied {
			state = "applied"
		}
		fmt.Printf("%03d  %s\n", status.Version, state)
	}

	return 0
}
