package testdb

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"gitlab.com/navyx/nexus/nexus-users/db"
	"gitlab.com/navyx/nexus/nexus-users/pkg/migrate"
)

const (
	// SchemaPrefix starts the name of every schema created by a Manager.
	SchemaPrefix = "users_test_"

	defaultTestDatabaseURL = "postgres://localhost/nexus-users-test?sslmode=disable"
)

// Manager hands out isolated, fully migrated schemas in one test database so
// that packages can run database tests in parallel.
//
// Every Acquire creates a fresh schema and a small pool whose search_path
// points at it. Release closes the pool; Close drops every schema created.
type Manager struct {
	logger       *slog.Logger
	mu           sync.Mutex // protects schemas and activePools
	mainPool     *pgxpool.Pool
	schemas      []string
	activePools  map[*pgxpool.Pool]string
	closed       atomic.Bool
	migrationsFS fs.FS
}

// NewManager connects to the test database. A nil migrationsFS means
// db.MigrationFS.
func NewManager(ctx context.Context, migrationsFS fs.FS) (*Manager, error) {
	poolConfig, err := pgxpool.ParseConfig(TestDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("error parsing test database url: %w", err)
	}

	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to test database: %w", err)
	}
	if migrationsFS == nil {
		migrationsFS = db.MigrationFS
	}

	return &Manager{
		logger:       slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})),
		mainPool:     conn,
		activePools:  make(map[*pgxpool.Pool]string),
		migrationsFS: migrationsFS,
	}, nil
}

// Acquire creates a new migrated schema and returns a pool bound to it. The
// pool must be handed back with Release.
func (m *Manager) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	if m.closed.Load() {
		return nil, fmt.Errorf("test database manager is closed")
	}

	schemaName := SchemaPrefix + lo.RandomString(8, append(lo.LowerCaseLettersCharset, lo.NumbersCharset...))
	quoted := pgx.Identifier{schemaName}.Sanitize()

	m.logger.Debug("Creating schema", "schema", schemaName)
	if _, err := m.mainPool.Exec(ctx, "CREATE SCHEMA "+quoted); err != nil {
		return nil, fmt.Errorf("error creating schema %s: %w", schemaName, err)
	}

	config, err := pgxpool.ParseConfig(TestDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("error parsing test database url: %w", err)
	}
	config.ConnConfig.RuntimeParams["search_path"] = schemaName
	config.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error creating pool for schema %s: %w", schemaName, err)
	}
	m.track(schemaName, pool)

	_, err = migrate.New(pool, migrate.Config{
		Logger:     m.logger,
		Migrations: m.migrationsFS,
	}).Migrate(ctx, migrate.DirectionUp, &migrate.MigrateOpts{})
	if err != nil {
		m.Release(pool)
		return nil, fmt.Errorf("error migrating schema %s: %w", schemaName, err)
	}

	return pool, nil
}

// Release closes a pool returned by Acquire. Releasing twice is a no-op.
func (m *Manager) Release(pool *pgxpool.Pool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.activePools[pool]; !ok {
		return
	}
	pool.Close()
	delete(m.activePools, pool)
}

// Close closes every outstanding pool and drops every schema the manager
// created. It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for pool := range m.activePools {
		pool.Close()
	}
	clear(m.activePools)

	for _, schemaName := range m.schemas {
		_, err := m.mainPool.Exec(context.WithoutCancel(ctx), "DROP SCHEMA "+pgx.Identifier{schemaName}.Sanitize()+" CASCADE")
		if err != nil {
			m.logger.Error("Failed to drop schema", "schema", schemaName, "error", err)
		}
	}
	m.schemas = nil

	m.mainPool.Close()
}

func (m *Manager) track(schemaName string, pool *pgxpool.Pool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schemas = append(m.schemas, schemaName)
	m.activePools[pool] = schemaName
}

// TestDatabaseURL returns TEST_DB_CONNECTION_STRING or a local default.
func TestDatabaseURL() string {
	if envURL := os.Getenv("TEST_DB_CONNECTION_STRING"); envURL != "" {
		return envURL
	}
	return defaultTestDatabaseURL
}
