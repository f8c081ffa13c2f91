package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess"
)

// Database is the connection handle the bootstrap hands to the routers.
type Database interface {
	dbaccess.DataSource
	Ping(ctx context.Context) error
	Close()
}

// Connector opens the database named by a connection string. Connect must
// return only once the database is reachable or the attempt failed.
type Connector interface {
	Connect(ctx context.Context, connString string) (Database, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, connString string) (Database, error)

func (f ConnectorFunc) Connect(ctx context.Context, connString string) (Database, error) {
	return f(ctx, connString)
}

// PoolConnector opens a pgx connection pool with library default sizing.
type PoolConnector struct {
	Logger *slog.Logger
}

func (c *PoolConnector) Connect(ctx context.Context, connString string) (Database, error) {
	dbConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("error parsing connection string: %w", err)
	}

	if c.Logger != nil {
		dbConfig.ConnConfig.Tracer = &LoggingQueryTracer{logger: c.Logger}
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	// pgxpool connects lazily; ping so an unreachable database fails startup.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return pool, nil
}

// LoggingQueryTracer logs every query at debug level.
type LoggingQueryTracer struct {
	logger *slog.Logger
}

func (t *LoggingQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if strings.Contains(data.SQL, "INSERT INTO users") {
		t.logger.DebugContext(ctx, "Query started", "sql", data.SQL)
	} else {
		t.logger.DebugContext(ctx, "Query started", "sql", data.SQL, "args", data.Args)
	}
	return ctx
}

func (t *LoggingQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	if data.Err != nil {
		t.logger.DebugContext(ctx, "Query failed", "err", data.Err)
		return
	}
	t.logger.DebugContext(ctx, "Query ended", "command_tag", data.CommandTag.String())
}
