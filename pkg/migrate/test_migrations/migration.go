// Package test_migrations holds the minimal migration set used by the
// migrator tests: only the bookkeeping table.
package test_migrations

import "embed"

//go:embed migration/*.sql
var MigrationFS embed.FS
