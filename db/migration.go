package db

import "embed"

//go:embed migration/*.sql
var MigrationFS embed.FS
