package dbaccess

import (
	"context"

	"github.com/jackc/pgx/v5"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess/dbsqlc"
)

type DataSource interface {
	dbsqlc.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}
