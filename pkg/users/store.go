package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess/dbsqlc"
	"gitlab.com/navyx/nexus/nexus-users/pkg/util"
)

var querier dbsqlc.Querier = dbsqlc.New()

// Store persists users.
type Store interface {
	Create(ctx context.Context, email, name string) (*User, error)
	Get(ctx context.Context, id pgtype.UUID) (*User, error)
	List(ctx context.Context, limit, offset int32) ([]*User, int64, error)
	Delete(ctx context.Context, id pgtype.UUID) error
}

type _PgStore struct {
	dataSource dbaccess.DataSource
}

// NewPgStore returns a Store backed by the users table.
func NewPgStore(dataSource dbaccess.DataSource) Store {
	return &_PgStore{dataSource: dataSource}
}

func (s *_PgStore) Create(ctx context.Context, email, name string) (*User, error) {
	rec, err := querier.UserInsert(ctx, s.dataSource, &dbsqlc.UserInsertParams{Email: email, Name: name})
	if err != nil {
		return nil, fmt.Errorf("error inserting user: %w", dbaccess.TranslateError(err))
	}
	return userFromRecord(rec), nil
}

func (s *_PgStore) Get(ctx context.Context, id pgtype.UUID) (*User, error) {
	rec, err := querier.UserFindById(ctx, s.dataSource, id)
	if err != nil {
		return nil, fmt.Errorf("error finding user: %w", dbaccess.TranslateError(err))
	}
	return userFromRecord(rec), nil
}

// List returns one page of users and the total count, read in a single
// transaction so both agree.
func (s *_PgStore) List(ctx context.Context, limit, offset int32) ([]*User, int64, error) {
	type page struct {
		users []*User
		total int64
	}

	res, err := dbaccess.WithTxV(ctx, s.dataSource, func(ctx context.Context, tx dbaccess.DataSource) (page, error) {
		total, err := querier.UserCount(ctx, tx)
		if err != nil {
			return page{}, fmt.Errorf("error counting users: %w", err)
		}

		recs, err := querier.UserList(ctx, tx, &dbsqlc.UserListParams{MaxRows: limit, SkipRows: offset})
		if err != nil {
			return page{}, fmt.Errorf("error listing users: %w", err)
		}

		return page{users: util.MapSlice(recs, userFromRecord), total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return res.users, res.total, nil
}

func (s *_PgStore) Delete(ctx context.Context, id pgtype.UUID) error {
	deleted, err := querier.UserDeleteById(ctx, s.dataSource, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if deleted == 0 {
		return dbaccess.ErrNotFound
	}
	return nil
}
