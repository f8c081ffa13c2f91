package dbaccess

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup by ID matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a unique constraint,
	// e.g. creating a user with an email that is already registered.
	ErrConflict = errors.New("conflict")
)

// TranslateError maps driver errors onto the package sentinels. Errors it
// does not recognize are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrConflict
	}

	return err
}
