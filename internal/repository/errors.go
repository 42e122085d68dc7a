package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference is returned when a foreign key points at nothing.
	ErrMissingReference = errors.New("referenced record does not exist")
)

// translate turns Postgres constraint violations into repository sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrMissingReference, pgErr.ConstraintName)
	}
	return err
}
