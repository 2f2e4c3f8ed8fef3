package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/tutorgen/internal/store"
)

// SQLSTATE codes the archive translates; anything else passes through.
var constraintErrors = map[string]error{
	"23505": store.ErrDuplicate,
	"23514": store.ErrInvalidEntity,
	"23502": store.ErrInvalidEntity,
}

// MapError translates driver errors into store sentinels. The driver error is
// kept in the message so logs still show the failing constraint.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	sentinel, ok := constraintErrors[pgErr.Code]
	if !ok {
		return err
	}

	where := pgErr.ConstraintName
	if where == "" {
		where = pgErr.ColumnName
	}
	if where == "" {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return fmt.Errorf("%w on %s.%s: %v", sentinel, pgErr.TableName, where, err)
}
