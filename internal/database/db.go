package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jortega/verid/internal/models"
)

// MapPostgresError translates driver errors into the domain sentinels the
// services branch on. Codes listed are the ones this schema can actually
// raise: the unique email on accounts, the signature/attempt foreign keys
// pointing at accounts, and the status/enrollment_state check constraints.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation (accounts.email)
			return models.ErrConflict
		case "23503": // foreign_key_violation (signatures/attempts -> accounts)
			return models.ErrBadRequest
		case "23502": // not_null_violation
			return models.ErrBadRequest
		case "23514": // check_violation (status, enrollment_state)
			return models.ErrBadRequest
		case "22P02": // invalid_text_representation (malformed uuid id)
			return models.ErrBadRequest
		}
	}

	return err
}

// WithTransaction runs fn inside a transaction, committing on a nil return
// and rolling back on error or panic.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, db.Pool, fn)
}
