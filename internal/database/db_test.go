package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jortega/verid/internal/models"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows is not found", pgx.ErrNoRows, models.ErrNotFound},
		{"duplicate email", &pgconn.PgError{Code: "23505"}, models.ErrConflict},
		{"unknown account fk", &pgconn.PgError{Code: "23503"}, models.ErrBadRequest},
		{"missing required column", &pgconn.PgError{Code: "23502"}, models.ErrBadRequest},
		{"bad status value", &pgconn.PgError{Code: "23514"}, models.ErrBadRequest},
		{"malformed uuid", &pgconn.PgError{Code: "22P02"}, models.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPostgresError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapPostgresError_WrappedDriverError(t *testing.T) {
	wrapped := fmt.Errorf("exec failed: %w", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, MapPostgresError(wrapped), models.ErrConflict)
}

func TestMapPostgresError_UnknownCodePassesThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "57014"}
	got := MapPostgresError(pgErr)

	var out *pgconn.PgError
	assert.True(t, errors.As(got, &out))
}
