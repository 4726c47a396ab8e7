package repositories

import (
	"context"
	"time"

	"github.com/jortega/verid/internal/database"
	"github.com/jortega/verid/internal/models"
)

type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, account_id, factor, ip_address, user_agent, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		session.Token, session.AccountID, session.Factor,
		session.IPAddress, session.UserAgent,
		session.IssuedAt, session.ExpiresAt, session.Revoked,
	)

	return database.MapPostgresError(err)
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, account_id, factor, ip_address, user_agent, issued_at, expires_at, revoked
		FROM sessions WHERE token = $1
	`

	var s models.Session
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&s.Token, &s.AccountID, &s.Factor, &s.IPAddress, &s.UserAgent,
		&s.IssuedAt, &s.ExpiresAt, &s.Revoked,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &s, nil
}

// Revoke flips the single mutable field of a session. The one-row UPDATE is
// atomic in Postgres, so a concurrent validate either sees the session
// before revocation or after, never an intermediate state.
func (r *SessionRepository) Revoke(ctx context.Context, token string) error {
	query := `UPDATE sessions SET revoked = true WHERE token = $1`

	result, err := r.db.Pool.Exec(ctx, query, token)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RevokeAllForAccount invalidates every live session of one account.
func (r *SessionRepository) RevokeAllForAccount(ctx context.Context, accountID string) (int64, error) {
	query := `UPDATE sessions SET revoked = true WHERE account_id = $1 AND revoked = false`

	result, err := r.db.Pool.Exec(ctx, query, accountID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes sessions past expiry. Revoked-but-unexpired rows
// stay so validate can still answer Revoked rather than NotFound.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	result, err := r.db.Pool.Exec(ctx, query, now)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
