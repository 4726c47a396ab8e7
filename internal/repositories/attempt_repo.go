package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jortega/verid/internal/database"
	"github.com/jortega/verid/internal/models"
)

// AttemptRepository is the durable half of the audit trail. Attempts are
// append-only: there is no update or single-row delete path, only a
// retention sweep on age.
type AttemptRepository struct {
	db *database.DB
}

func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Record appends one attempt. Called exactly once per classified attempt.
func (r *AttemptRepository) Record(ctx context.Context, attempt *models.AuthAttempt) error {
	attempt.ID = uuid.New().String()
	attempt.CreatedAt = time.Now()

	query := `
		INSERT INTO auth_attempts (id, account_id, factor, outcome, score, failure_reason, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.ID, attempt.AccountID, attempt.Factor, attempt.Outcome,
		attempt.Score, attempt.FailureReason, attempt.IPAddress, attempt.UserAgent,
		attempt.CreatedAt,
	)

	return database.MapPostgresError(err)
}

// ListByAccount returns attempts for one account, newest first.
func (r *AttemptRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error) {
	query := `
		SELECT id, account_id, factor, outcome, score, failure_reason, ip_address, user_agent, created_at
		FROM auth_attempts
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*models.AuthAttempt, 0)
	for rows.Next() {
		var a models.AuthAttempt
		err := rows.Scan(&a.ID, &a.AccountID, &a.Factor, &a.Outcome, &a.Score,
			&a.FailureReason, &a.IPAddress, &a.UserAgent, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}

// DeleteOlderThan purges attempts past the retention horizon.
func (r *AttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM auth_attempts WHERE created_at < $1`

	result, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
