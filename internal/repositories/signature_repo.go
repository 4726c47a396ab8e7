package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jortega/verid/internal/database"
	"github.com/jortega/verid/internal/models"
)

// SignatureRepository persists reference biometric signatures. Vectors are
// stored as double precision arrays so enroll-then-fetch is bit-exact.
type SignatureRepository struct {
	db *database.DB
}

func NewSignatureRepository(db *database.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

func (r *SignatureRepository) Create(ctx context.Context, sig *models.BiometricSignature) (*models.BiometricSignature, error) {
	sig.ID = uuid.New().String()
	sig.Active = true
	sig.CreatedAt = time.Now()

	query := `
		INSERT INTO biometric_signatures (id, account_id, vector, model_version, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		sig.ID, sig.AccountID, sig.Vector, sig.ModelVersion, sig.Active, sig.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return sig, nil
}

// ListActive returns the active reference set for one account. An empty
// slice is a valid result meaning "not enrolled".
func (r *SignatureRepository) ListActive(ctx context.Context, accountID string) ([]*models.BiometricSignature, error) {
	query := `
		SELECT id, account_id, vector, model_version, active, verification_count, created_at
		FROM biometric_signatures
		WHERE account_id = $1 AND active = true
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}

	return scanSignatureRows(rows)
}

// Deactivate marks one signature as superseded. The update is scoped to the
// owning account so a holder can never touch another holder's references;
// a foreign signature id reports as not found.
func (r *SignatureRepository) Deactivate(ctx context.Context, accountID, signatureID string) error {
	query := `UPDATE biometric_signatures SET active = false WHERE id = $1 AND account_id = $2`

	result, err := r.db.Pool.Exec(ctx, query, signatureID, accountID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordVerification bumps the usage counter of the reference that produced
// an accepted match. Best effort from the caller's point of view.
func (r *SignatureRepository) RecordVerification(ctx context.Context, signatureID string) error {
	query := `UPDATE biometric_signatures SET verification_count = verification_count + 1 WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, signatureID)
	return database.MapPostgresError(err)
}

// DeactivateAll supersedes every active signature of an account, returning
// how many were retired.
func (r *SignatureRepository) DeactivateAll(ctx context.Context, accountID string) (int, error) {
	query := `UPDATE biometric_signatures SET active = false WHERE account_id = $1 AND active = true`

	result, err := r.db.Pool.Exec(ctx, query, accountID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return int(result.RowsAffected()), nil
}

func scanSignatureRows(rows pgx.Rows) ([]*models.BiometricSignature, error) {
	defer rows.Close()

	signatures := make([]*models.BiometricSignature, 0)

	for rows.Next() {
		var sig models.BiometricSignature
		err := rows.Scan(&sig.ID, &sig.AccountID, &sig.Vector, &sig.ModelVersion, &sig.Active, &sig.VerificationCount, &sig.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		signatures = append(signatures, &sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return signatures, nil
}
