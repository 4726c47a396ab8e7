package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jortega/verid/internal/database"
	"github.com/jortega/verid/internal/models"
)

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// rowScanner interface for scanning account rows (single row or rows iteration)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const accountColumns = `id, email, name, password_hash, status, enrollment_state, biometric_enabled,
	failed_attempts, locked_until, totp_secret, totp_enabled, last_login_at, created_at, updated_at`

// scanAccountRow handles nullable fields and populates an Account model
func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var lockedUntil, lastLoginAt *time.Time
	var totpSecret *string

	err := scanner.Scan(
		&account.ID, &account.Email, &account.Name, &account.PasswordHash,
		&account.Status, &account.EnrollmentState, &account.BiometricEnabled,
		&account.FailedAttempts, &lockedUntil, &totpSecret, &account.TOTPEnabled,
		&lastLoginAt, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	account.LockedUntil = lockedUntil
	account.TOTPSecret = totpSecret
	account.LastLoginAt = lastLoginAt

	return &account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1`, accountColumns)
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.ID = uuid.New().String()

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}
	if account.EnrollmentState == "" {
		account.EnrollmentState = models.EnrollmentNone
	}

	query := fmt.Sprintf(`
		INSERT INTO accounts (id, email, name, password_hash, status, enrollment_state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, accountColumns)

	return scanAccountRow(r.db.Pool.QueryRow(ctx, query,
		account.ID, account.Email, account.Name, account.PasswordHash,
		account.Status, account.EnrollmentState, account.CreatedAt, account.UpdatedAt,
	))
}

// UpdateStatus flips the active/disabled flag. Accounts are never deleted.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE accounts SET status = $1, updated_at = now() WHERE id = $2`

	result, err := r.db.Pool.Exec(ctx, query, status, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetEnrollmentState updates the biometric enrollment lifecycle flags.
func (r *AccountRepository) SetEnrollmentState(ctx context.Context, id, state string, biometricEnabled bool) error {
	query := `
		UPDATE accounts SET enrollment_state = $1, biometric_enabled = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := r.db.Pool.Exec(ctx, query, state, biometricEnabled, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// IncrementFailures bumps the consecutive-failure counter in a single
// statement and arms the lock in the same round trip once the threshold is
// reached. The read-modify-write happens inside Postgres, so two concurrent
// failures cannot both observe a stale pre-lockout count.
func (r *AccountRepository) IncrementFailures(ctx context.Context, id string, maxFailures int, cooldown time.Duration) (int, *time.Time, error) {
	query := `
		UPDATE accounts
		SET failed_attempts = failed_attempts + 1,
		    locked_until = CASE
		        WHEN failed_attempts + 1 >= $2 THEN now() + $3
		        ELSE locked_until
		    END,
		    updated_at = now()
		WHERE id = $1
		RETURNING failed_attempts, locked_until
	`

	var failures int
	var lockedUntil *time.Time
	err := r.db.Pool.QueryRow(ctx, query, id, maxFailures, cooldown).Scan(&failures, &lockedUntil)
	if err != nil {
		return 0, nil, database.MapPostgresError(err)
	}

	return failures, lockedUntil, nil
}

// ResetFailures zeroes the counter and clears any active lock.
func (r *AccountRepository) ResetFailures(ctx context.Context, id string) error {
	query := `
		UPDATE accounts SET failed_attempts = 0, locked_until = NULL, updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE accounts SET last_login_at = now(), updated_at = now() WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id)
	return database.MapPostgresError(err)
}

// SetTOTP stores the step-up factor secret; enabled flips once the first
// code verifies.
func (r *AccountRepository) SetTOTP(ctx context.Context, id string, secret *string, enabled bool) error {
	query := `UPDATE accounts SET totp_secret = $1, totp_enabled = $2, updated_at = now() WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, secret, enabled, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
