package services

import (
	"context"
	"time"

	"github.com/jortega/verid/internal/biometric"
	"github.com/jortega/verid/internal/models"
)

// MockAccountStore implements AuthAccountStore and EnrollmentAccountStore
// for testing
type MockAccountStore struct {
	GetByIDFunc            func(ctx context.Context, id string) (*models.Account, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.Account, error)
	CreateFunc             func(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdateLastLoginFunc    func(ctx context.Context, id string) error
	SetTOTPFunc            func(ctx context.Context, id string, secret *string, enabled bool) error
	SetEnrollmentStateFunc func(ctx context.Context, id, state string, biometricEnabled bool) error
}

func (m *MockAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountStore) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountStore) UpdateLastLogin(ctx context.Context, id string) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountStore) SetTOTP(ctx context.Context, id string, secret *string, enabled bool) error {
	if m.SetTOTPFunc != nil {
		return m.SetTOTPFunc(ctx, id, secret, enabled)
	}
	return nil
}

func (m *MockAccountStore) SetEnrollmentState(ctx context.Context, id, state string, biometricEnabled bool) error {
	if m.SetEnrollmentStateFunc != nil {
		return m.SetEnrollmentStateFunc(ctx, id, state, biometricEnabled)
	}
	return nil
}

// MockLockoutRepository implements LockoutRepository for testing
type MockLockoutRepository struct {
	IncrementFailuresFunc func(ctx context.Context, accountID string, maxFailures int, cooldown time.Duration) (int, *time.Time, error)
	ResetFailuresFunc     func(ctx context.Context, accountID string) error
}

func (m *MockLockoutRepository) IncrementFailures(ctx context.Context, accountID string, maxFailures int, cooldown time.Duration) (int, *time.Time, error) {
	if m.IncrementFailuresFunc != nil {
		return m.IncrementFailuresFunc(ctx, accountID, maxFailures, cooldown)
	}
	return 1, nil, nil
}

func (m *MockLockoutRepository) ResetFailures(ctx context.Context, accountID string) error {
	if m.ResetFailuresFunc != nil {
		return m.ResetFailuresFunc(ctx, accountID)
	}
	return nil
}

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc              func(ctx context.Context, session *models.Session) error
	GetByTokenFunc          func(ctx context.Context, token string) (*models.Session, error)
	RevokeFunc              func(ctx context.Context, token string) error
	RevokeAllForAccountFunc func(ctx context.Context, accountID string) (int64, error)
	DeleteExpiredFunc       func(ctx context.Context, now time.Time) (int64, error)
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockSessionRepository) Revoke(ctx context.Context, token string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, token)
	}
	return nil
}

func (m *MockSessionRepository) RevokeAllForAccount(ctx context.Context, accountID string) (int64, error) {
	if m.RevokeAllForAccountFunc != nil {
		return m.RevokeAllForAccountFunc(ctx, accountID)
	}
	return 0, nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, now)
	}
	return 0, nil
}

// MockSignatureRepository implements SignatureRepository and ReferenceStore
// for testing
type MockSignatureRepository struct {
	CreateFunc             func(ctx context.Context, sig *models.BiometricSignature) (*models.BiometricSignature, error)
	ListActiveFunc         func(ctx context.Context, accountID string) ([]*models.BiometricSignature, error)
	DeactivateFunc         func(ctx context.Context, accountID, signatureID string) error
	DeactivateAllFunc      func(ctx context.Context, accountID string) (int, error)
	RecordVerificationFunc func(ctx context.Context, signatureID string) error
}

func (m *MockSignatureRepository) Create(ctx context.Context, sig *models.BiometricSignature) (*models.BiometricSignature, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sig)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSignatureRepository) ListActive(ctx context.Context, accountID string) ([]*models.BiometricSignature, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, accountID)
	}
	return []*models.BiometricSignature{}, nil
}

func (m *MockSignatureRepository) Deactivate(ctx context.Context, accountID, signatureID string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, accountID, signatureID)
	}
	return nil
}

func (m *MockSignatureRepository) RecordVerification(ctx context.Context, signatureID string) error {
	if m.RecordVerificationFunc != nil {
		return m.RecordVerificationFunc(ctx, signatureID)
	}
	return nil
}

func (m *MockSignatureRepository) DeactivateAll(ctx context.Context, accountID string) (int, error) {
	if m.DeactivateAllFunc != nil {
		return m.DeactivateAllFunc(ctx, accountID)
	}
	return 0, nil
}

// MockAttemptStore implements AttemptStore for testing
type MockAttemptStore struct {
	RecordFunc        func(ctx context.Context, attempt *models.AuthAttempt) error
	ListByAccountFunc func(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error)
}

func (m *MockAttemptStore) Record(ctx context.Context, attempt *models.AuthAttempt) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	return nil
}

func (m *MockAttemptStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit)
	}
	return []*models.AuthAttempt{}, nil
}

// MockMatcher implements SignatureMatcher for testing
type MockMatcher struct {
	ValidateProbeFunc func(probe []float64) error
	MatchFunc         func(probe []float64, references [][]float64) (biometric.MatchResult, error)
}

func (m *MockMatcher) ValidateProbe(probe []float64) error {
	if m.ValidateProbeFunc != nil {
		return m.ValidateProbeFunc(probe)
	}
	return nil
}

func (m *MockMatcher) Match(probe []float64, references [][]float64) (biometric.MatchResult, error) {
	if m.MatchFunc != nil {
		return m.MatchFunc(probe, references)
	}
	return biometric.MatchResult{}, models.ErrEmptyReferenceSet
}

// MockAlertSender implements AlertSender for testing
type MockAlertSender struct {
	SendLockoutAlertFunc func(ctx context.Context, email, name string, lockedUntil time.Time) error
}

func (m *MockAlertSender) SendLockoutAlert(ctx context.Context, email, name string, lockedUntil time.Time) error {
	if m.SendLockoutAlertFunc != nil {
		return m.SendLockoutAlertFunc(ctx, email, name, lockedUntil)
	}
	return nil
}
