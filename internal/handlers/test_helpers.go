package handlers

import (
	"context"

	"github.com/jortega/verid/internal/auth"
	"github.com/jortega/verid/internal/models"
	"github.com/jortega/verid/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc               func(ctx context.Context, email, name, secret string) (*models.Account, error)
	AuthenticateCredentialFunc func(ctx context.Context, email, secret string, meta services.RequestMeta) (*services.AuthResult, error)
	AuthenticateBiometricFunc  func(ctx context.Context, accountID string, probe []float64, meta services.RequestMeta) (*services.AuthResult, error)
	CompleteStepUpFunc         func(ctx context.Context, accountID, code string, meta services.RequestMeta) (*services.AuthResult, error)
	SetupTOTPFunc              func(ctx context.Context, accountID string) (*auth.TOTPSetup, error)
	ActivateTOTPFunc           func(ctx context.Context, accountID, code string) error
}

func (m *MockAuthService) Register(ctx context.Context, email, name, secret string) (*models.Account, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, name, secret)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) AuthenticateCredential(ctx context.Context, email, secret string, meta services.RequestMeta) (*services.AuthResult, error) {
	if m.AuthenticateCredentialFunc != nil {
		return m.AuthenticateCredentialFunc(ctx, email, secret, meta)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) AuthenticateBiometric(ctx context.Context, accountID string, probe []float64, meta services.RequestMeta) (*services.AuthResult, error) {
	if m.AuthenticateBiometricFunc != nil {
		return m.AuthenticateBiometricFunc(ctx, accountID, probe, meta)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) CompleteStepUp(ctx context.Context, accountID, code string, meta services.RequestMeta) (*services.AuthResult, error) {
	if m.CompleteStepUpFunc != nil {
		return m.CompleteStepUpFunc(ctx, accountID, code, meta)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) SetupTOTP(ctx context.Context, accountID string) (*auth.TOTPSetup, error) {
	if m.SetupTOTPFunc != nil {
		return m.SetupTOTPFunc(ctx, accountID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) ActivateTOTP(ctx context.Context, accountID, code string) error {
	if m.ActivateTOTPFunc != nil {
		return m.ActivateTOTPFunc(ctx, accountID, code)
	}
	return models.ErrUnauthorized
}

// MockSessionService implements SessionServiceInterface for testing
type MockSessionService struct {
	ValidateFunc  func(ctx context.Context, token string) (*models.Session, error)
	RevokeFunc    func(ctx context.Context, token string) error
	RevokeAllFunc func(ctx context.Context, accountID string) (int64, error)
}

func (m *MockSessionService) Validate(ctx context.Context, token string) (*models.Session, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockSessionService) Revoke(ctx context.Context, token string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, token)
	}
	return nil
}

func (m *MockSessionService) RevokeAll(ctx context.Context, accountID string) (int64, error) {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, accountID)
	}
	return 0, nil
}

// MockEnrollmentService implements EnrollmentServiceInterface for testing
type MockEnrollmentService struct {
	EnrollFunc    func(ctx context.Context, accountID string, vector []float64) (string, error)
	SupersedeFunc func(ctx context.Context, accountID string, vector []float64) (string, error)
	FetchFunc     func(ctx context.Context, accountID string) ([]*models.BiometricSignature, error)
	RevokeFunc    func(ctx context.Context, accountID, signatureID string) error
}

func (m *MockEnrollmentService) Enroll(ctx context.Context, accountID string, vector []float64) (string, error) {
	if m.EnrollFunc != nil {
		return m.EnrollFunc(ctx, accountID, vector)
	}
	return "", models.ErrInternalServer
}

func (m *MockEnrollmentService) Supersede(ctx context.Context, accountID string, vector []float64) (string, error) {
	if m.SupersedeFunc != nil {
		return m.SupersedeFunc(ctx, accountID, vector)
	}
	return "", models.ErrInternalServer
}

func (m *MockEnrollmentService) Fetch(ctx context.Context, accountID string) ([]*models.BiometricSignature, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, accountID)
	}
	return []*models.BiometricSignature{}, nil
}

func (m *MockEnrollmentService) Revoke(ctx context.Context, accountID, signatureID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, accountID, signatureID)
	}
	return nil
}

// MockAccountUnlocker implements AccountUnlocker for testing
type MockAccountUnlocker struct {
	UnlockFunc func(ctx context.Context, accountID string) error
}

func (m *MockAccountUnlocker) Unlock(ctx context.Context, accountID string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, accountID)
	}
	return nil
}

// MockAttemptHistoryReader implements AttemptHistoryReader for testing
type MockAttemptHistoryReader struct {
	HistoryFunc func(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error)
}

func (m *MockAttemptHistoryReader) History(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, accountID, limit)
	}
	return []*models.AuthAttempt{}, nil
}

// MockAccountStatusUpdater implements AccountStatusUpdater for testing
type MockAccountStatusUpdater struct {
	UpdateStatusFunc func(ctx context.Context, id, status string) error
}

func (m *MockAccountStatusUpdater) UpdateStatus(ctx context.Context, id, status string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}
