package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jortega/verid/internal/biometric"
	"github.com/jortega/verid/internal/models"
	pkglogger "github.com/jortega/verid/pkg/logger"
)

// SignatureRepository defines the persistence operations for reference
// signatures
type SignatureRepository interface {
	Create(ctx context.Context, sig *models.BiometricSignature) (*models.BiometricSignature, error)
	ListActive(ctx context.Context, accountID string) ([]*models.BiometricSignature, error)
	Deactivate(ctx context.Context, accountID, signatureID string) error
	DeactivateAll(ctx context.Context, accountID string) (int, error)
}

// EnrollmentAccountStore is the slice of account persistence the enrollment
// flow needs
type EnrollmentAccountStore interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	SetEnrollmentState(ctx context.Context, id, state string, biometricEnabled bool) error
}

// EnrollmentService is the write-side front of the signature store. Writes
// to a given account are serialized so interleaved enrollments cannot leave
// a partial reference set.
type EnrollmentService struct {
	signatures   SignatureRepository
	accounts     EnrollmentAccountStore
	matcher      *biometric.Matcher
	modelVersion string
	logger       *slog.Logger
	audit        *pkglogger.AuditLogger

	mu           sync.Mutex
	accountLocks map[string]*sync.Mutex
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(signatures SignatureRepository, accounts EnrollmentAccountStore, matcher *biometric.Matcher, modelVersion string, logger *slog.Logger, audit *pkglogger.AuditLogger) *EnrollmentService {
	return &EnrollmentService{
		signatures:   signatures,
		accounts:     accounts,
		matcher:      matcher,
		modelVersion: modelVersion,
		logger:       logger,
		audit:        audit,
		accountLocks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-account mutex, creating it on first use. Entries
// live for the service lifetime; the map grows with the enrolled account
// population, which is bounded.
func (s *EnrollmentService) lockFor(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.accountLocks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		s.accountLocks[accountID] = lock
	}
	return lock
}

// Enroll stores one more reference signature for an account. A user may
// enroll several captures taken under different conditions; each becomes
// its own immutable reference.
func (s *EnrollmentService) Enroll(ctx context.Context, accountID string, vector []float64) (string, error) {
	if err := s.matcher.ValidateProbe(vector); err != nil {
		return "", err
	}

	lock := s.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("failed to load account: %w", err)
	}

	if account.EnrollmentState != models.EnrollmentComplete {
		// the account stays pending if the capture below never lands
		if err := s.accounts.SetEnrollmentState(ctx, account.ID, models.EnrollmentPending, false); err != nil {
			return "", fmt.Errorf("failed to update enrollment state: %w", err)
		}
	}

	stored := make([]float64, len(vector))
	copy(stored, vector) // callers must not be able to mutate a stored reference

	sig, err := s.signatures.Create(ctx, &models.BiometricSignature{
		AccountID:    account.ID,
		Vector:       stored,
		ModelVersion: s.modelVersion,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store signature: %w", err)
	}

	if err := s.accounts.SetEnrollmentState(ctx, account.ID, models.EnrollmentComplete, true); err != nil {
		return "", fmt.Errorf("failed to update enrollment state: %w", err)
	}

	s.logger.Info("biometric signature enrolled",
		slog.String("account_id", account.ID),
		slog.String("signature_id", sig.ID))
	s.audit.LogAccountAction("biometric_enrolled", account.ID, map[string]string{
		"signature_id":  sig.ID,
		"model_version": s.modelVersion,
	})

	return sig.ID, nil
}

// Supersede retires every active signature of the account and enrolls a
// fresh capture in their place. Old rows stay on disk, deactivated.
func (s *EnrollmentService) Supersede(ctx context.Context, accountID string, vector []float64) (string, error) {
	if err := s.matcher.ValidateProbe(vector); err != nil {
		return "", err
	}

	lock := s.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("failed to load account: %w", err)
	}

	retired, err := s.signatures.DeactivateAll(ctx, account.ID)
	if err != nil {
		return "", fmt.Errorf("failed to supersede signatures: %w", err)
	}

	stored := make([]float64, len(vector))
	copy(stored, vector)

	sig, err := s.signatures.Create(ctx, &models.BiometricSignature{
		AccountID:    account.ID,
		Vector:       stored,
		ModelVersion: s.modelVersion,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store signature: %w", err)
	}

	if err := s.accounts.SetEnrollmentState(ctx, account.ID, models.EnrollmentComplete, true); err != nil {
		return "", fmt.Errorf("failed to update enrollment state: %w", err)
	}

	s.logger.Info("biometric enrollment superseded",
		slog.String("account_id", account.ID),
		slog.Int("retired", retired),
		slog.String("signature_id", sig.ID))
	s.audit.LogAccountAction("biometric_superseded", account.ID, map[string]string{
		"signature_id": sig.ID,
	})

	return sig.ID, nil
}

// Fetch returns the active reference set for an account. Empty means "not
// enrolled", which is not an error here - the matcher decides what that
// implies for an authentication attempt.
func (s *EnrollmentService) Fetch(ctx context.Context, accountID string) ([]*models.BiometricSignature, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return s.signatures.ListActive(ctx, accountID)
}

// Revoke deactivates a single signature owned by the account. A signature
// id belonging to a different account reports as not found. When the last
// active signature goes away the account drops back to un-enrolled.
func (s *EnrollmentService) Revoke(ctx context.Context, accountID, signatureID string) error {
	lock := s.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.signatures.Deactivate(ctx, accountID, signatureID); err != nil {
		return err
	}

	remaining, err := s.signatures.ListActive(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to check remaining signatures: %w", err)
	}

	if len(remaining) == 0 {
		if err := s.accounts.SetEnrollmentState(ctx, accountID, models.EnrollmentNone, false); err != nil {
			return fmt.Errorf("failed to update enrollment state: %w", err)
		}
	}

	s.audit.LogAccountAction("biometric_revoked", accountID, map[string]string{
		"signature_id": signatureID,
	})

	return nil
}
