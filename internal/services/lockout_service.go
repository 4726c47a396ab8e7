package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jortega/verid/internal/models"
)

// LockoutRepository defines the persistence operations the lockout policy
// needs. IncrementFailures must be atomic: two concurrent failures may not
// both observe a stale pre-lockout count.
type LockoutRepository interface {
	IncrementFailures(ctx context.Context, accountID string, maxFailures int, cooldown time.Duration) (int, *time.Time, error)
	ResetFailures(ctx context.Context, accountID string) error
}

// LockoutConfig holds the consecutive-failure policy knobs. Cooldown is
// wall-clock based; EscalateAmbiguous decides whether repeated ambiguous
// verdicts count toward lockout.
type LockoutConfig struct {
	MaxFailures       int
	Cooldown          time.Duration
	EscalateAmbiguous bool
}

// LockoutService owns the per-account failure counter. No other component
// touches the counter directly; everything goes through this interface.
type LockoutService struct {
	repo   LockoutRepository
	config LockoutConfig
	logger *slog.Logger
}

// NewLockoutService creates a new LockoutService
func NewLockoutService(repo LockoutRepository, config LockoutConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		repo:   repo,
		config: config,
		logger: logger,
	}
}

// Check gates an attempt: it returns ErrAccountLocked while the account's
// cooldown is running. The Locked -> Open transition is implicit - once the
// cooldown elapses the gate simply stops firing.
func (s *LockoutService) Check(account *models.Account, now time.Time) error {
	if account.Locked(now) {
		return &models.AccountLockedError{Until: *account.LockedUntil}
	}
	return nil
}

// RegisterFailure counts one non-ambiguous failure and reports whether
// this failure tripped the lock.
func (s *LockoutService) RegisterFailure(ctx context.Context, accountID string) (bool, *time.Time, error) {
	failures, lockedUntil, err := s.repo.IncrementFailures(ctx, accountID, s.config.MaxFailures, s.config.Cooldown)
	if err != nil {
		return false, nil, fmt.Errorf("failed to register failure: %w", err)
	}

	tripped := failures >= s.config.MaxFailures && lockedUntil != nil
	if tripped {
		s.logger.Warn("account locked after repeated failures",
			slog.String("account_id", accountID),
			slog.Int("failures", failures),
			slog.Time("locked_until", *lockedUntil))
	}

	return tripped, lockedUntil, nil
}

// RegisterAmbiguous is called for ambiguous verdicts. By default it leaves
// the counter untouched; with escalation configured it counts like a
// failure.
func (s *LockoutService) RegisterAmbiguous(ctx context.Context, accountID string) (bool, *time.Time, error) {
	if !s.config.EscalateAmbiguous {
		return false, nil, nil
	}
	return s.RegisterFailure(ctx, accountID)
}

// RegisterSuccess resets the counter to zero and clears any residual lock
// timestamp.
func (s *LockoutService) RegisterSuccess(ctx context.Context, accountID string) error {
	if err := s.repo.ResetFailures(ctx, accountID); err != nil {
		return fmt.Errorf("failed to reset failures: %w", err)
	}
	return nil
}

// Unlock is the administrative Locked -> Open transition.
func (s *LockoutService) Unlock(ctx context.Context, accountID string) error {
	if err := s.repo.ResetFailures(ctx, accountID); err != nil {
		return fmt.Errorf("failed to unlock account: %w", err)
	}
	s.logger.Info("account unlocked by administrator", slog.String("account_id", accountID))
	return nil
}
