package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jortega/verid/internal/models"
	pkgauth "github.com/jortega/verid/pkg/auth"
)

// SessionRepository defines the persistence operations for session grants
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForAccount(ctx context.Context, accountID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionService issues, validates, and revokes session grants.
type SessionService struct {
	repo   SessionRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(repo SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

// Issue creates a session for an account that just passed a factor. The
// token is unguessable randomness with no relation to the account identity.
func (s *SessionService) Issue(ctx context.Context, accountID, factor, ipAddress, userAgent string) (*models.Session, error) {
	token, err := pkgauth.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		Token:     token,
		AccountID: accountID,
		Factor:    factor,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("session issued",
		slog.String("account_id", accountID),
		slog.String("factor", factor),
		slog.Time("expires_at", session.ExpiresAt))

	return session, nil
}

// Validate resolves a token to its session. Revocation wins over expiry: a
// token that is both revoked and expired reports Revoked.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Revoked {
		return nil, models.ErrSessionRevoked
	}
	if session.Expired(time.Now()) {
		return nil, models.ErrSessionExpired
	}

	return session, nil
}

// Revoke invalidates a single session
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Revoke(ctx, token); err != nil {
		return err
	}
	s.logger.Info("session revoked")
	return nil
}

// RevokeAll invalidates every live session of an account ("log out
// everywhere")
func (s *SessionService) RevokeAll(ctx context.Context, accountID string) (int64, error) {
	n, err := s.repo.RevokeAllForAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("all sessions revoked",
		slog.String("account_id", accountID),
		slog.Int64("count", n))
	return n, nil
}

// PurgeExpired removes sessions past expiry; called by the background
// sweeper.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now())
}
