package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jortega/verid/internal/models"
	pkglogger "github.com/jortega/verid/pkg/logger"
)

// AttemptStore is the append-only half of the audit trail
type AttemptStore interface {
	Record(ctx context.Context, attempt *models.AuthAttempt) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error)
}

// AuditService dual-writes every classified attempt: a structured log line
// for the streaming consumer and a durable row in the append-only table.
// The orchestrator calls it exactly once per attempt.
type AuditService struct {
	repo   AttemptStore
	audit  *pkglogger.AuditLogger
	logger *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo AttemptStore, audit *pkglogger.AuditLogger, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		audit:  audit,
		logger: logger,
	}
}

// RecordAttempt emits the audit record for one attempt. Persistence
// failures are logged and swallowed: a broken audit store must not turn a
// classified verdict into an authentication error.
func (s *AuditService) RecordAttempt(ctx context.Context, attempt *models.AuthAttempt) {
	event := pkglogger.AttemptEvent{
		Factor:    attempt.Factor,
		Outcome:   attempt.Outcome,
		Score:     attempt.Score,
		IPAddress: attempt.IPAddress,
		UserAgent: attempt.UserAgent,
	}
	if attempt.AccountID != nil {
		event.AccountID = *attempt.AccountID
	}
	if attempt.FailureReason != nil {
		event.FailureReason = *attempt.FailureReason
	}
	s.audit.LogAttempt(event)

	if err := s.repo.Record(ctx, attempt); err != nil {
		s.logger.Error("failed to persist auth attempt",
			slog.String("factor", attempt.Factor),
			slog.String("outcome", attempt.Outcome),
			slog.Any("error", err))
	}
}

// History returns the most recent attempts for one account, newest first.
func (s *AuditService) History(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	attempts, err := s.repo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}
