package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/verid/internal/models"
	pkglogger "github.com/jortega/verid/pkg/logger"
)

func newTestAuditService(store *MockAttemptStore) *AuditService {
	logger := slog.Default()
	return NewAuditService(store, pkglogger.NewAuditLogger(logger), logger)
}

func TestAuditService_RecordAttempt_Persists(t *testing.T) {
	var recorded *models.AuthAttempt
	store := &MockAttemptStore{
		RecordFunc: func(ctx context.Context, attempt *models.AuthAttempt) error {
			recorded = attempt
			return nil
		},
	}
	service := newTestAuditService(store)

	accountID := "acct-1"
	score := 0.42
	service.RecordAttempt(context.Background(), &models.AuthAttempt{
		AccountID: &accountID,
		Factor:    models.FactorBiometric,
		Outcome:   models.OutcomeAccept,
		Score:     &score,
	})

	require.NotNil(t, recorded)
	assert.Equal(t, models.OutcomeAccept, recorded.Outcome)
	require.NotNil(t, recorded.Score)
	assert.InDelta(t, 0.42, *recorded.Score, 1e-9)
}

func TestAuditService_RecordAttempt_SwallowsStoreError(t *testing.T) {
	store := &MockAttemptStore{
		RecordFunc: func(ctx context.Context, attempt *models.AuthAttempt) error {
			return errors.New("connection refused")
		},
	}
	service := newTestAuditService(store)

	// must not panic or surface the error
	service.RecordAttempt(context.Background(), &models.AuthAttempt{
		Factor:  models.FactorCredential,
		Outcome: models.OutcomeReject,
	})
}

func TestAuditService_History(t *testing.T) {
	store := &MockAttemptStore{
		ListByAccountFunc: func(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error) {
			assert.Equal(t, 50, limit)
			return []*models.AuthAttempt{{ID: "a1"}, {ID: "a2"}}, nil
		},
	}
	service := newTestAuditService(store)

	attempts, err := service.History(context.Background(), "acct-1", 50)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestAuditService_History_ClampsLimit(t *testing.T) {
	store := &MockAttemptStore{
		ListByAccountFunc: func(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error) {
			assert.Equal(t, 100, limit)
			return nil, nil
		},
	}
	service := newTestAuditService(store)

	_, err := service.History(context.Background(), "acct-1", 0)
	require.NoError(t, err)

	_, err = service.History(context.Background(), "acct-1", 10000)
	require.NoError(t, err)
}
