package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/verid/internal/models"
)

func adminRequest(method, target, accountID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("accountID", accountID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminHandler_Unlock(t *testing.T) {
	unlocked := ""
	unlocker := &MockAccountUnlocker{
		UnlockFunc: func(ctx context.Context, accountID string) error {
			unlocked = accountID
			return nil
		},
	}
	handler := NewAdminHandler(unlocker, &MockAttemptHistoryReader{}, &MockAccountStatusUpdater{})

	rec := httptest.NewRecorder()
	handler.Unlock(rec, adminRequest(http.MethodPost, "/admin/accounts/acct-1/unlock", "acct-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acct-1", unlocked)
}

func TestAdminHandler_Unlock_UnknownAccount(t *testing.T) {
	unlocker := &MockAccountUnlocker{
		UnlockFunc: func(ctx context.Context, accountID string) error {
			return models.ErrNotFound
		},
	}
	handler := NewAdminHandler(unlocker, &MockAttemptHistoryReader{}, &MockAccountStatusUpdater{})

	rec := httptest.NewRecorder()
	handler.Unlock(rec, adminRequest(http.MethodPost, "/admin/accounts/missing/unlock", "missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandler_Disable(t *testing.T) {
	var gotStatus string
	accounts := &MockAccountStatusUpdater{
		UpdateStatusFunc: func(ctx context.Context, id, status string) error {
			gotStatus = status
			return nil
		},
	}
	handler := NewAdminHandler(&MockAccountUnlocker{}, &MockAttemptHistoryReader{}, accounts)

	rec := httptest.NewRecorder()
	handler.Disable(rec, adminRequest(http.MethodPost, "/admin/accounts/acct-1/disable", "acct-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AccountStatusDisabled, gotStatus)
}

func TestAdminHandler_Attempts(t *testing.T) {
	accountID := "acct-1"
	score := 0.91
	reason := "no_match"
	attempts := &MockAttemptHistoryReader{
		HistoryFunc: func(ctx context.Context, id string, limit int) ([]*models.AuthAttempt, error) {
			assert.Equal(t, 25, limit)
			return []*models.AuthAttempt{{
				ID:            "att-1",
				AccountID:     &accountID,
				Factor:        models.FactorBiometric,
				Outcome:       models.OutcomeReject,
				Score:         &score,
				FailureReason: &reason,
				IPAddress:     "10.0.0.1",
				CreatedAt:     time.Now(),
			}}, nil
		},
	}
	handler := NewAdminHandler(&MockAccountUnlocker{}, attempts, &MockAccountStatusUpdater{})

	rec := httptest.NewRecorder()
	handler.Attempts(rec, adminRequest(http.MethodGet, "/admin/accounts/acct-1/attempts?limit=25", "acct-1"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Attempts []AttemptResponse `json:"attempts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Attempts, 1)
	assert.Equal(t, models.OutcomeReject, resp.Attempts[0].Outcome)
	require.NotNil(t, resp.Attempts[0].Score)
	assert.InDelta(t, 0.91, *resp.Attempts[0].Score, 1e-9)
}

func TestAdminHandler_Attempts_InvalidLimit(t *testing.T) {
	handler := NewAdminHandler(&MockAccountUnlocker{}, &MockAttemptHistoryReader{}, &MockAccountStatusUpdater{})

	rec := httptest.NewRecorder()
	handler.Attempts(rec, adminRequest(http.MethodGet, "/admin/accounts/acct-1/attempts?limit=zero", "acct-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
