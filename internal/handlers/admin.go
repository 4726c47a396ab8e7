package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jortega/verid/internal/models"
	pkghttp "github.com/jortega/verid/pkg/http"
)

// AccountUnlocker clears an account's lockout state
type AccountUnlocker interface {
	Unlock(ctx context.Context, accountID string) error
}

// AttemptHistoryReader returns recent attempts for one account
type AttemptHistoryReader interface {
	History(ctx context.Context, accountID string, limit int) ([]*models.AuthAttempt, error)
}

// AccountStatusUpdater flips the active/disabled flag
type AccountStatusUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
}

// AdminHandler handles operator endpoints: manual unlock, deactivation,
// and the audit trail.
type AdminHandler struct {
	unlocker AccountUnlocker
	attempts AttemptHistoryReader
	accounts AccountStatusUpdater
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(unlocker AccountUnlocker, attempts AttemptHistoryReader, accounts AccountStatusUpdater) *AdminHandler {
	return &AdminHandler{
		unlocker: unlocker,
		attempts: attempts,
		accounts: accounts,
	}
}

// AttemptResponse is the public view of one audit trail row
type AttemptResponse struct {
	ID            string   `json:"id"`
	Factor        string   `json:"factor"`
	Outcome       string   `json:"outcome"`
	Score         *float64 `json:"score,omitempty"`
	FailureReason *string  `json:"failure_reason,omitempty"`
	IPAddress     string   `json:"ip_address"`
	CreatedAt     string   `json:"created_at"`
}

// Unlock clears the lockout state of an account ahead of its cooldown
func (h *AdminHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		pkghttp.WriteBadRequest(w, "Missing account id")
		return
	}

	if err := h.unlocker.Unlock(r.Context(), accountID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
}

// Disable deactivates an account. Accounts are flagged, never deleted, so
// the audit trail keeps a valid subject.
func (h *AdminHandler) Disable(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		pkghttp.WriteBadRequest(w, "Missing account id")
		return
	}

	if err := h.accounts.UpdateStatus(r.Context(), accountID, models.AccountStatusDisabled); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}

// Reactivate re-enables a previously disabled account
func (h *AdminHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		pkghttp.WriteBadRequest(w, "Missing account id")
		return
	}

	if err := h.accounts.UpdateStatus(r.Context(), accountID, models.AccountStatusActive); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

// Attempts returns the recent audit trail for an account, newest first
func (h *AdminHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		pkghttp.WriteBadRequest(w, "Missing account id")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			pkghttp.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	attempts, err := h.attempts.History(r.Context(), accountID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		resp = append(resp, AttemptResponse{
			ID:            attempt.ID,
			Factor:        attempt.Factor,
			Outcome:       attempt.Outcome,
			Score:         attempt.Score,
			FailureReason: attempt.FailureReason,
			IPAddress:     attempt.IPAddress,
			CreatedAt:     attempt.CreatedAt.Format(time.RFC3339),
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"attempts": resp})
}
