package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jortega/verid/internal/auth"
	"github.com/jortega/verid/internal/models"
	pkghttp "github.com/jortega/verid/pkg/http"
)

// EnrollmentServiceInterface defines the interface for reference signature
// management
type EnrollmentServiceInterface interface {
	Enroll(ctx context.Context, accountID string, vector []float64) (string, error)
	Supersede(ctx context.Context, accountID string, vector []float64) (string, error)
	Fetch(ctx context.Context, accountID string) ([]*models.BiometricSignature, error)
	Revoke(ctx context.Context, accountID, signatureID string) error
}

// EnrollmentHandler handles biometric enrollment HTTP requests. Every
// endpoint acts on the authenticated account; one holder can never touch
// another holder's references.
type EnrollmentHandler struct {
	service EnrollmentServiceInterface
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(service EnrollmentServiceInterface) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// EnrollRequest represents the request body for enrolling a reference
// signature
type EnrollRequest struct {
	Vector []float64 `json:"vector" validate:"required,min=1"`
}

// SignatureResponse is the public view of a stored reference. The vector
// itself is never returned over HTTP.
type SignatureResponse struct {
	ID                string `json:"id"`
	ModelVersion      string `json:"model_version"`
	VerificationCount int    `json:"verification_count"`
	CreatedAt         string `json:"created_at"`
}

// Enroll stores one more reference signature for the authenticated account
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id, err := h.service.Enroll(r.Context(), claims.AccountID, req.Vector)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]string{"signature_id": id})
}

// Supersede retires every active reference and enrolls a fresh capture
func (h *EnrollmentHandler) Supersede(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id, err := h.service.Supersede(r.Context(), claims.AccountID, req.Vector)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"signature_id": id})
}

// Status lists the active references of the authenticated account
func (h *EnrollmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	signatures, err := h.service.Fetch(r.Context(), claims.AccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]SignatureResponse, 0, len(signatures))
	for _, sig := range signatures {
		resp = append(resp, SignatureResponse{
			ID:                sig.ID,
			ModelVersion:      sig.ModelVersion,
			VerificationCount: sig.VerificationCount,
			CreatedAt:         sig.CreatedAt.Format(time.RFC3339),
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"enrolled":   len(resp) > 0,
		"signatures": resp,
	})
}

// Revoke deactivates a single reference signature
func (h *EnrollmentHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	signatureID := chi.URLParam(r, "signatureID")
	if signatureID == "" {
		pkghttp.WriteBadRequest(w, "Missing signature id")
		return
	}

	if err := h.service.Revoke(r.Context(), claims.AccountID, signatureID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
