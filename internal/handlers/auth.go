package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jortega/verid/internal/auth"
	"github.com/jortega/verid/internal/models"
	"github.com/jortega/verid/internal/services"
	pkghttp "github.com/jortega/verid/pkg/http"
)

// AuthServiceInterface defines the interface for the decision core
type AuthServiceInterface interface {
	Register(ctx context.Context, email, name, secret string) (*models.Account, error)
	AuthenticateCredential(ctx context.Context, email, secret string, meta services.RequestMeta) (*services.AuthResult, error)
	AuthenticateBiometric(ctx context.Context, accountID string, probe []float64, meta services.RequestMeta) (*services.AuthResult, error)
	CompleteStepUp(ctx context.Context, accountID, code string, meta services.RequestMeta) (*services.AuthResult, error)
	SetupTOTP(ctx context.Context, accountID string) (*auth.TOTPSetup, error)
	ActivateTOTP(ctx context.Context, accountID, code string) error
}

// SessionServiceInterface defines the interface for session grants
type SessionServiceInterface interface {
	Validate(ctx context.Context, token string) (*models.Session, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, accountID string) (int64, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, sessions SessionServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,min=1"`
	Secret string `json:"secret" validate:"required"`
}

// CredentialLoginRequest represents the request body for the knowledge
// factor
type CredentialLoginRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Secret string `json:"secret" validate:"required"`
}

// BiometricLoginRequest represents the request body for the biometric
// factor. The probe is a raw encoding vector; dimensionality is checked by
// the matcher, not here.
type BiometricLoginRequest struct {
	AccountID string    `json:"account_id" validate:"required,uuid"`
	Probe     []float64 `json:"probe" validate:"required,min=1"`
}

// StepUpRequest represents the request body for resolving an ambiguous
// verdict with a one-time code
type StepUpRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

// ActivateTOTPRequest represents the request body for confirming a pending
// step-up secret
type ActivateTOTPRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// SessionTokenRequest carries an opaque session token
type SessionTokenRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
}

// Response DTOs

// AuthResponse represents a decided authentication attempt
type AuthResponse struct {
	Status          string   `json:"status"`
	AccountID       string   `json:"account_id"`
	SessionToken    string   `json:"session_token,omitempty"`
	ExpiresAt       string   `json:"expires_at,omitempty"`
	AccessToken     string   `json:"access_token,omitempty"`
	RefreshToken    string   `json:"refresh_token,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	StepUpAvailable bool     `json:"step_up_available,omitempty"`
}

// AccountResponse represents the public view of an account
type AccountResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EnrollmentState string `json:"enrollment_state"`
}

// SessionResponse represents the introspected state of a session
type SessionResponse struct {
	AccountID string `json:"account_id"`
	Factor    string `json:"factor"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

func toAuthResponse(result *services.AuthResult) AuthResponse {
	resp := AuthResponse{
		Status:          result.Status,
		AccountID:       result.AccountID,
		AccessToken:     result.AccessToken,
		RefreshToken:    result.RefreshToken,
		Score:           result.Score,
		Confidence:      result.Confidence,
		StepUpAvailable: result.StepUpAvailable,
	}
	if result.Session != nil {
		resp.SessionToken = result.Session.Token
		resp.ExpiresAt = result.Session.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}

func (h *AuthHandler) requestMeta(r *http.Request) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.UserAgent(),
	}
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	account, err := h.service.Register(r.Context(), req.Email, req.Name, req.Secret)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, AccountResponse{
		ID:              account.ID,
		Email:           account.Email,
		Name:            account.Name,
		Status:          account.Status,
		EnrollmentState: account.EnrollmentState,
	})
}

// LoginCredential evaluates the knowledge factor
func (h *AuthHandler) LoginCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	result, err := h.service.AuthenticateCredential(r.Context(), req.Email, req.Secret, h.requestMeta(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

// LoginBiometric evaluates the biometric factor for an identified account
func (h *AuthHandler) LoginBiometric(w http.ResponseWriter, r *http.Request) {
	var req BiometricLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.AuthenticateBiometric(r.Context(), req.AccountID, req.Probe, h.requestMeta(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == services.AuthStatusStepUpRequired {
		status = http.StatusAccepted
	}
	pkghttp.WriteJSON(w, status, toAuthResponse(result))
}

// StepUp resolves an ambiguous biometric verdict with a one-time code
func (h *AuthHandler) StepUp(w http.ResponseWriter, r *http.Request) {
	var req StepUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.CompleteStepUp(r.Context(), req.AccountID, req.Code, h.requestMeta(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

// SetupTOTP provisions the step-up factor for the authenticated account
func (h *AuthHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	setup, err := h.service.SetupTOTP(r.Context(), claims.AccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"secret":      setup.Secret,
		"url":         setup.URL,
		"qr_data_url": setup.QRDataURL,
	})
}

// ActivateTOTP confirms a pending step-up secret with a first valid code
func (h *AuthHandler) ActivateTOTP(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ActivateTOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ActivateTOTP(r.Context(), claims.AccountID, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

// IntrospectSession resolves an opaque session token to its current state
func (h *AuthHandler) IntrospectSession(w http.ResponseWriter, r *http.Request) {
	var req SessionTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	session, err := h.sessions.Validate(r.Context(), req.SessionToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SessionResponse{
		AccountID: session.AccountID,
		Factor:    session.Factor,
		IssuedAt:  session.IssuedAt.Format(time.RFC3339),
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout revokes a single session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req SessionTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.sessions.Revoke(r.Context(), req.SessionToken); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// LogoutAll revokes every live session of the authenticated account
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	n, err := h.sessions.RevokeAll(r.Context(), claims.AccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]int64{"revoked": n})
}
