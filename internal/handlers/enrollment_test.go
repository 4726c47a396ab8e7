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

func TestEnrollmentHandler_Enroll_Success(t *testing.T) {
	service := &MockEnrollmentService{
		EnrollFunc: func(ctx context.Context, accountID string, vector []float64) (string, error) {
			assert.Equal(t, testAccountID, accountID)
			assert.Len(t, vector, 128)
			return "sig-1", nil
		},
	}
	handler := NewEnrollmentHandler(service)

	req := authedRequest(t, http.MethodPost, "/biometric/enroll", EnrollRequest{Vector: make([]float64, 128)})
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "sig-1", resp["signature_id"])
}

func TestEnrollmentHandler_Enroll_RequiresAuth(t *testing.T) {
	handler := NewEnrollmentHandler(&MockEnrollmentService{})

	req := jsonRequest(t, http.MethodPost, "/biometric/enroll", EnrollRequest{Vector: make([]float64, 128)})
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnrollmentHandler_Enroll_DimensionMismatchReturns422(t *testing.T) {
	service := &MockEnrollmentService{
		EnrollFunc: func(ctx context.Context, accountID string, vector []float64) (string, error) {
			return "", models.ErrDimensionMismatch
		},
	}
	handler := NewEnrollmentHandler(service)

	req := authedRequest(t, http.MethodPost, "/biometric/enroll", EnrollRequest{Vector: make([]float64, 64)})
	rec := httptest.NewRecorder()
	handler.Enroll(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEnrollmentHandler_Status_NeverLeaksVectors(t *testing.T) {
	service := &MockEnrollmentService{
		FetchFunc: func(ctx context.Context, accountID string) ([]*models.BiometricSignature, error) {
			return []*models.BiometricSignature{{
				ID:           "sig-1",
				AccountID:    accountID,
				Vector:       []float64{0.123456789, 0.987654321},
				ModelVersion: "facenet-v1",
				CreatedAt:    time.Now(),
			}}, nil
		},
	}
	handler := NewEnrollmentHandler(service)

	req := authedRequest(t, http.MethodGet, "/biometric/status", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "0.123456789")

	var resp struct {
		Enrolled   bool                `json:"enrolled"`
		Signatures []SignatureResponse `json:"signatures"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Enrolled)
	require.Len(t, resp.Signatures, 1)
	assert.Equal(t, "facenet-v1", resp.Signatures[0].ModelVersion)
}

func TestEnrollmentHandler_Supersede(t *testing.T) {
	service := &MockEnrollmentService{
		SupersedeFunc: func(ctx context.Context, accountID string, vector []float64) (string, error) {
			return "sig-new", nil
		},
	}
	handler := NewEnrollmentHandler(service)

	req := authedRequest(t, http.MethodPut, "/biometric/enroll", EnrollRequest{Vector: make([]float64, 128)})
	rec := httptest.NewRecorder()
	handler.Supersede(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestEnrollmentHandler_Revoke(t *testing.T) {
	var gotAccount, gotSignature string
	service := &MockEnrollmentService{
		RevokeFunc: func(ctx context.Context, accountID, signatureID string) error {
			gotAccount = accountID
			gotSignature = signatureID
			return nil
		},
	}
	handler := NewEnrollmentHandler(service)

	req := authedRequest(t, http.MethodDelete, "/biometric/signatures/sig-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("signatureID", "sig-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.Revoke(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAccountID, gotAccount)
	assert.Equal(t, "sig-1", gotSignature)
}
