package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/jortega/verid/internal/models"
	pkgauth "github.com/jortega/verid/pkg/auth"
	pkghttp "github.com/jortega/verid/pkg/http"
)

// writeServiceError translates sentinel errors from the decision core into
// HTTP responses. The core never formats user-facing text.
func writeServiceError(w http.ResponseWriter, err error) {
	var locked *models.AccountLockedError
	var secretErr *pkgauth.SecretValidationError

	switch {
	case errors.As(err, &locked):
		retryAfter := int(time.Until(locked.Until).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		pkghttp.WriteLocked(w, "Account temporarily locked", retryAfter)
	case errors.Is(err, models.ErrAccountLocked):
		pkghttp.WriteLocked(w, "Account temporarily locked", 1)
	case errors.As(err, &secretErr):
		pkghttp.WriteBadRequest(w, secretErr.Error())
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication failed")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Not permitted")
	case errors.Is(err, models.ErrDimensionMismatch),
		errors.Is(err, models.ErrInvalidSignature),
		errors.Is(err, models.ErrEmptyReferenceSet):
		pkghttp.WriteUnprocessable(w, err.Error())
	case errors.Is(err, models.ErrBiometricUnavailable):
		pkghttp.WriteForbidden(w, "Biometric factor not available for this account")
	case errors.Is(err, models.ErrSessionExpired):
		pkghttp.WriteUnauthorized(w, "Session has expired")
	case errors.Is(err, models.ErrSessionRevoked):
		pkghttp.WriteUnauthorized(w, "Session has been revoked")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrUnavailable):
		pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
