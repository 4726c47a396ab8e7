package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrUnavailable marks collaborator failures and timed-out decisions.
	// These are not evidence about the user: callers must never record them
	// as failed attempts or count them toward lockout.
	ErrUnavailable = errors.New("service unavailable")

	// Account state errors
	ErrAccountDisabled = errors.New("account is disabled")
	ErrAccountLocked   = errors.New("account is temporarily locked")

	// Biometric factor errors
	ErrDimensionMismatch    = errors.New("signature dimensionality mismatch")
	ErrInvalidSignature     = errors.New("malformed biometric signature")
	ErrEmptyReferenceSet    = errors.New("no enrolled reference signatures")
	ErrBiometricUnavailable = errors.New("biometric factor unavailable")

	// Session validation errors
	ErrSessionExpired = errors.New("session has expired")
	ErrSessionRevoked = errors.New("session has been revoked")
)

// AccountLockedError carries the lock expiry so the presentation layer can
// answer with a retry hint. It matches errors.Is(err, ErrAccountLocked).
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is temporarily locked until %s", e.Until.Format(time.RFC3339))
}

func (e *AccountLockedError) Unwrap() error {
	return ErrAccountLocked
}
