package models

import (
	"time"
)

// Account statuses
const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// Enrollment states for the biometric factor
const (
	EnrollmentNone     = "none"
	EnrollmentPending  = "pending"
	EnrollmentComplete = "complete"
)

type Account struct {
	ID               string
	Email            string
	Name             string
	PasswordHash     string
	Status           string // "active", "disabled" - deactivation is a flag, never a delete
	EnrollmentState  string // "none", "pending", "complete"
	BiometricEnabled bool
	FailedAttempts   int        // Consecutive failures, owned by LockoutService
	LockedUntil      *time.Time // Temporary lockout expiration
	TOTPSecret       *string    // Step-up factor secret, nil until setup
	TOTPEnabled      bool
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Locked reports whether the account is under an active lockout at ref time.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}
