package models

import "time"

// Authentication factors
const (
	FactorCredential = "credential"
	FactorBiometric  = "biometric"
	FactorTOTP       = "totp"
)

// Attempt outcomes
const (
	OutcomeAccept    = "accept"
	OutcomeReject    = "reject"
	OutcomeAmbiguous = "ambiguous"
	OutcomeLocked    = "locked"
)

// AuthAttempt is one row of the append-only audit trail. Records are never
// mutated after creation; corrections are appended as new attempts.
type AuthAttempt struct {
	ID            string
	AccountID     *string // nil when the identifier resolved to no account
	Factor        string
	Outcome       string
	Score         *float64 // best match distance, biometric attempts only
	FailureReason *string
	IPAddress     string
	UserAgent     string
	CreatedAt     time.Time
}
