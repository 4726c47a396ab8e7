package models

import "time"

// BiometricSignature is a stored reference feature vector for one account.
// Vectors are immutable once stored: re-enrollment supersedes old rows by
// clearing Active, it never edits them.
type BiometricSignature struct {
	ID                string
	AccountID         string
	Vector            []float64
	ModelVersion      string
	Active            bool
	VerificationCount int // accepted matches this reference produced
	CreatedAt         time.Time
}
