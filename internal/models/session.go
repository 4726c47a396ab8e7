package models

import "time"

// Session is a grant issued after a successful verdict from either factor.
// Revoked is the only field that changes after creation.
type Session struct {
	Token     string
	AccountID string
	Factor    string // factor that produced the grant
	IPAddress string
	UserAgent string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Expired reports whether the session has passed its expiry at ref time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
