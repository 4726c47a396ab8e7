package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the JWT claims for the access/refresh pair issued
// alongside a session grant.
type TokenClaims struct {
	Type      string `json:"type"` // "access" or "refresh"
	AccountID string `json:"account_id"`
	Email     string `json:"email,omitempty"`
	Factor    string `json:"factor,omitempty"` // factor that produced the grant
	jwt.RegisteredClaims
}
