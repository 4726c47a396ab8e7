package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost         = 12
	SessionTokenLength = 32 // 256 bits
	MinSecretLen       = 8
	MaxSecretLen       = 128
)

// SecretValidationError holds validation error details (internal use only)
type SecretValidationError struct {
	Errors []string
}

func (e *SecretValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "secret validation failed"
	}
	// Generic message to callers - never expose which requirement failed
	return "invalid secret"
}

// Common weak secrets to reject
var commonSecrets = map[string]bool{
	"password":    true,
	"12345678":    true,
	"qwerty":      true,
	"abc123":      true,
	"password123": true,
	"123456":      true,
	"admin":       true,
	"letmein":     true,
	"welcome":     true,
	"trustno1":    true,
	"iloveyou":    true,
	"passw0rd":    true,
}

// HashSecret produces a salted one-way bcrypt hash of a credential secret.
// The plaintext is never stored or logged anywhere in this codebase.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashedBytes), nil
}

// CompareSecret checks a plaintext secret against a stored hash. bcrypt's
// comparison is constant-time over the digest, closing the timing side
// channel between near-miss and far-miss secrets.
func CompareSecret(hashedSecret, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
}

// GenerateSessionToken returns an unguessable opaque token. Tokens are pure
// randomness, never derived from account data, so a token cannot be forged
// from a known identity.
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// ValidateSecret enforces minimum credential strength at registration
func ValidateSecret(secret string) error {
	errs := make([]string, 0)

	if len(secret) < MinSecretLen {
		errs = append(errs, fmt.Sprintf("must be at least %d characters", MinSecretLen))
	}
	if len(secret) > MaxSecretLen {
		errs = append(errs, fmt.Sprintf("must be at most %d characters", MaxSecretLen))
	}

	hasUpper := false
	hasLower := false
	hasDigit := false

	for _, r := range secret {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		errs = append(errs, "must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "must contain at least one digit")
	}

	if commonSecrets[strings.ToLower(secret)] {
		errs = append(errs, "is too common")
	}

	if len(errs) > 0 {
		return &SecretValidationError{Errors: errs}
	}

	return nil
}
