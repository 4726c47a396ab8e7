package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-development-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.Biometric.Dimensions)
	assert.Equal(t, "euclidean", cfg.Biometric.Metric)
	assert.Equal(t, 0.4, cfg.Biometric.HighConfidence)
	assert.Equal(t, 0.6, cfg.Biometric.DecisionBoundary)
	assert.Equal(t, 0.8, cfg.Biometric.RejectFloor)

	assert.Equal(t, 5, cfg.Lockout.MaxFailures)
	assert.Equal(t, 15*time.Minute, cfg.Lockout.Cooldown)
	assert.False(t, cfg.Lockout.EscalateAmbiguous)

	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "verid", cfg.Database.Name)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-development-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WeakJWTSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresLongerSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "only-twenty-chars-xx")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BIOMETRIC_DECISION_BOUNDARY", "0.55")
	t.Setenv("BIOMETRIC_METRIC", "cosine")
	t.Setenv("LOCKOUT_MAX_FAILURES", "3")
	t.Setenv("LOCKOUT_ESCALATE_AMBIGUOUS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.55, cfg.Biometric.DecisionBoundary)
	assert.Equal(t, "cosine", cfg.Biometric.Metric)
	assert.Equal(t, 3, cfg.Lockout.MaxFailures)
	assert.True(t, cfg.Lockout.EscalateAmbiguous)
}

func TestLoad_EmailAlertsRequireFromAddress(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_ALERTS_ENABLED", "true")
	t.Setenv("EMAIL_FROM_ADDRESS", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "verid",
		Password: "pw", Name: "verid", SSLMode: "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=verid password=pw dbname=verid sslmode=require",
		cfg.DSN())
}
