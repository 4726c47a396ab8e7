package logger

import (
	"context"
	"log/slog"
	"time"
)

// AttemptEvent is one authentication attempt as seen by the audit stream.
type AttemptEvent struct {
	Factor        string
	Outcome       string
	AccountID     string
	Score         *float64 // biometric attempts only
	FailureReason string
	IPAddress     string
	UserAgent     string
}

// AuditLogger emits structured audit lines for every classified attempt.
// It is the streaming half of the audit trail; the attempt repository is
// the durable half.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAttempt logs a single authentication attempt. Accepts log at info,
// everything else at warn.
func (al *AuditLogger) LogAttempt(event AttemptEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth_attempt"),
		slog.String("factor", event.Factor),
		slog.String("outcome", event.Outcome),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AccountID != "" {
		attrs = append(attrs, slog.String("account_id", event.AccountID))
	}
	if event.Score != nil {
		attrs = append(attrs, slog.Float64("score", *event.Score))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}

	level := slog.LevelWarn
	if event.Outcome == "accept" {
		level = slog.LevelInfo
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogAccountAction logs non-attempt account events (registration,
// enrollment, unlock, session revocation).
func (al *AuditLogger) LogAccountAction(eventType, accountID string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		slog.String("account_id", accountID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
