package background

import (
	"context"
	"log/slog"
	"time"
)

// SessionPurger removes sessions past expiry
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// AttemptPruner removes audit rows older than the retention window
type AttemptPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically purges expired sessions and prunes the audit trail
// past its retention window. Revoked-but-unexpired sessions are left alone
// so a revoked token keeps answering Revoked until it expires.
type Sweeper struct {
	sessions  SessionPurger
	attempts  AttemptPruner
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
}

// NewSweeper creates a new Sweeper
func NewSweeper(
	sessions SessionPurger,
	attempts AttemptPruner,
	logger *slog.Logger,
	interval time.Duration,
	retention time.Duration,
) *Sweeper {
	return &Sweeper{
		sessions:  sessions,
		attempts:  attempts,
		logger:    logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.runSweep(ctx)
		case <-s.stopCh:
			s.logger.Info("sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("sweeper context cancelled")
			return
		}
	}
}

func (s *Sweeper) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	purged, err := s.sessions.PurgeExpired(sweepCtx)
	if err != nil {
		s.logger.Error("failed to purge expired sessions", slog.Any("error", err))
	} else if purged > 0 {
		s.logger.Info("expired sessions purged", slog.Int64("count", purged))
	}

	if s.retention <= 0 {
		return
	}

	pruned, err := s.attempts.DeleteOlderThan(sweepCtx, time.Now().Add(-s.retention))
	if err != nil {
		s.logger.Error("failed to prune auth attempts", slog.Any("error", err))
	} else if pruned > 0 {
		s.logger.Info("old auth attempts pruned", slog.Int64("count", pruned))
	}
}

// Stop halts the periodic sweep
func (s *Sweeper) Stop() {
	close(s.stopCh)
}
