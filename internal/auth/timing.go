package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for failure-latency equalization
type TimingConfig struct {
	BaseDelayMs  int  // fixed delay in milliseconds
	JitterMs     int  // random delay range in milliseconds
	DelayOnGrant bool // if true, delay on success too
}

// TimingDelay pads authentication failures so "unknown account" and "wrong
// secret" take indistinguishable time from the outside.
type TimingDelay struct {
	config TimingConfig
}

// NewTimingDelay creates a new TimingDelay instance
func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// cryptoRandIntn returns a secure random number in [0, max)
func cryptoRandIntn(max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	randomBytes := make([]byte, 8)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return 0, err
	}

	randomValue := binary.BigEndian.Uint64(randomBytes)
	return int(randomValue % uint64(max)), nil
}

func (td *TimingDelay) target() time.Duration {
	delay := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.JitterMs > 0 {
		if jitter, err := cryptoRandIntn(td.config.JitterMs); err == nil {
			delay += time.Duration(jitter) * time.Millisecond
		}
	}
	return delay
}

// Wait applies the delay based on outcome
func (td *TimingDelay) Wait(granted bool) {
	if granted && !td.config.DelayOnGrant {
		return
	}
	time.Sleep(td.target())
}

// WaitFrom applies the delay relative to a start time, so work already done
// counts toward the target
func (td *TimingDelay) WaitFrom(startTime time.Time, granted bool) {
	if granted && !td.config.DelayOnGrant {
		return
	}

	targetDelay := td.target()
	elapsed := time.Since(startTime)
	if elapsed < targetDelay {
		time.Sleep(targetDelay - elapsed)
	}
}
