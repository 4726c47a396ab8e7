package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingDelay_NoDelayOnGrant(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 200, JitterMs: 0})

	start := time.Now()
	td.Wait(true)

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTimingDelay_DelaysOnFailure(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 30, JitterMs: 0})

	start := time.Now()
	td.Wait(false)

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestTimingDelay_WaitFromCountsElapsedWork(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 40, JitterMs: 0})

	start := time.Now().Add(-35 * time.Millisecond) // pretend 35ms of work happened
	td.WaitFrom(start, false)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 80*time.Millisecond)
}

func TestTimingDelay_DelayOnGrantConfigured(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 20, JitterMs: 0, DelayOnGrant: true})

	start := time.Now()
	td.Wait(true)

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
