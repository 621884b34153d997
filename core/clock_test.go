package core

import (
	"testing"
	"time"
)

func TestCoarseClock(t *testing.T) {
	clock := CoarseClock()
	// Allow the ticker to fire at least once
	time.Sleep(2 * time.Millisecond)

	diff := time.Since(clock())
	if diff < 0 {
		diff = -diff
	}

	// The cached time should be within 5ms of real time
	if diff > 5*time.Millisecond {
		t.Errorf("CoarseClock() drifted %v from time.Now()", diff)
	}
}

func TestCoarseClockIdempotent(t *testing.T) {
	// Calling multiple times must not start more goroutines or panic
	CoarseClock()
	CoarseClock()
	if CoarseClock()().IsZero() {
		t.Error("CoarseClock() returned zero time")
	}
}

func TestFixedClock(t *testing.T) {
	ts := time.Date(2026, 2, 18, 13, 0, 0, 0, time.UTC)
	if got := FixedClock(ts)(); !got.Equal(ts) {
		t.Errorf("FixedClock() = %v, want %v", got, ts)
	}
	if SystemClock().IsZero() {
		t.Error("SystemClock() returned zero time")
	}
}
