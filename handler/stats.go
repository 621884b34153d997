package handler

import (
	"sync/atomic"
)

// Stats tracks handler statistics
type Stats struct {
	// ProcessedTotal counts events written with the primary formatter
	ProcessedTotal uint64
	// FallbackTotal counts events written with the fallback formatter
	FallbackTotal uint64
	// FailedTotal counts events that could not be written at all
	FailedTotal uint64
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	atomic.AddUint64(&s.ProcessedTotal, 1)
}

// IncrementFallback atomically increments the fallback counter
func (s *Stats) IncrementFallback() {
	atomic.AddUint64(&s.FallbackTotal, 1)
}

// IncrementFailed atomically increments the failed counter
func (s *Stats) IncrementFailed() {
	atomic.AddUint64(&s.FailedTotal, 1)
}

// GetProcessed returns the processed count
func (s *Stats) GetProcessed() uint64 {
	return atomic.LoadUint64(&s.ProcessedTotal)
}

// GetFallback returns the fallback count
func (s *Stats) GetFallback() uint64 {
	return atomic.LoadUint64(&s.FallbackTotal)
}

// GetFailed returns the failed count
func (s *Stats) GetFailed() uint64 {
	return atomic.LoadUint64(&s.FailedTotal)
}

// Reset resets all counters to zero
func (s *Stats) Reset() {
	atomic.StoreUint64(&s.ProcessedTotal, 0)
	atomic.StoreUint64(&s.FallbackTotal, 0)
	atomic.StoreUint64(&s.FailedTotal, 0)
}

// Snapshot is a point-in-time copy of Stats
type Snapshot struct {
	ProcessedTotal uint64
	FallbackTotal  uint64
	FailedTotal    uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		ProcessedTotal: s.GetProcessed(),
		FallbackTotal:  s.GetFallback(),
		FailedTotal:    s.GetFailed(),
	}
}
