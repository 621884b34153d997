package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock supplies event timestamps.
type Clock func() time.Time

// SystemClock reads the wall clock on every call.
var SystemClock Clock = time.Now

// coarseResolution is how often the coarse clock refreshes.
const coarseResolution = 500 * time.Microsecond

var (
	coarseOnce sync.Once
	coarseNow  atomic.Pointer[time.Time]
)

// CoarseClock returns a Clock backed by a time cached every 500µs by a
// background goroutine. Timestamps may be up to one tick old. The
// goroutine is started on first use and runs for the lifetime of the
// process.
func CoarseClock() Clock {
	coarseOnce.Do(func() {
		t := time.Now()
		coarseNow.Store(&t)
		go func() {
			ticker := time.NewTicker(coarseResolution)
			for range ticker.C {
				t := time.Now()
				coarseNow.Store(&t)
			}
		}()
	})
	return coarseTime
}

func coarseTime() time.Time { return *coarseNow.Load() }

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
