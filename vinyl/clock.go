package vinyl

import "time"

// Clock is a monotonic time source. Now returns the time elapsed since an
// arbitrary fixed epoch.
type Clock interface {
	Now() time.Duration
}

// Rand draws uniform integers in [0, n). *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// SystemClock measures time from its creation using the monotonic wall clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock whose epoch is now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now implements Clock.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Offline rendering and tests use it
// to step time in exact control-cycle increments.
type ManualClock struct {
	now time.Duration
}

// Now implements Clock.
func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward by d. Negative values are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

// Set moves the clock to t if t is not in the past.
func (c *ManualClock) Set(t time.Duration) {
	if t > c.now {
		c.now = t
	}
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
