package vinyl

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cwbudde/algo-vinyl/dsp/core"
)

// Option configures a Controller. Invalid values are ignored.
type Option func(*Controller)

// WithClock sets the time source. The default is a SystemClock.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRand sets the random source used by the artifact scheduler.
func WithRand(rng Rand) Option {
	return func(c *Controller) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithSeed seeds a PCG generator for the artifact scheduler.
func WithSeed(seed uint64) Option {
	return func(c *Controller) {
		c.rng = newPCG(seed)
	}
}

// WithFormat sets the initial format.
func WithFormat(f Format) Option {
	return func(c *Controller) {
		if f.Valid() {
			c.format = f
		}
	}
}

// WithIntensity sets the initial intensity, clamped to [0,1].
func WithIntensity(intensity float64) Option {
	return func(c *Controller) {
		c.intensity = core.Clamp01(intensity)
	}
}

// WithLogger routes mode changes and ignored triggers to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newPCG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func timeSeed() uint64 {
	return uint64(time.Now().UnixNano())
}
