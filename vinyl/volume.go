package vinyl

import "github.com/cwbudde/algo-vinyl/dsp/core"

const (
	maxVolume        = 0.8
	volumeHysteresis = 0.02
)

// UpdateVolume scales a normalized level to the output volume. Changes
// smaller than the hysteresis step are dropped.
func (c *Controller) UpdateVolume(level float64) {
	v := core.Clamp01(level) * maxVolume
	if absDiff(v, c.lastVolume) > volumeHysteresis {
		c.sink.SetVolume(v)
		c.lastVolume = v
	}
}
