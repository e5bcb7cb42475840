package vinyl

import (
	"math"

	"github.com/cwbudde/algo-vinyl/dsp/core"
)

const (
	noiseDepth     = 0.02
	noiseRateHz    = 0.3
	noiseRightGain = 0.95

	baseDelayMs    = 5.0
	delayDepthMs   = 3.0
	delayRateHz    = 0.6
	maxDelayStepMs = 2.0
	delayRightGain = 1.02

	effectsScale = 0.5
)

// microVariation is the fast tone jitter shared by both formats.
var microVariation = Modulator{DepthHz: 20, RateHz: 8}

func (c *Controller) noiseLevel(t float64) float64 {
	return c.baseNoiseGain + noiseDepth*c.intensity*(0.5+0.5*math.Sin(2*math.Pi*noiseRateHz*t))
}

func (c *Controller) updateNoiseLevel(t float64) {
	g := c.noiseLevel(t)
	c.sink.SetGain(MixerOutputLeft, ChannelNoise, core.Clamp01(g))
	c.sink.SetGain(MixerOutputRight, ChannelNoise, core.Clamp01(g*noiseRightGain))
}

// updateEffectsGain owns the output effects channel while vinyl playback is
// on. In normal mode that channel stays at zero.
func (c *Controller) updateEffectsGain() {
	if !c.enabled {
		return
	}
	g := effectsScale * c.intensity
	if c.needle.active {
		g = needleDropEffectsGain
	}
	g = core.Clamp01(g)
	c.sink.SetGain(MixerOutputLeft, ChannelEffects, g)
	c.sink.SetGain(MixerOutputRight, ChannelEffects, g)
}

func (c *Controller) updateFluctuation(t float64) {
	if !c.enabled {
		return
	}
	c.updateTone(t)

	target := baseDelayMs + delayDepthMs*math.Sin(2*math.Pi*delayRateHz*t)
	if absDiff(target, c.delayMs) < maxDelayStepMs {
		c.delayMs = target
		c.setDelay(Left, c.delayMs)
		c.setDelay(Right, c.delayMs*delayRightGain)
	}
}

func (c *Controller) updateTone(t float64) {
	p := c.format.Preset()
	wow := p.Wow.at(t)
	flutter := p.Flutter.at(t)
	micro := microVariation.at(t)

	c.setFilter(Left, c.baseFilter[0]+wow+flutter+micro)
	c.setFilter(Right, c.baseFilter[1]+0.95*wow+1.05*flutter+0.9*micro)
}
