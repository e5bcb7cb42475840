package vinyl

import (
	"errors"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-vinyl/dsp/core"
	"github.com/cwbudde/algo-vinyl/dsp/envelope"
	"github.com/cwbudde/algo-vinyl/dsp/signal"
)

// ErrNilSink is returned by New when no sink is given.
var ErrNilSink = errors.New("vinyl: nil sink")

const (
	defaultIntensity   = 0.5
	defaultNoiseGain   = 0.025
	defaultFilterLeft  = 600.0
	defaultFilterRight = 650.0
	initialVolume      = 0.5

	// MinFilterHz and MaxFilterHz bound every tone filter write.
	MinFilterHz = 20.0
	MaxFilterHz = 20000.0
	// MaxDelayMs bounds every delay write.
	MaxDelayMs = 20.0
)

// Controller turns a clean signal path into simulated vinyl playback by
// modulating the parameters of a Sink.
type Controller struct {
	sink   Sink
	clock  Clock
	rng    Rand
	logger *slog.Logger

	enabled   bool
	intensity float64
	format    Format

	baseNoiseGain float64
	baseFilter    [2]float64
	delayMs       float64
	lastVolume    float64

	timers [NumArtifacts]artifactTimer
	needle needleDrop
	stats  Stats
}

// New returns a disabled controller driving sink. Call Setup once before
// the first Update to push the initial graph configuration.
func New(sink Sink, opts ...Option) (*Controller, error) {
	if sink == nil {
		return nil, ErrNilSink
	}

	c := &Controller{
		sink:          sink,
		intensity:     defaultIntensity,
		format:        Format78,
		baseNoiseGain: defaultNoiseGain,
		baseFilter:    [2]float64{defaultFilterLeft, defaultFilterRight},
		delayMs:       baseDelayMs,
		lastVolume:    -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.clock == nil {
		c.clock = NewSystemClock()
	}
	if c.rng == nil {
		c.rng = newPCG(timeSeed())
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	for a := range NumArtifacts {
		c.timers[a].next = millis(artifactSpecs[a].initial)
	}

	return c, nil
}

// Setup writes the initial graph configuration: tone filters, delays,
// sources, envelopes and mixer gains, then switches to normal mode.
func (c *Controller) Setup() {
	s := c.sink

	s.SetVolume(initialVolume)

	s.SetFilterFrequency(Left, defaultFilterLeft)
	s.SetFilterResonance(Left, 2.5)
	s.SetFilterFrequency(Right, defaultFilterRight)
	s.SetFilterResonance(Right, 2.6)

	s.SetDelay(Left, baseDelayMs)
	s.SetDelay(Right, baseDelayMs)
	c.delayMs = baseDelayMs

	s.SetAmplitude(SourceSurfaceNoise, 1.0)

	s.SetWaveform(SourceLightPop, signal.Triangle)
	s.SetFrequency(SourceLightPop, 150)
	s.SetAmplitude(SourceLightPop, 1.2)
	s.SetEnvelope(EnvelopeLightPop, envelope.Shape{Hold: 1, Decay: 8})

	s.SetWaveform(SourceDeepPop, signal.Sawtooth)
	s.SetFrequency(SourceDeepPop, 40)
	s.SetAmplitude(SourceDeepPop, 1.5)
	s.SetEnvelope(EnvelopeDeepPop, envelope.Shape{Hold: 3, Decay: 25})

	s.SetAmplitude(SourceScratch, 1.3)
	s.SetEnvelope(EnvelopeScratch, envelope.Shape{Hold: 8, Decay: 40})

	s.SetWaveform(SourceNeedleDrop, signal.Sawtooth)
	s.SetFrequency(SourceNeedleDrop, 120)
	s.SetAmplitude(SourceNeedleDrop, 0.6)
	s.SetAmplitude(SourceNeedleNoise, 0.4)
	s.SetEnvelope(EnvelopeNeedleDrop, envelope.Shape{
		Attack: 5, Hold: 30, Decay: 200, Sustain: 0.05, Release: 150,
	})

	setGains(s, MixerNeedleDrop, 1.0, 0.7, 0, 0)
	setGains(s, MixerCrackles, 1.0, 1.0, 1.0, 0)
	setGains(s, MixerEffects, 1.0, 0, 0, 0)

	c.setNormalMode()
}

// ToggleEnabled switches between clean and vinyl playback. Enabling
// starts a needle drop; disabling leaves a running one to finish.
func (c *Controller) ToggleEnabled() {
	c.enabled = !c.enabled
	if c.enabled {
		c.logger.Info("vinyl enabled", "format", c.format.String(), "intensity", c.intensity)
		c.setVinylMode()
		c.triggerNeedleDrop()
		return
	}
	c.logger.Info("vinyl disabled")
	c.setNormalMode()
}

// ToggleFormat selects the next format. The preset is applied right away
// when vinyl playback is on, otherwise on the next enable.
func (c *Controller) ToggleFormat() {
	c.format = c.format.Next()
	c.logger.Info("format changed", "format", c.format.String(), "enabled", c.enabled)
	if c.enabled {
		c.setVinylMode()
	}
}

// Update runs one control cycle with the given intensity.
func (c *Controller) Update(intensity float64) {
	c.intensity = core.Clamp01(intensity)
	now := c.clock.Now()

	if c.enabled {
		t := seconds(now)
		c.updateNoiseLevel(t)
		c.updateEffectsGain()
		c.updateFluctuation(t)
	}
	c.advanceNeedleDrop(now)
	c.updateArtifacts(now)
}

// Poll runs one control cycle and feeds the volume smoother.
func (c *Controller) Poll(intensity, volume float64) {
	c.Update(intensity)
	c.UpdateVolume(volume)
}

// Enabled reports whether vinyl playback is on.
func (c *Controller) Enabled() bool { return c.enabled }

// Format returns the selected format.
func (c *Controller) Format() Format { return c.format }

// Intensity returns the intensity of the last cycle.
func (c *Controller) Intensity() float64 { return c.intensity }

// NeedleDropActive reports whether a needle drop is playing.
func (c *Controller) NeedleDropActive() bool { return c.needle.active }

// DelayTime returns the last accepted left delay in milliseconds.
func (c *Controller) DelayTime() float64 { return c.delayMs }

// Volume returns the last volume written to the sink, or -1 before the
// first UpdateVolume.
func (c *Controller) Volume() float64 { return c.lastVolume }

// Stats returns a copy of the scheduler counters.
func (c *Controller) Stats() Stats { return c.stats }

func (c *Controller) setNormalMode() {
	for _, m := range outputMixers {
		setGains(c.sink, m, 0, 1, 0, 0)
	}
}

func (c *Controller) setVinylMode() {
	p := c.format.Preset()
	c.baseFilter = [2]float64{p.FilterLeftHz, p.FilterRightHz}
	c.baseNoiseGain = p.NoiseGain

	for _, m := range outputMixers {
		c.sink.SetGain(m, ChannelFiltered, p.FilteredGain)
		c.sink.SetGain(m, ChannelDirect, p.DirectGain)
	}

	t := seconds(c.clock.Now())
	c.updateNoiseLevel(t)
	c.updateEffectsGain()
	c.updateTone(t)
}

func (c *Controller) setFilter(side Side, hz float64) {
	c.sink.SetFilterFrequency(side, core.Clamp(hz, MinFilterHz, MaxFilterHz))
}

func (c *Controller) setDelay(side Side, ms float64) {
	c.sink.SetDelay(side, core.Clamp(ms, 0, MaxDelayMs))
}

func setGains(s Sink, m Mixer, g0, g1, g2, g3 float64) {
	s.SetGain(m, 0, g0)
	s.SetGain(m, 1, g1)
	s.SetGain(m, 2, g2)
	s.SetGain(m, 3, g3)
}

func absDiff(a, b float64) float64 {
	return math.Abs(a - b)
}
