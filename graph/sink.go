package graph

import (
	"github.com/cwbudde/algo-vinyl/dsp/core"
	"github.com/cwbudde/algo-vinyl/dsp/filter/design"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

func validSide(side vinyl.Side) bool {
	return side == vinyl.Left || side == vinyl.Right
}

func validSource(src vinyl.Source) bool {
	return src >= 0 && src < vinyl.NumSources
}

// SetFilterFrequency implements vinyl.Sink.
func (g *Graph) SetFilterFrequency(side vinyl.Side, hz float64) {
	if !validSide(side) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.toneHz[side] = core.Clamp(hz, vinyl.MinFilterHz, design.MaxFrequency(g.cfg.SampleRate))
	g.redesignTone(side)
}

// SetFilterResonance implements vinyl.Sink.
func (g *Graph) SetFilterResonance(side vinyl.Side, q float64) {
	if !validSide(side) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.toneQ[side] = core.Clamp(q, minToneQ, maxToneQ)
	g.redesignTone(side)
}

func (g *Graph) redesignTone(side vinyl.Side) {
	g.tone[side].SetCoefficients(design.Lowpass(g.toneHz[side], g.toneQ[side], g.cfg.SampleRate))
}

// SetDelay implements vinyl.Sink.
func (g *Graph) SetDelay(side vinyl.Side, ms float64) {
	if !validSide(side) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.delayMs[side] = core.Clamp(ms, 0, vinyl.MaxDelayMs)
}

// SetWaveform implements vinyl.Sink. Noise sources ignore it.
func (g *Graph) SetWaveform(src vinyl.Source, w vinyl.Waveform) {
	if !validSource(src) || g.oscs[src] == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.oscs[src].SetWaveform(w)
}

// SetFrequency implements vinyl.Sink. Noise sources ignore it.
func (g *Graph) SetFrequency(src vinyl.Source, hz float64) {
	if !validSource(src) || g.oscs[src] == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.oscs[src].SetFrequency(core.Clamp(hz, 0, design.MaxFrequency(g.cfg.SampleRate)))
}

// SetAmplitude implements vinyl.Sink.
func (g *Graph) SetAmplitude(src vinyl.Source, amp float64) {
	if !validSource(src) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.oscs[src] != nil:
		g.oscs[src].SetAmplitude(amp)
	case g.noises[src] != nil:
		g.noises[src].SetAmplitude(amp)
	case src == vinyl.SourceSurfaceNoise:
		g.surface.SetAmplitude(amp)
	}
}

// SetEnvelope implements vinyl.Sink.
func (g *Graph) SetEnvelope(env vinyl.Envelope, shape vinyl.EnvelopeShape) {
	if env < 0 || env >= vinyl.NumEnvelopes {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.envs[env].SetShape(shape)
}

// NoteOn implements vinyl.Sink.
func (g *Graph) NoteOn(env vinyl.Envelope) {
	if env < 0 || env >= vinyl.NumEnvelopes {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.envs[env].NoteOn()
}

// NoteOff implements vinyl.Sink.
func (g *Graph) NoteOff(env vinyl.Envelope) {
	if env < 0 || env >= vinyl.NumEnvelopes {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.envs[env].NoteOff()
}

// SetGain implements vinyl.Sink. Out-of-range channels are ignored.
func (g *Graph) SetGain(m vinyl.Mixer, ch int, gain float64) {
	if m < 0 || m >= vinyl.NumMixers {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.mixers[m].SetGain(ch, gain)
}

// SetVolume implements vinyl.Sink.
func (g *Graph) SetVolume(level float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.volume = core.Clamp01(level)
}
