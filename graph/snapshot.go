package graph

import (
	"github.com/cwbudde/algo-vinyl/dsp/envelope"
	"github.com/cwbudde/algo-vinyl/dsp/mixer"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

// Snapshot is a copy of the graph parameters at one point in time.
type Snapshot struct {
	FilterHz [2]float64
	FilterQ  [2]float64
	DelayMs  [2]float64

	Waveform  [vinyl.NumSources]vinyl.Waveform // oscillators only
	Frequency [vinyl.NumSources]float64        // oscillators only
	Amplitude [vinyl.NumSources]float64

	Envelope [vinyl.NumEnvelopes]envelope.Stage
	Shape    [vinyl.NumEnvelopes]vinyl.EnvelopeShape

	Gains  [vinyl.NumMixers][mixer.Channels]float64
	Volume float64
}

// Snapshot returns the current parameters.
func (g *Graph) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		FilterHz: g.toneHz,
		FilterQ:  g.toneQ,
		DelayMs:  g.delayMs,
		Volume:   g.volume,
	}
	for src := range vinyl.NumSources {
		switch {
		case g.oscs[src] != nil:
			s.Waveform[src] = g.oscs[src].Waveform()
			s.Frequency[src] = g.oscs[src].Frequency()
			s.Amplitude[src] = g.oscs[src].Amplitude()
		case g.noises[src] != nil:
			s.Amplitude[src] = g.noises[src].Amplitude()
		case src == vinyl.SourceSurfaceNoise:
			s.Amplitude[src] = g.surface.Amplitude()
		}
	}
	for e, env := range g.envs {
		s.Envelope[e] = env.Stage()
		s.Shape[e] = env.Shape()
	}
	for m, mx := range g.mixers {
		s.Gains[m] = mx.Gains()
	}
	return s
}
