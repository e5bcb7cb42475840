// Package mixer provides the four-input summing mixer of the playback graph.
//
// Gain changes are ramped linearly across the next processed block so that
// per-cycle parameter writes from the controller do not produce zipper noise.
package mixer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-vinyl/dsp/core"
)

// Channels is the number of inputs of a Mixer.
const Channels = 4

// Mixer sums up to four inputs with independent gains.
type Mixer struct {
	target  [Channels]float64
	current [Channels]float64

	ramp    []float64
	scratch []float64
}

// New returns a mixer with all gains at 0, sized for blocks of up to blockSize samples.
func New(blockSize int) (*Mixer, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("mixer block size must be > 0: %d", blockSize)
	}
	return &Mixer{
		ramp:    make([]float64, blockSize),
		scratch: make([]float64, blockSize),
	}, nil
}

// SetGain sets the gain of channel ch. Out-of-range channels are ignored.
func (m *Mixer) SetGain(ch int, gain float64) {
	if ch < 0 || ch >= Channels {
		return
	}
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		gain = 0
	}
	m.target[ch] = gain
}

// Gain returns the target gain of channel ch.
func (m *Mixer) Gain(ch int) float64 {
	if ch < 0 || ch >= Channels {
		return 0
	}
	return m.target[ch]
}

// Gains returns all target gains.
func (m *Mixer) Gains() [Channels]float64 {
	return m.target
}

// Snap makes the target gains effective immediately, skipping the ramp.
func (m *Mixer) Snap() {
	m.current = m.target
}

// Process writes the weighted sum of inputs into dst. Nil inputs are
// treated as silence. Inputs must be at least len(dst) long and dst must not
// exceed the block size given to New.
func (m *Mixer) Process(dst []float64, inputs [Channels][]float64) {
	n := len(dst)
	core.Zero(dst)
	ramp := m.ramp[:n]
	scratch := m.scratch[:n]

	for ch, in := range inputs {
		from, to := m.current[ch], m.target[ch]
		m.current[ch] = to
		if in == nil || (from == 0 && to == 0) {
			continue
		}

		core.GainRamp(ramp, from, to)
		vecmath.MulBlock(scratch, in[:n], ramp)
		for i, v := range scratch {
			dst[i] += v
		}
	}
}
