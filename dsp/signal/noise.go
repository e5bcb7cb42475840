package signal

import "math"

// WhiteNoise is a uniform noise source driven by a xorshift32 generator.
type WhiteNoise struct {
	state     uint32
	amplitude float64
}

// NewWhiteNoise returns a unit-amplitude source. Seed 0 is mapped to 1.
func NewWhiteNoise(seed uint32) *WhiteNoise {
	if seed == 0 {
		seed = 1
	}
	return &WhiteNoise{state: seed, amplitude: 1}
}

// SetAmplitude sets the peak amplitude.
func (n *WhiteNoise) SetAmplitude(amp float64) {
	if amp < 0 || math.IsNaN(amp) {
		amp = 0
	}
	n.amplitude = amp
}

// Amplitude returns the peak amplitude.
func (n *WhiteNoise) Amplitude() float64 { return n.amplitude }

// Next returns the next sample in [-amplitude, amplitude].
func (n *WhiteNoise) Next() float64 {
	return n.unit() * n.amplitude
}

// Process fills buf with the next len(buf) samples.
func (n *WhiteNoise) Process(buf []float64) {
	for i := range buf {
		buf[i] = n.Next()
	}
}

func (n *WhiteNoise) unit() float64 {
	n.state ^= n.state << 13
	n.state ^= n.state >> 17
	n.state ^= n.state << 5
	return 2*float64(n.state)/float64(^uint32(0)) - 1
}

// PinkNoise shapes white noise to a -3 dB/octave slope with Paul Kellet's
// economy filter.
type PinkNoise struct {
	white      WhiteNoise
	b0, b1, b2 float64
}

// NewPinkNoise returns a unit-amplitude pink source.
func NewPinkNoise(seed uint32) *PinkNoise {
	return &PinkNoise{white: *NewWhiteNoise(seed)}
}

// SetAmplitude sets the output scale.
func (p *PinkNoise) SetAmplitude(amp float64) {
	p.white.SetAmplitude(amp)
}

// Amplitude returns the output scale.
func (p *PinkNoise) Amplitude() float64 { return p.white.amplitude }

// Next returns the next sample.
func (p *PinkNoise) Next() float64 {
	w := p.white.unit()
	p.b0 = 0.99765*p.b0 + w*0.0990460
	p.b1 = 0.96300*p.b1 + w*0.2965164
	p.b2 = 0.57000*p.b2 + w*1.0526913
	// Kellet's sum peaks near 4.5x the white input; 0.2 brings it back near unity.
	return 0.2 * (p.b0 + p.b1 + p.b2 + w*0.1848) * p.white.amplitude
}

// Process fills buf with the next len(buf) samples.
func (p *PinkNoise) Process(buf []float64) {
	for i := range buf {
		buf[i] = p.Next()
	}
}
