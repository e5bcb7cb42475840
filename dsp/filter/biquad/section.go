package biquad

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-vinyl/dsp/core"
)

// Coefficients of one second-order section with a0 normalized to 1:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Response returns H(e^jw) at freqHz for the given sample rate.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// MagnitudeDB returns the gain at freqHz in dB, floored at -240 dB.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(math.Max(1e-12, cmplx.Abs(c.Response(freqHz, sampleRate))))
}

// Section runs Coefficients in transposed direct form II. The two state
// words survive coefficient changes, so a filter can be retuned between
// blocks without a click.
type Section struct {
	Coefficients

	s1, s2 float64
}

// NewSection returns a section with cleared state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// SetCoefficients retunes the section and keeps its state.
func (s *Section) SetCoefficients(c Coefficients) {
	s.Coefficients = c
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.s1
	s.s1 = core.FlushDenormals(s.B1*x - s.A1*y + s.s2)
	s.s2 = core.FlushDenormals(s.B2*x - s.A2*y)
	return y
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	s.ProcessBlockTo(buf, buf)
}

// ProcessBlockTo filters src into dst. dst may alias src; it must be at
// least len(src) long.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	c := s.Coefficients
	s1, s2 := s.s1, s.s2
	for i, x := range src {
		y := c.B0*x + s1
		s1 = c.B1*x - c.A1*y + s2
		s2 = c.B2*x - c.A2*y
		dst[i] = y
	}
	s.s1, s.s2 = core.FlushDenormals(s1), core.FlushDenormals(s2)
}

// Reset clears the state.
func (s *Section) Reset() {
	s.s1, s.s2 = 0, 0
}

// State returns the two state words.
func (s *Section) State() [2]float64 {
	return [2]float64{s.s1, s.s2}
}
