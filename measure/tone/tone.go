package tone

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/algo-vinyl/dsp/window"
)

// ErrEmptyInput is returned when there is nothing to analyze.
var ErrEmptyInput = errors.New("tone: empty input")

const minSize = 16

// Report summarizes the spectral balance of a signal.
type Report struct {
	RMS          float64 // linear
	Centroid     float64 // Hz
	HighFraction float64 // share of power above the cutoff, [0,1]
	Frames       int
}

// Analyzer computes averaged power spectra with a fixed FFT size.
// It is not safe for concurrent use.
type Analyzer struct {
	size       int
	sampleRate float64

	plan   *algofft.Plan[complex128]
	window []float64

	frame []float64
	in    []complex128
	out   []complex128
	re    []float64
	im    []float64
	power []float64
	sum   []float64
}

// NewAnalyzer returns an analyzer for frames of size samples. size must be
// a power of two.
func NewAnalyzer(size int, sampleRate float64) (*Analyzer, error) {
	if size < minSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("tone: FFT size must be a power of two >= %d: %d", minSize, size)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("tone: sample rate must be > 0: %v", sampleRate)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("tone: FFT plan: %w", err)
	}

	bins := size/2 + 1
	a := &Analyzer{
		size:       size,
		sampleRate: sampleRate,
		plan:       plan,
		window:     window.Generate(window.TypeHann, size, window.WithPeriodic()),
		frame:      make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		power:      make([]float64, bins),
		sum:        make([]float64, bins),
	}
	return a, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// BinHz returns the frequency spacing of the spectrum bins.
func (a *Analyzer) BinHz() float64 { return a.sampleRate / float64(a.size) }

// Spectrum returns the one-sided power spectrum of x averaged over frames
// with 50% overlap, and the number of frames. Inputs shorter than one
// frame are zero padded. The returned slice is owned by the analyzer and
// valid until the next call.
func (a *Analyzer) Spectrum(x []float64) ([]float64, int, error) {
	if len(x) == 0 {
		return nil, 0, ErrEmptyInput
	}
	clear(a.sum)

	hop := a.size / 2
	frames := 0
	for start := 0; ; start += hop {
		n := copy(a.frame, x[start:])
		clear(a.frame[n:])
		if err := a.accumulate(); err != nil {
			return nil, 0, err
		}
		frames++
		if start+a.size >= len(x) {
			break
		}
	}

	scale := 1 / float64(frames)
	for i := range a.sum {
		a.sum[i] *= scale
	}
	return a.sum, frames, nil
}

func (a *Analyzer) accumulate() error {
	vecmath.MulBlockInPlace(a.frame, a.window)
	for i, v := range a.frame {
		a.in[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("tone: forward FFT: %w", err)
	}
	for i := range a.re {
		a.re[i] = real(a.out[i])
		a.im[i] = imag(a.out[i])
	}
	vecmath.Power(a.power, a.re, a.im)
	for i, p := range a.power {
		a.sum[i] += p
	}
	return nil
}

// Analyze measures x. Power above cutoffHz counts towards HighFraction.
func (a *Analyzer) Analyze(x []float64, cutoffHz float64) (Report, error) {
	power, frames, err := a.Spectrum(x)
	if err != nil {
		return Report{}, err
	}
	return Report{
		RMS:          RMS(x),
		Centroid:     Centroid(power, a.BinHz()),
		HighFraction: FractionAbove(power, a.BinHz(), cutoffHz),
		Frames:       frames,
	}, nil
}

// Centroid returns the power-weighted mean frequency of a one-sided power
// spectrum with bins binHz apart, or 0 for a silent spectrum.
func Centroid(power []float64, binHz float64) float64 {
	var weighted, total float64
	for k, p := range power {
		weighted += float64(k) * binHz * p
		total += p
	}
	if total <= 0 {
		return 0
	}
	return weighted / total
}

// FractionAbove returns the share of power in bins above cutoffHz.
func FractionAbove(power []float64, binHz, cutoffHz float64) float64 {
	var high, total float64
	for k, p := range power {
		total += p
		if float64(k)*binHz > cutoffHz {
			high += p
		}
	}
	if total <= 0 {
		return 0
	}
	return high / total
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
