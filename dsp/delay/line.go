package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vinyl/dsp/interp"
)

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional read interpolator.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		d.mode = mode
	}
}

// New returns a delay line of fixed size.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	d := &Line{buffer: make([]float64, size), mode: interp.Hermite}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the longest fractional delay that can be read safely.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - 3)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Delay 1 is the most recent sample.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := ((d.writePos-delay)%size + size) % size
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay in samples, clamped to [1, MaxDelay].
func (d *Line) ReadFractional(delay float64) float64 {
	if delay < 1 || math.IsNaN(delay) {
		delay = 1
	}
	if maxDelay := d.MaxDelay(); delay > maxDelay {
		delay = math.Max(1, maxDelay)
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	if d.mode == interp.Linear {
		return interp.Linear2(t, d.Read(p), d.Read(p+1))
	}

	xm1 := d.Read(max(1, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Process writes sample and returns the signal delayed by delay samples.
func (d *Line) Process(sample, delay float64) float64 {
	d.Write(sample)
	return d.ReadFractional(delay)
}

// ProcessBlockTo runs Process over src with a fixed delay and writes the
// result to dst. dst may alias src.
func (d *Line) ProcessBlockTo(dst, src []float64, delay float64) {
	for i, x := range src {
		d.Write(x)
		dst[i] = d.ReadFractional(delay)
	}
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
