package signal

import "math"

// Waveform selects the shape of an Oscillator.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Sawtooth
	Square
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	default:
		return "unknown"
	}
}

// Oscillator is a naive (non band-limited) periodic source. The pop voices
// run at sub-audio to low-audio frequencies where aliasing is negligible.
type Oscillator struct {
	sampleRate float64
	waveform   Waveform
	frequency  float64
	amplitude  float64
	phase      float64
	phaseInc   float64
}

// NewOscillator returns a silent 440 Hz sine oscillator.
func NewOscillator(sampleRate float64) *Oscillator {
	o := &Oscillator{sampleRate: sampleRate}
	o.SetFrequency(440)
	return o
}

// SetWaveform selects the waveform. The phase is kept.
func (o *Oscillator) SetWaveform(w Waveform) {
	o.waveform = w
}

// SetFrequency sets the frequency in Hz. Negative values are treated as 0.
func (o *Oscillator) SetFrequency(freq float64) {
	if freq < 0 || math.IsNaN(freq) {
		freq = 0
	}
	o.frequency = freq
	if o.sampleRate > 0 {
		o.phaseInc = freq / o.sampleRate
	}
}

// SetAmplitude sets the peak amplitude. Values above 1 are allowed.
func (o *Oscillator) SetAmplitude(amp float64) {
	if amp < 0 || math.IsNaN(amp) {
		amp = 0
	}
	o.amplitude = amp
}

// Frequency returns the frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// Amplitude returns the peak amplitude.
func (o *Oscillator) Amplitude() float64 { return o.amplitude }

// Waveform returns the selected waveform.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// Reset sets the phase to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Next returns the next sample.
func (o *Oscillator) Next() float64 {
	var y float64
	switch o.waveform {
	case Triangle:
		if o.phase < 0.5 {
			y = 4*o.phase - 1
		} else {
			y = 3 - 4*o.phase
		}
	case Sawtooth:
		y = 2*o.phase - 1
	case Square:
		if o.phase < 0.5 {
			y = 1
		} else {
			y = -1
		}
	default:
		y = math.Sin(2 * math.Pi * o.phase)
	}

	o.phase += o.phaseInc
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}

	return y * o.amplitude
}

// Process fills buf with the next len(buf) samples.
func (o *Oscillator) Process(buf []float64) {
	for i := range buf {
		buf[i] = o.Next()
	}
}
