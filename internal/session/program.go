package session

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vinyl/dsp/core"
	"github.com/cwbudde/algo-vinyl/dsp/signal"
)

const (
	stepCount     = 16
	maxVoices     = 16
	attackSeconds = 0.005
	noteSeconds   = 0.45
	tempoBPM      = 96.0
	tonesPeak     = 0.5
)

// Source selects the program material that is played from the record.
type Source int

const (
	SourceMelody  Source = iota // looping sawtooth step pattern
	SourceNoise                 // white noise
	SourceSilence               // nothing, only surface artifacts are heard
	SourceTones                 // looped multisine test signal
)

var sourceNames = []string{"melody", "noise", "silence", "tones"}

// toneFreqs span the region the tone filters cut. Whole-hertz values make a
// one second loop seamless.
var toneFreqs = []float64{125, 500, 1000, 3000, 6000, 10000}

func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return sourceNames[s]
}

// ParseSource resolves a source name.
func ParseSource(name string) (Source, error) {
	for i, n := range sourceNames {
		if strings.EqualFold(name, n) {
			return Source(i), nil
		}
	}
	return 0, fmt.Errorf("unknown source %q (want one of %s)", name, strings.Join(sourceNames, ", "))
}

// pattern is a C major figure; zero steps rest.
var pattern = [stepCount]float64{
	130.81, 0, 196, 0, 261.63, 0, 196, 329.63,
	220, 0, 261.63, 0, 329.63, 392, 0, 440,
}

type voice struct {
	osc    signal.Oscillator
	age    int
	length int
}

// Program renders mono program material.
type Program struct {
	source     Source
	sampleRate float64

	step      int
	untilNext float64
	voices    []voice
	attack    int

	noise *signal.WhiteNoise

	loop    []float64
	loopPos int
}

// NewProgram returns a program for source at sampleRate.
func NewProgram(source Source, sampleRate float64, seed uint32) (*Program, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return nil, fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}
	if source < SourceMelody || source > SourceTones {
		return nil, fmt.Errorf("unknown source %v", source)
	}
	p := &Program{
		source:     source,
		sampleRate: sampleRate,
		voices:     make([]voice, 0, maxVoices),
		attack:     max(1, int(attackSeconds*sampleRate)),
		noise:      signal.NewWhiteNoise(seed),
	}
	p.noise.SetAmplitude(0.5)

	if source == SourceTones {
		loop, err := toneLoop(sampleRate)
		if err != nil {
			return nil, err
		}
		p.loop = loop
	}
	return p, nil
}

// toneLoop renders one second of the multisine, using the partials below
// the design limit of the tone filters.
func toneLoop(sampleRate float64) ([]float64, error) {
	var freqs []float64
	for _, f := range toneFreqs {
		if f < 0.45*sampleRate {
			freqs = append(freqs, f)
		}
	}
	g := signal.NewGenerator(core.WithSampleRate(sampleRate))
	x, err := g.Multisine(freqs, 1, max(1, int(sampleRate)))
	if err != nil {
		return nil, fmt.Errorf("tones: %w", err)
	}
	return signal.Normalize(x, tonesPeak)
}

// Source returns the program source.
func (p *Program) Source() Source { return p.source }

// Process fills dst with the next len(dst) samples.
func (p *Program) Process(dst []float64) {
	switch p.source {
	case SourceNoise:
		p.noise.Process(dst)
	case SourceTones:
		for i := range dst {
			dst[i] = p.loop[p.loopPos]
			p.loopPos = (p.loopPos + 1) % len(p.loop)
		}
	case SourceMelody:
		for i := range dst {
			p.untilNext--
			for p.untilNext <= 0 {
				p.trigger(pattern[p.step])
				p.step = (p.step + 1) % stepCount
				p.untilNext += p.stepSamples()
			}
			dst[i] = p.nextSample()
		}
	default:
		clear(dst)
	}
}

func (p *Program) stepSamples() float64 {
	return p.sampleRate * 60 / tempoBPM / 4
}

func (p *Program) trigger(freq float64) {
	if freq <= 0 {
		return
	}
	if len(p.voices) >= maxVoices {
		copy(p.voices, p.voices[1:])
		p.voices = p.voices[:maxVoices-1]
	}
	v := voice{osc: *signal.NewOscillator(p.sampleRate), length: max(p.attack+1, int(noteSeconds*p.sampleRate))}
	v.osc.SetWaveform(signal.Sawtooth)
	v.osc.SetFrequency(freq)
	v.osc.SetAmplitude(1)
	p.voices = append(p.voices, v)
}

func (p *Program) nextSample() float64 {
	sum := 0.0
	write := 0
	for i := range p.voices {
		v := p.voices[i]
		if v.age >= v.length {
			continue
		}
		sum += pluck(v.age, p.attack, v.length) * v.osc.Next()
		v.age++
		p.voices[write] = v
		write++
	}
	p.voices = p.voices[:write]
	return sum
}

// pluck is an exponential attack and decay from -80 dB to the peak and back.
func pluck(age, attack, length int) float64 {
	const (
		floor = 0.0001
		peak  = 0.22
	)
	if age < attack {
		t := float64(age) / float64(attack)
		return floor * math.Pow(peak/floor, t)
	}
	t := float64(age-attack) / float64(length-attack)
	return peak * math.Pow(floor/peak, t)
}
