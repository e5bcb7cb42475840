package vinyl

import (
	"github.com/cwbudde/algo-vinyl/dsp/envelope"
	"github.com/cwbudde/algo-vinyl/dsp/signal"
)

// Waveform selects the shape of an oscillator source.
type Waveform = signal.Waveform

// EnvelopeShape is the delay/attack/hold/decay/sustain/release timing of an envelope.
type EnvelopeShape = envelope.Shape

// Side addresses the left or right path of a stereo pair.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Source addresses an oscillator or noise generator of the sink.
type Source int

const (
	SourceLightPop     Source = iota // triangle oscillator
	SourceDeepPop                    // sawtooth oscillator
	SourceScratch                    // white noise
	SourceNeedleDrop                 // sawtooth oscillator
	SourceNeedleNoise                // white noise
	SourceSurfaceNoise               // pink noise
	NumSources
)

var sourceNames = [NumSources]string{
	"light-pop", "deep-pop", "scratch", "needle-drop", "needle-noise", "surface-noise",
}

func (s Source) String() string {
	if s < 0 || s >= NumSources {
		return "unknown"
	}
	return sourceNames[s]
}

// Envelope addresses an envelope shaper of the sink.
type Envelope int

const (
	EnvelopeLightPop Envelope = iota
	EnvelopeDeepPop
	EnvelopeScratch
	EnvelopeNeedleDrop
	NumEnvelopes
)

var envelopeNames = [NumEnvelopes]string{"light-pop", "deep-pop", "scratch", "needle-drop"}

func (e Envelope) String() string {
	if e < 0 || e >= NumEnvelopes {
		return "unknown"
	}
	return envelopeNames[e]
}

// Mixer addresses a four-channel mixer of the sink.
type Mixer int

const (
	MixerOutputLeft  Mixer = iota // final left mix
	MixerOutputRight              // final right mix
	MixerCrackles                 // light pop, deep pop, scratch
	MixerEffects                  // crackles and needle drop, feeds the output effects channel
	MixerNeedleDrop               // needle oscillator and needle noise
	NumMixers
)

var mixerNames = [NumMixers]string{"output-left", "output-right", "crackles", "effects", "needle-drop"}

func (m Mixer) String() string {
	if m < 0 || m >= NumMixers {
		return "unknown"
	}
	return mixerNames[m]
}

// Channels of the output mixers.
const (
	ChannelFiltered = 0
	ChannelDirect   = 1
	ChannelNoise    = 2
	ChannelEffects  = 3
)

// Channels of the effects mixer.
const (
	EffectsCrackles   = 0
	EffectsNeedleDrop = 1
)

// Sink is the audio graph the controller drives. Every method is a plain
// parameter write that must not block; the controller clamps values before
// calling it.
type Sink interface {
	SetFilterFrequency(side Side, hz float64)
	SetFilterResonance(side Side, q float64)
	SetDelay(side Side, ms float64)

	SetWaveform(src Source, w Waveform)
	SetFrequency(src Source, hz float64)
	SetAmplitude(src Source, amp float64)

	SetEnvelope(env Envelope, shape EnvelopeShape)
	NoteOn(env Envelope)
	NoteOff(env Envelope)

	SetGain(m Mixer, ch int, gain float64)
	SetVolume(level float64)
}

var outputMixers = [2]Mixer{MixerOutputLeft, MixerOutputRight}
