// Package envelope provides the delay/attack/hold/decay/sustain/release
// amplitude shaper that gates the pop, scratch and needle-drop voices.
//
// Stage times are in milliseconds, the sustain level is linear in [0,1].
// A NoteOff that arrives before the decay stage has finished is latched and
// applied once the envelope reaches its sustain level. A NoteOn immediately
// followed by NoteOff therefore still plays the full attack, hold and decay
// burst.
package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vinyl/dsp/core"
)

// Stage is the current envelope stage.
type Stage int

const (
	StageIdle Stage = iota
	StageDelay
	StageAttack
	StageHold
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageDelay:
		return "delay"
	case StageAttack:
		return "attack"
	case StageHold:
		return "hold"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Shape describes the envelope timing.
type Shape struct {
	Delay   float64 // ms
	Attack  float64 // ms
	Hold    float64 // ms
	Decay   float64 // ms
	Sustain float64 // level
	Release float64 // ms
}

// DefaultShape mirrors a plain gate: instant attack, full sustain and a 300 ms release.
func DefaultShape() Shape {
	return Shape{Attack: 0, Hold: 0, Decay: 0, Sustain: 1, Release: 300}
}

// Envelope is a sample-accurate amplitude envelope.
type Envelope struct {
	sampleRate float64
	shape      Shape

	stage   Stage
	level   float64
	step    float64
	remain  int
	release bool
}

// New returns an idle envelope with DefaultShape.
func New(sampleRate float64) (*Envelope, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("envelope sample rate must be > 0: %f", sampleRate)
	}
	return &Envelope{sampleRate: sampleRate, shape: DefaultShape()}, nil
}

// SetShape replaces the stage timings. Negative times are treated as 0 and
// the sustain level is clamped to [0,1]. A running stage keeps its current
// rate until the next transition.
func (e *Envelope) SetShape(s Shape) {
	s.Delay = math.Max(0, s.Delay)
	s.Attack = math.Max(0, s.Attack)
	s.Hold = math.Max(0, s.Hold)
	s.Decay = math.Max(0, s.Decay)
	s.Release = math.Max(0, s.Release)
	s.Sustain = core.Clamp01(s.Sustain)
	e.shape = s
}

// Shape returns the configured timings.
func (e *Envelope) Shape() Shape { return e.shape }

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Level returns the current output level.
func (e *Envelope) Level() float64 { return e.level }

// Active reports whether the envelope produces a non-zero output now or later.
func (e *Envelope) Active() bool { return e.stage != StageIdle }

// NoteOn starts the envelope from its current level.
func (e *Envelope) NoteOn() {
	e.release = false
	if e.shape.Delay > 0 {
		e.enter(StageDelay)
		return
	}
	e.enter(StageAttack)
}

// NoteOff releases the envelope, deferred until the sustain stage when the
// burst is still rising or decaying.
func (e *Envelope) NoteOff() {
	switch e.stage {
	case StageDelay, StageAttack, StageHold, StageDecay:
		e.release = true
	case StageSustain:
		e.enter(StageRelease)
	}
}

// Reset silences the envelope immediately.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.release = false
}

// Next advances one sample and returns the level.
func (e *Envelope) Next() float64 {
	switch e.stage {
	case StageDelay, StageHold:
		e.remain--
		if e.remain <= 0 {
			e.advance()
		}
	case StageAttack, StageDecay, StageRelease:
		e.level += e.step
		e.remain--
		if e.remain <= 0 {
			e.advance()
		}
	}
	return e.level
}

// Process multiplies buf in place by the envelope.
func (e *Envelope) Process(buf []float64) {
	for i := range buf {
		buf[i] *= e.Next()
	}
}

func (e *Envelope) advance() {
	switch e.stage {
	case StageDelay:
		e.enter(StageAttack)
	case StageAttack:
		e.level = 1
		e.enter(StageHold)
	case StageHold:
		e.enter(StageDecay)
	case StageDecay:
		e.level = e.shape.Sustain
		e.enter(StageSustain)
	case StageRelease:
		e.level = 0
		e.stage = StageIdle
	}
}

func (e *Envelope) enter(stage Stage) {
	e.stage = stage
	switch stage {
	case StageDelay:
		e.remain = core.MillisToSamples(e.shape.Delay, e.sampleRate)
	case StageAttack:
		e.ramp(1, e.shape.Attack)
	case StageHold:
		e.remain = core.MillisToSamples(e.shape.Hold, e.sampleRate)
	case StageDecay:
		e.ramp(e.shape.Sustain, e.shape.Decay)
	case StageSustain:
		if e.release {
			e.enter(StageRelease)
			return
		}
		if e.level == 0 {
			e.stage = StageIdle
		}
		return
	case StageRelease:
		e.release = false
		e.ramp(0, e.shape.Release)
	}
	if e.remain <= 0 {
		e.advance()
	}
}

func (e *Envelope) ramp(target, ms float64) {
	e.remain = core.MillisToSamples(ms, e.sampleRate)
	if e.remain > 0 {
		e.step = (target - e.level) / float64(e.remain)
	}
}
