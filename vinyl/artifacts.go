package vinyl

import "time"

// Artifact identifies one of the randomly scheduled surface noises.
type Artifact int

const (
	LightPop Artifact = iota
	DeepPop
	Scratch
	NumArtifacts
)

func (a Artifact) String() string {
	switch a {
	case LightPop:
		return "light pop"
	case DeepPop:
		return "deep pop"
	case Scratch:
		return "scratch"
	default:
		return "unknown"
	}
}

// intRange is a half-open integer range [Min, Max).
type intRange struct {
	Min, Max int
}

func (r intRange) empty() bool { return r.Max <= r.Min }

type artifactSpec struct {
	source   Source
	envelope Envelope

	initial  int      // first interval, ms
	interval intRange // ms
	chance   int      // percent
	scaled   bool     // chance is multiplied by intensity
	freq     intRange // Hz, empty for noise sources
	amp      intRange // hundredths
}

var artifactSpecs = [NumArtifacts]artifactSpec{
	LightPop: {
		source:   SourceLightPop,
		envelope: EnvelopeLightPop,
		initial:  300,
		interval: intRange{80, 600},
		chance:   80,
		freq:     intRange{100, 300},
		amp:      intRange{70, 130},
	},
	DeepPop: {
		source:   SourceDeepPop,
		envelope: EnvelopeDeepPop,
		initial:  2000,
		interval: intRange{1200, 3500},
		chance:   50,
		scaled:   true,
		freq:     intRange{30, 80},
		amp:      intRange{100, 160},
	},
	Scratch: {
		source:   SourceScratch,
		envelope: EnvelopeScratch,
		initial:  5000,
		interval: intRange{3500, 9000},
		chance:   25,
		scaled:   true,
		amp:      intRange{80, 150},
	},
}

type artifactTimer struct {
	last time.Duration
	next time.Duration
}

// Stats counts scheduler activity since the controller was created.
type Stats struct {
	Checks      [NumArtifacts]int // elapsed intervals evaluated
	Fires       [NumArtifacts]int // evaluations that fired
	NeedleDrops int
}

func (c *Controller) draw(r intRange) int {
	return r.Min + c.rng.IntN(r.Max-r.Min)
}

func (c *Controller) updateArtifacts(now time.Duration) {
	if !c.enabled || c.needle.active {
		return
	}
	for a := range NumArtifacts {
		c.evaluateArtifact(a, now)
	}
}

func (c *Controller) evaluateArtifact(a Artifact, now time.Duration) {
	tm := &c.timers[a]
	if now-tm.last <= tm.next {
		return
	}
	spec := &artifactSpecs[a]
	c.stats.Checks[a]++

	chance := float64(spec.chance)
	if spec.scaled {
		chance *= c.intensity
	}
	if float64(c.rng.IntN(100)) < chance {
		c.fireArtifact(a, spec)
	}

	tm.next = millis(c.draw(spec.interval))
	tm.last = now
}

func (c *Controller) fireArtifact(a Artifact, spec *artifactSpec) {
	if !spec.freq.empty() {
		c.sink.SetFrequency(spec.source, float64(c.draw(spec.freq)))
	}
	c.sink.SetAmplitude(spec.source, float64(c.draw(spec.amp))/100)
	c.sink.NoteOn(spec.envelope)
	c.sink.NoteOff(spec.envelope)
	c.stats.Fires[a]++
}
