package vinyl

import "time"

const (
	needleDropDuration    = 400 * time.Millisecond
	needleDropStartHz     = 80.0
	needleDropSweepHz     = 30.0
	needleDropEffectsGain = 0.3
)

// needleDrop is the one-shot stylus landing. It is idle while !active.
type needleDrop struct {
	active bool
	start  time.Duration
}

func (c *Controller) triggerNeedleDrop() {
	if c.needle.active {
		c.logger.Debug("needle drop already active, trigger ignored")
		return
	}
	c.needle = needleDrop{active: true, start: c.clock.Now()}
	c.stats.NeedleDrops++

	c.sink.SetGain(MixerEffects, EffectsNeedleDrop, 1.0)
	c.updateEffectsGain()
	c.sink.SetFrequency(SourceNeedleDrop, needleDropStartHz)
	c.sink.NoteOn(EnvelopeNeedleDrop)
}

func (c *Controller) advanceNeedleDrop(now time.Duration) {
	if !c.needle.active {
		return
	}
	elapsed := now - c.needle.start
	if elapsed <= needleDropDuration {
		progress := max(float64(elapsed), 0) / float64(needleDropDuration)
		c.sink.SetFrequency(SourceNeedleDrop, needleDropStartHz-needleDropSweepHz*progress)
		return
	}

	c.sink.NoteOff(EnvelopeNeedleDrop)
	c.sink.SetGain(MixerEffects, EffectsNeedleDrop, 0)
	c.needle.active = false
	c.updateEffectsGain()
}
