// Package vinyl implements the control logic of a vinyl playback simulator.
//
// A [Controller] is polled once per control cycle. It never renders audio
// itself: it writes parameters into a [Sink] (tone filters, delay lines,
// oscillator and noise sources, envelopes, mixers and the output volume)
// and decides when the crackle, pop, scratch and needle-drop voices fire.
//
// Time and randomness are injected through [Clock] and [Rand] so that a
// whole playback session can be replayed deterministically:
//
//	clock := &vinyl.ManualClock{}
//	ctrl, err := vinyl.New(sink, vinyl.WithClock(clock), vinyl.WithSeed(7))
//	if err != nil {
//		return err
//	}
//	ctrl.Setup()
//	ctrl.ToggleEnabled()
//	for range 100 {
//		clock.Advance(10 * time.Millisecond)
//		ctrl.Poll(0.6, 0.8)
//	}
//
// The controller is not safe for concurrent use. Sinks that render on
// another goroutine synchronize their own parameter writes.
package vinyl
