package envelope

import (
	"math"
	"testing"
)

const sr = 1000.0 // one sample per millisecond keeps stage lengths readable

func newTestEnvelope(t *testing.T, s Shape) *Envelope {
	t.Helper()
	e, err := New(sr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.SetShape(s)
	return e
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}
}

func TestIdleIsSilent(t *testing.T) {
	e := newTestEnvelope(t, DefaultShape())
	for range 10 {
		if v := e.Next(); v != 0 {
			t.Fatalf("idle level = %v, want 0", v)
		}
	}
	if e.Active() {
		t.Fatal("idle envelope reports active")
	}
}

func TestOneShotBurstPlaysDecay(t *testing.T) {
	// Light pop shape: instant attack, 1 ms hold, 8 ms decay to zero.
	e := newTestEnvelope(t, Shape{Attack: 0, Hold: 1, Decay: 8, Sustain: 0})
	e.NoteOn()
	e.NoteOff()

	if e.Stage() != StageHold {
		t.Fatalf("stage after on/off = %v, want hold", e.Stage())
	}
	if e.Level() != 1 {
		t.Fatalf("level after instant attack = %v, want 1", e.Level())
	}

	var levels []float64
	for e.Active() {
		levels = append(levels, e.Next())
		if len(levels) > 100 {
			t.Fatal("burst did not terminate")
		}
	}
	if len(levels) != 9 {
		t.Fatalf("burst length = %d samples, want 9", len(levels))
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1] {
			t.Fatalf("level rose during decay at %d: %v", i, levels)
		}
	}
	if levels[len(levels)-1] != 0 {
		t.Fatalf("final level = %v, want 0", levels[len(levels)-1])
	}
}

func TestSustainAndRelease(t *testing.T) {
	e := newTestEnvelope(t, Shape{Attack: 5, Hold: 30, Decay: 200, Sustain: 0.05, Release: 150})
	e.NoteOn()
	for range 5 {
		e.Next()
	}
	if math.Abs(e.Level()-1) > 1e-12 {
		t.Fatalf("level after attack = %v, want 1", e.Level())
	}
	for range 230 {
		e.Next()
	}
	if e.Stage() != StageSustain {
		t.Fatalf("stage = %v, want sustain", e.Stage())
	}
	if math.Abs(e.Level()-0.05) > 1e-9 {
		t.Fatalf("sustain level = %v, want 0.05", e.Level())
	}

	e.NoteOff()
	if e.Stage() != StageRelease {
		t.Fatalf("stage after NoteOff = %v, want release", e.Stage())
	}
	for range 150 {
		e.Next()
	}
	if e.Active() || e.Level() != 0 {
		t.Fatalf("after release: stage=%v level=%v", e.Stage(), e.Level())
	}
}

func TestDelayStage(t *testing.T) {
	e := newTestEnvelope(t, Shape{Delay: 3, Attack: 0, Sustain: 1})
	e.NoteOn()
	for i := range 2 {
		if v := e.Next(); v != 0 {
			t.Fatalf("sample %d during delay = %v, want 0", i, v)
		}
	}
	if v := e.Next(); v != 1 {
		t.Fatalf("level after delay = %v, want 1", v)
	}
}

func TestProcessMultiplies(t *testing.T) {
	e := newTestEnvelope(t, Shape{Sustain: 0.5})
	e.NoteOn()
	buf := []float64{1, 1, 1}
	e.Process(buf)
	for i, v := range buf {
		if v != 0.5 {
			t.Fatalf("buf[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestReset(t *testing.T) {
	e := newTestEnvelope(t, DefaultShape())
	e.NoteOn()
	e.Reset()
	if e.Active() || e.Level() != 0 {
		t.Fatal("reset did not silence the envelope")
	}
}

func TestSetShapeSanitizes(t *testing.T) {
	e := newTestEnvelope(t, Shape{Attack: -1, Sustain: 4, Release: -3})
	s := e.Shape()
	if s.Attack != 0 || s.Release != 0 || s.Sustain != 1 {
		t.Fatalf("shape = %+v, want sanitized values", s)
	}
}
