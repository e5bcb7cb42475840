package vinyl

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-vinyl/internal/testutil"
)

func newTestController(t *testing.T, opts ...Option) (*Controller, *recordingSink, *ManualClock) {
	t.Helper()
	sink := &recordingSink{}
	clock := &ManualClock{}
	all := append([]Option{WithClock(clock), WithSeed(1)}, opts...)
	ctrl, err := New(sink, all...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctrl.Setup()
	return ctrl, sink, clock
}

func requireGains(t *testing.T, sink *recordingSink, m Mixer, want [4]float64) {
	t.Helper()
	for ch, w := range want {
		if math.Abs(sink.gains[m][ch]-w) > 1e-12 {
			t.Fatalf("%v gain[%d] = %v, want %v", m, ch, sink.gains[m][ch], w)
		}
	}
}

func TestNewRejectsNilSink(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrNilSink) {
		t.Fatalf("New(nil) error = %v, want ErrNilSink", err)
	}
}

func TestNewDefaults(t *testing.T) {
	ctrl, err := New(&recordingSink{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if ctrl.Enabled() {
		t.Fatal("new controller is enabled")
	}
	if ctrl.Format() != Format78 {
		t.Fatalf("Format() = %v, want 78", ctrl.Format())
	}
	if ctrl.Intensity() != 0.5 {
		t.Fatalf("Intensity() = %v, want 0.5", ctrl.Intensity())
	}
	if ctrl.DelayTime() != 5 {
		t.Fatalf("DelayTime() = %v, want 5", ctrl.DelayTime())
	}
	if ctrl.Volume() != -1 {
		t.Fatalf("Volume() = %v, want -1", ctrl.Volume())
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	ctrl, err := New(&recordingSink{},
		WithClock(nil),
		WithRand(nil),
		WithLogger(nil),
		WithFormat(Format(7)),
		WithIntensity(3),
		nil,
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if ctrl.Format() != Format78 {
		t.Fatalf("Format() = %v, want 78", ctrl.Format())
	}
	if ctrl.Intensity() != 1 {
		t.Fatalf("Intensity() = %v, want 1", ctrl.Intensity())
	}
	if ctrl.clock == nil || ctrl.rng == nil || ctrl.logger == nil {
		t.Fatal("nil option replaced a default")
	}
}

func TestSetupWritesInitialGraph(t *testing.T) {
	_, sink, _ := newTestController(t)

	requireGains(t, sink, MixerOutputLeft, [4]float64{0, 1, 0, 0})
	requireGains(t, sink, MixerOutputRight, [4]float64{0, 1, 0, 0})
	requireGains(t, sink, MixerCrackles, [4]float64{1, 1, 1, 0})
	requireGains(t, sink, MixerEffects, [4]float64{1, 0, 0, 0})
	requireGains(t, sink, MixerNeedleDrop, [4]float64{1, 0.7, 0, 0})

	if sink.volume != 0.5 {
		t.Fatalf("volume = %v, want 0.5", sink.volume)
	}
	if sink.filterHz != [2]float64{600, 650} || sink.filterQ != [2]float64{2.5, 2.6} {
		t.Fatalf("filters = %v Q %v", sink.filterHz, sink.filterQ)
	}
	if sink.delay != [2]float64{5, 5} {
		t.Fatalf("delay = %v, want [5 5]", sink.delay)
	}
	if sink.amp[SourceSurfaceNoise] != 1 {
		t.Fatalf("surface noise amplitude = %v, want 1", sink.amp[SourceSurfaceNoise])
	}
	if got := sink.shapes[EnvelopeLightPop]; got.Hold != 1 || got.Decay != 8 || got.Sustain != 0 {
		t.Fatalf("light pop envelope = %+v", got)
	}
	if got := sink.shapes[EnvelopeNeedleDrop]; got.Attack != 5 || got.Sustain != 0.05 || got.Release != 150 {
		t.Fatalf("needle envelope = %+v", got)
	}
}

func TestNoiseLevelStaysWithinBounds(t *testing.T) {
	for _, format := range Formats() {
		for _, intensity := range []float64{0, 0.35, 1} {
			ctrl, sink, clock := newTestController(t, WithFormat(format))
			ctrl.ToggleEnabled()
			base := format.Preset().NoiseGain

			for range 2000 {
				clock.Advance(7 * time.Millisecond)
				ctrl.Update(intensity)

				left := sink.gains[MixerOutputLeft][ChannelNoise]
				testutil.RequireWithin(t, "left noise", left, base-1e-12, base+0.02*intensity+1e-12)
				testutil.RequireNear(t, "right noise", sink.gains[MixerOutputRight][ChannelNoise], 0.95*left, 1e-12)
			}
		}
	}
}

func TestEnableDisableRestoresNormalMix(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	before := sink.gains

	ctrl.ToggleEnabled()
	for range 300 {
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(0.9)
	}
	ctrl.ToggleEnabled()
	for range 100 {
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(0.9)
	}

	for _, m := range outputMixers {
		if sink.gains[m] != before[m] {
			t.Fatalf("%v gains = %v, want %v", m, sink.gains[m], before[m])
		}
	}
	requireGains(t, sink, MixerOutputLeft, [4]float64{0, 1, 0, 0})
}

func TestDelayChangesAreRateLimited(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	ctrl.ToggleEnabled()
	rng := rand.New(rand.NewPCG(3, 4))

	for range 5000 {
		clock.Advance(time.Duration(1+rng.IntN(500)) * time.Millisecond)
		prev := ctrl.DelayTime()
		writes := sink.delayWrites
		ctrl.Update(0.5)

		if step := math.Abs(ctrl.DelayTime() - prev); step >= 2 {
			t.Fatalf("delay moved %v ms in one update", step)
		}
		testutil.RequireWithin(t, "delay", ctrl.DelayTime(), 2, 8)
		if sink.delayWrites != writes {
			testutil.RequireNear(t, "right delay", sink.delay[Right], sink.delay[Left]*1.02, 1e-12)
		}
	}
}

func TestDelayTracksSlowTarget(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	ctrl.ToggleEnabled()

	for range 1000 {
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(0.5)
	}
	t0 := clock.Now().Seconds()
	want := 5 + 3*math.Sin(2*math.Pi*0.6*t0)
	testutil.RequireNear(t, "DelayTime()", ctrl.DelayTime(), want, 1e-9)
	testutil.RequireNear(t, "sink left delay", sink.delay[Left], want, 1e-9)
}

func TestDelayNotTouchedWhileDisabled(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	writes := sink.delayWrites
	for range 100 {
		clock.Advance(50 * time.Millisecond)
		ctrl.Update(1)
	}
	if sink.delayWrites != writes {
		t.Fatalf("delay writes = %d, want %d", sink.delayWrites, writes)
	}
	if sink.filterHz != [2]float64{600, 650} {
		t.Fatalf("filters moved while disabled: %v", sink.filterHz)
	}
}

func TestNeedleDropSweep(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	clock.Set(time.Second)
	ctrl.Update(0.8)
	ctrl.ToggleEnabled()

	if !ctrl.NeedleDropActive() {
		t.Fatal("needle drop not active after enable")
	}
	if sink.freq[SourceNeedleDrop] != 80 {
		t.Fatalf("needle frequency = %v, want 80", sink.freq[SourceNeedleDrop])
	}
	if sink.noteOn[EnvelopeNeedleDrop] != 1 {
		t.Fatalf("needle NoteOn count = %d, want 1", sink.noteOn[EnvelopeNeedleDrop])
	}
	requireGains(t, sink, MixerEffects, [4]float64{1, 1, 0, 0})

	tests := []struct {
		at     time.Duration
		wantHz float64
	}{
		{100 * time.Millisecond, 72.5},
		{200 * time.Millisecond, 65},
		{400 * time.Millisecond, 50},
	}
	for _, tt := range tests {
		clock.Set(time.Second + tt.at)
		ctrl.Update(0.8)
		testutil.RequireNear(t, "needle frequency", sink.freq[SourceNeedleDrop], tt.wantHz, 1e-9)
		if !ctrl.NeedleDropActive() {
			t.Fatalf("needle drop ended early at %v", tt.at)
		}
		testutil.RequireNear(t, "effects gain", sink.gains[MixerOutputLeft][ChannelEffects], 0.3, 1e-12)
	}

	clock.Set(time.Second + 401*time.Millisecond)
	ctrl.Update(0.8)
	if ctrl.NeedleDropActive() {
		t.Fatal("needle drop still active after 401 ms")
	}
	if sink.noteOff[EnvelopeNeedleDrop] != 1 {
		t.Fatalf("needle NoteOff count = %d, want 1", sink.noteOff[EnvelopeNeedleDrop])
	}
	if sink.gains[MixerEffects][EffectsNeedleDrop] != 0 {
		t.Fatalf("needle combiner gain = %v, want 0", sink.gains[MixerEffects][EffectsNeedleDrop])
	}
	testutil.RequireNear(t, "effects gain", sink.gains[MixerOutputLeft][ChannelEffects], 0.4, 1e-12)
	testutil.RequireNear(t, "effects gain", sink.gains[MixerOutputRight][ChannelEffects], 0.4, 1e-12)
}

func TestNeedleDropRetriggerIgnored(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctrl, sink, clock := newTestController(t, WithLogger(logger))

	clock.Set(time.Second)
	ctrl.ToggleEnabled()
	clock.Set(1100 * time.Millisecond)
	ctrl.ToggleEnabled()
	clock.Set(1200 * time.Millisecond)
	ctrl.ToggleEnabled()

	if got := ctrl.Stats().NeedleDrops; got != 1 {
		t.Fatalf("NeedleDrops = %d, want 1", got)
	}
	if sink.noteOn[EnvelopeNeedleDrop] != 1 {
		t.Fatalf("needle NoteOn count = %d, want 1", sink.noteOn[EnvelopeNeedleDrop])
	}
	if !strings.Contains(logs.String(), "trigger ignored") {
		t.Fatalf("log does not mention the ignored trigger:\n%s", logs.String())
	}

	// The sequence still ends 400 ms after the first trigger.
	clock.Set(1401 * time.Millisecond)
	ctrl.Update(0.5)
	if ctrl.NeedleDropActive() {
		t.Fatal("needle drop did not end relative to the first trigger")
	}
}

func TestDisableKeepsNeedleDropRunning(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	ctrl.ToggleEnabled()
	clock.Set(100 * time.Millisecond)
	ctrl.ToggleEnabled()

	if !ctrl.NeedleDropActive() {
		t.Fatal("disable cancelled the needle drop")
	}
	clock.Set(300 * time.Millisecond)
	ctrl.Update(0.5)
	testutil.RequireNear(t, "needle frequency", sink.freq[SourceNeedleDrop], 57.5, 1e-9)

	clock.Set(401 * time.Millisecond)
	ctrl.Update(0.5)
	if ctrl.NeedleDropActive() {
		t.Fatal("needle drop still active")
	}
	requireGains(t, sink, MixerOutputLeft, [4]float64{0, 1, 0, 0})
	requireGains(t, sink, MixerOutputRight, [4]float64{0, 1, 0, 0})
}

func TestArtifactsIdleWhileDisabledOrDuringNeedleDrop(t *testing.T) {
	ctrl, _, clock := newTestController(t)
	for range 1000 {
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(1)
	}
	if got := ctrl.Stats().Checks; got != [NumArtifacts]int{} {
		t.Fatalf("checks while disabled = %v", got)
	}

	ctrl.ToggleEnabled()
	for ctrl.NeedleDropActive() {
		if got := ctrl.Stats().Checks; got != [NumArtifacts]int{} {
			t.Fatalf("checks during needle drop = %v", got)
		}
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(1)
	}
	for range 100 {
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(1)
	}
	if ctrl.Stats().Checks[LightPop] == 0 {
		t.Fatal("light pop never evaluated after the needle drop")
	}
}

func TestArtifactFireProbabilities(t *testing.T) {
	for _, intensity := range []float64{1, 0.4, 0} {
		ctrl, _, clock := newTestController(t, WithSeed(uint64(intensity*100)+11))
		ctrl.ToggleEnabled()
		for range 320000 {
			clock.Advance(25 * time.Millisecond)
			ctrl.Update(intensity)
		}

		stats := ctrl.Stats()
		want := [NumArtifacts]float64{0.8, 0.5 * intensity, 0.25 * intensity}
		for a := range NumArtifacts {
			if stats.Checks[a] < 1000 {
				t.Fatalf("intensity %v: %v checked only %d times", intensity, a, stats.Checks[a])
			}
			rate := float64(stats.Fires[a]) / float64(stats.Checks[a])
			if want[a] == 0 {
				if stats.Fires[a] != 0 {
					t.Fatalf("intensity 0: %v fired %d times", a, stats.Fires[a])
				}
				continue
			}
			if math.Abs(rate-want[a]) > 0.04 {
				t.Fatalf("intensity %v: %v rate = %.3f, want %.3f", intensity, a, rate, want[a])
			}
		}
	}
}

func TestArtifactParametersInRange(t *testing.T) {
	ctrl, sink, clock := newTestController(t, WithSeed(5))
	// Discard the setup writes.
	sink.freqLog = [NumSources][]float64{}
	sink.ampLog = [NumSources][]float64{}

	ctrl.ToggleEnabled()
	for range 60000 {
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(1)
		for env := range NumEnvelopes {
			if env != EnvelopeNeedleDrop && sink.pendingOn[env] {
				t.Fatalf("%v left on after a fire", env)
			}
		}
	}

	tests := []struct {
		src            Source
		fires          int
		freqLo, freqHi float64
		ampLo, ampHi   float64
	}{
		{SourceLightPop, ctrl.Stats().Fires[LightPop], 100, 299, 0.70, 1.29},
		{SourceDeepPop, ctrl.Stats().Fires[DeepPop], 30, 79, 1.00, 1.59},
		{SourceScratch, ctrl.Stats().Fires[Scratch], 0, 0, 0.80, 1.49},
	}
	for _, tt := range tests {
		if tt.fires == 0 {
			t.Fatalf("%v never fired", tt.src)
		}
		if got := len(sink.ampLog[tt.src]); got != tt.fires {
			t.Fatalf("%v amplitude writes = %d, want %d", tt.src, got, tt.fires)
		}
		for _, a := range sink.ampLog[tt.src] {
			testutil.RequireWithin(t, tt.src.String()+" amplitude", a, tt.ampLo-1e-9, tt.ampHi+1e-9)
		}
		if tt.freqHi == 0 {
			if len(sink.freqLog[tt.src]) != 0 {
				t.Fatalf("%v got frequency writes", tt.src)
			}
			continue
		}
		for _, f := range sink.freqLog[tt.src] {
			testutil.RequireWithin(t, tt.src.String()+" frequency", f, tt.freqLo, tt.freqHi)
			if f != math.Trunc(f) {
				t.Fatalf("%v frequency %v is not whole", tt.src, f)
			}
		}
	}
}

func TestSeededSessionsAreReproducible(t *testing.T) {
	run := func() *recordingSink {
		ctrl, sink, clock := newTestController(t, WithSeed(99))
		ctrl.ToggleEnabled()
		for i := range 5000 {
			clock.Advance(20 * time.Millisecond)
			ctrl.Poll(0.7, float64(i%100)/100)
			if i == 2500 {
				ctrl.ToggleFormat()
			}
		}
		return sink
	}
	a, b := run(), run()
	for src := range NumSources {
		testutil.RequireSliceNearlyEqual(t, a.freqLog[src], b.freqLog[src], 0)
		testutil.RequireSliceNearlyEqual(t, a.ampLog[src], b.ampLog[src], 0)
	}
	if a.noteOn != b.noteOn || a.volumeWrites != b.volumeWrites {
		t.Fatalf("runs diverged: %v/%v vs %v/%v", a.noteOn, a.volumeWrites, b.noteOn, b.volumeWrites)
	}
}

func TestFormatSwitchWhileDisabled(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	filterWrites := sink.filterWrites

	ctrl.ToggleFormat()
	if ctrl.Format() != Format33 {
		t.Fatalf("Format() = %v, want 33", ctrl.Format())
	}
	requireGains(t, sink, MixerOutputLeft, [4]float64{0, 1, 0, 0})
	if sink.filterWrites != filterWrites {
		t.Fatal("format switch while disabled wrote the tone filters")
	}

	clock.Set(3 * time.Second)
	ctrl.ToggleEnabled()
	if sink.gains[MixerOutputLeft][ChannelFiltered] != 0.7 || sink.gains[MixerOutputLeft][ChannelDirect] != 0.3 {
		t.Fatalf("output left = %v, want 33 preset", sink.gains[MixerOutputLeft])
	}
	testutil.RequireWithin(t, "left filter", sink.filterHz[Left], 1000-100, 1000+100)
	testutil.RequireWithin(t, "noise", sink.gains[MixerOutputLeft][ChannelNoise], 0.015, 0.015+0.02*0.5)
}

func TestFormatSwitchWhileEnabled(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	ctrl.ToggleEnabled()
	for range 50 {
		clock.Advance(10 * time.Millisecond)
		ctrl.Update(0.5)
	}
	testutil.RequireWithin(t, "78 left filter", sink.filterHz[Left], 600-230, 600+230)

	ctrl.ToggleFormat()
	requireGains(t, sink, MixerOutputRight, [4]float64{
		0.7, 0.3, sink.gains[MixerOutputRight][ChannelNoise], sink.gains[MixerOutputRight][ChannelEffects],
	})
	testutil.RequireWithin(t, "33 left filter", sink.filterHz[Left], 1000-100, 1000+100)
	testutil.RequireWithin(t, "33 right filter", sink.filterHz[Right], 1250-100, 1250+100)

	ctrl.ToggleFormat()
	if sink.gains[MixerOutputLeft][ChannelFiltered] != 0.85 {
		t.Fatalf("filtered gain = %v, want 0.85", sink.gains[MixerOutputLeft][ChannelFiltered])
	}
}

func TestFilterWritesAreClamped(t *testing.T) {
	ctrl, sink, _ := newTestController(t)
	ctrl.baseFilter = [2]float64{-500, 50000}
	ctrl.updateTone(0.1)
	if sink.filterHz[Left] != MinFilterHz || sink.filterHz[Right] != MaxFilterHz {
		t.Fatalf("filters = %v, want [%v %v]", sink.filterHz, MinFilterHz, MaxFilterHz)
	}
}

func TestVolumeHysteresis(t *testing.T) {
	ctrl, sink, _ := newTestController(t)
	writes := sink.volumeWrites

	tests := []struct {
		level     float64
		wantWrite bool
		want      float64
	}{
		{0.5, true, 0.4},
		{0.51, false, 0.4},
		{0.52, false, 0.4},
		{0.53, true, 0.424},
		{2, true, 0.8},
		{1, false, 0.8},
		{math.NaN(), true, 0},
		{0.01, false, 0},
		{-1, false, 0},
	}
	for i, tt := range tests {
		ctrl.UpdateVolume(tt.level)
		if tt.wantWrite {
			writes++
		}
		if sink.volumeWrites != writes {
			t.Fatalf("step %d (level %v): volume writes = %d, want %d", i, tt.level, sink.volumeWrites, writes)
		}
		testutil.RequireNear(t, "volume", ctrl.Volume(), tt.want, 1e-12)
	}
}

func TestIntensityIsClamped(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.7, 1},
		{-0.3, 0},
		{math.NaN(), 0},
		{0.25, 0.25},
	}
	ctrl, _, _ := newTestController(t)
	for _, tt := range tests {
		ctrl.Update(tt.in)
		if got := ctrl.Intensity(); got != tt.want {
			t.Fatalf("Update(%v): Intensity() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnableOn78EndToEnd(t *testing.T) {
	ctrl, sink, clock := newTestController(t)
	ctrl.Poll(0.5, 0.5)

	clock.Set(2 * time.Second)
	ctrl.ToggleEnabled()

	if sink.gains[MixerOutputLeft][ChannelFiltered] != 0.85 || sink.gains[MixerOutputLeft][ChannelDirect] != 0.15 {
		t.Fatalf("output left = %v, want 0.85/0.15", sink.gains[MixerOutputLeft])
	}
	testutil.RequireWithin(t, "noise", sink.gains[MixerOutputLeft][ChannelNoise], 0.03, 0.04)
	testutil.RequireNear(t, "effects", sink.gains[MixerOutputLeft][ChannelEffects], 0.3, 1e-12)
	if sink.gains[MixerEffects][EffectsNeedleDrop] != 1 {
		t.Fatal("needle drop channel not opened")
	}
	if sink.freq[SourceNeedleDrop] != 80 || sink.noteOn[EnvelopeNeedleDrop] != 1 {
		t.Fatalf("needle = %v Hz, %d NoteOn", sink.freq[SourceNeedleDrop], sink.noteOn[EnvelopeNeedleDrop])
	}

	clock.Set(2*time.Second + 200*time.Millisecond)
	ctrl.Poll(0.5, 0.5)
	testutil.RequireNear(t, "needle frequency", sink.freq[SourceNeedleDrop], 65, 1e-9)

	clock.Set(2*time.Second + 401*time.Millisecond)
	ctrl.Poll(0.5, 0.5)
	if ctrl.NeedleDropActive() {
		t.Fatal("needle drop still active")
	}
	testutil.RequireNear(t, "effects", sink.gains[MixerOutputLeft][ChannelEffects], 0.25, 1e-12)
	if len(sink.gainErrors) != 0 {
		t.Fatalf("out of range gain writes: %v", sink.gainErrors)
	}
}

func TestModeChangesAreLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	ctrl, _, _ := newTestController(t, WithLogger(logger))

	ctrl.ToggleEnabled()
	ctrl.ToggleFormat()
	ctrl.ToggleEnabled()

	out := logs.String()
	for _, want := range []string{"vinyl enabled", "format=33", "vinyl disabled"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}
