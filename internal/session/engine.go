// Package session ties program material, the software playback graph and
// the vinyl controller into one engine that renders stereo audio and
// accepts live commands.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwbudde/algo-vinyl/dsp/core"
	"github.com/cwbudde/algo-vinyl/graph"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

// Config describes a session.
type Config struct {
	SampleRate float64
	BlockSize  int
	Format     vinyl.Format
	Source     Source
	Intensity  float64
	Volume     float64
	Enabled    bool // start with vinyl playback on
	Seed       uint64
	Logger     *slog.Logger
}

// DefaultConfig returns a 48 kHz melody session with moderate intensity.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  128,
		Format:     vinyl.Format78,
		Source:     SourceMelody,
		Intensity:  0.6,
		Volume:     1,
		Enabled:    true,
		Seed:       1,
	}
}

// Status is a snapshot of the session state for display.
type Status struct {
	Position   time.Duration
	Enabled    bool
	Format     vinyl.Format
	Intensity  float64
	Volume     float64
	NeedleDrop bool
	DelayMs    float64
	Stats      vinyl.Stats
	Peak       float64 // output peak of the last block
}

// Engine renders a session. All methods are safe for concurrent use; the
// controller only ever sees one caller at a time.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	clock   *vinyl.ManualClock
	ctrl    *vinyl.Controller
	graph   *graph.Graph
	program *Program

	intensity float64
	volume    float64
	samples   int64
	peak      float64

	left  []float64
	right []float64
}

// New builds an engine and pushes the initial graph configuration.
func New(cfg Config) (*Engine, error) {
	if !cfg.Format.Valid() {
		return nil, fmt.Errorf("session: %w: %v", vinyl.ErrUnknownFormat, cfg.Format)
	}
	pc := core.ApplyProcessorOptions(core.WithSampleRate(cfg.SampleRate), core.WithBlockSize(cfg.BlockSize))
	cfg.SampleRate, cfg.BlockSize = pc.SampleRate, pc.BlockSize

	g, err := graph.NewWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(pc.SampleRate), core.WithBlockSize(pc.BlockSize)},
		graph.WithSeed(uint32(cfg.Seed)),
	)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	program, err := NewProgram(cfg.Source, pc.SampleRate, uint32(cfg.Seed>>32)^0x5eed)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	clock := &vinyl.ManualClock{}
	ctrl, err := vinyl.New(g,
		vinyl.WithClock(clock),
		vinyl.WithSeed(cfg.Seed),
		vinyl.WithFormat(cfg.Format),
		vinyl.WithIntensity(cfg.Intensity),
		vinyl.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	ctrl.Setup()
	if cfg.Enabled {
		ctrl.ToggleEnabled()
	}

	return &Engine{
		cfg:       cfg,
		clock:     clock,
		ctrl:      ctrl,
		graph:     g,
		program:   program,
		intensity: core.Clamp01(cfg.Intensity),
		volume:    core.Clamp01(cfg.Volume),
		left:      make([]float64, pc.BlockSize),
		right:     make([]float64, pc.BlockSize),
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// ToggleEnabled switches vinyl playback on or off. A needle drop it
// triggers starts at the current position.
func (e *Engine) ToggleEnabled() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.Set(e.position())
	e.ctrl.ToggleEnabled()
}

// ToggleFormat selects the next record format.
func (e *Engine) ToggleFormat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.Set(e.position())
	e.ctrl.ToggleFormat()
}

// SetIntensity sets the intensity knob.
func (e *Engine) SetIntensity(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.intensity = core.Clamp01(x)
}

// SetVolume sets the volume knob.
func (e *Engine) SetVolume(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = core.Clamp01(x)
}

// Status returns the current state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Position:   e.position(),
		Enabled:    e.ctrl.Enabled(),
		Format:     e.ctrl.Format(),
		Intensity:  e.intensity,
		Volume:     e.volume,
		NeedleDrop: e.ctrl.NeedleDropActive(),
		DelayMs:    e.ctrl.DelayTime(),
		Stats:      e.ctrl.Stats(),
		Peak:       e.peak,
	}
}

// Position returns the amount of audio rendered so far.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position()
}

func (e *Engine) position() time.Duration {
	return time.Duration(float64(e.samples) / e.cfg.SampleRate * float64(time.Second))
}

// Process renders len(left) stereo frames into left and right. When dry is
// not nil it receives the unprocessed program material. The controller is
// polled once per block.
func (e *Engine) Process(dry, left, right []float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.process(dry, left, right)
}

func (e *Engine) process(dry, left, right []float64) {
	n := min(len(left), len(right))
	for start := 0; start < n; start += e.cfg.BlockSize {
		end := min(start+e.cfg.BlockSize, n)
		l, r := left[start:end], right[start:end]

		e.clock.Set(e.position())
		e.ctrl.Poll(e.intensity, e.volume)

		e.program.Process(l)
		copy(r, l)
		if dry != nil {
			copy(dry[start:end], l)
		}
		e.graph.Process(l, r)
		e.samples += int64(end - start)
		e.peak = max(peakOf(l), peakOf(r))
	}
}

// ReadFloat32 renders len(dst)/2 interleaved stereo frames clipped to [-1,1].
func (e *Engine) ReadFloat32(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	frames := len(dst) / 2
	for done := 0; done < frames; {
		n := min(frames-done, len(e.left))
		l, r := e.left[:n], e.right[:n]
		e.process(nil, l, r)
		for i := range n {
			dst[2*(done+i)] = float32(core.Clamp(l[i], -1, 1))
			dst[2*(done+i)+1] = float32(core.Clamp(r[i], -1, 1))
		}
		done += n
	}
}

func peakOf(x []float64) float64 {
	p := 0.0
	for _, v := range x {
		if v < 0 {
			v = -v
		}
		p = max(p, v)
	}
	return p
}
