package graph

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-vinyl/dsp/core"
	"github.com/cwbudde/algo-vinyl/dsp/delay"
	"github.com/cwbudde/algo-vinyl/dsp/envelope"
	"github.com/cwbudde/algo-vinyl/dsp/filter/biquad"
	"github.com/cwbudde/algo-vinyl/dsp/filter/design"
	"github.com/cwbudde/algo-vinyl/dsp/mixer"
	"github.com/cwbudde/algo-vinyl/dsp/signal"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

const (
	defaultToneHz = 1000.0
	defaultToneQ  = 0.7071067811865476
	minToneQ      = 0.5
	maxToneQ      = 10.0
)

var _ vinyl.Sink = (*Graph)(nil)

// Option configures a Graph.
type Option func(*options)

type options struct {
	seed uint32
}

// WithSeed seeds the noise sources. Graphs with equal seeds and equal
// parameter histories render identical output.
func WithSeed(seed uint32) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// Graph is the software playback path.
type Graph struct {
	mu  sync.Mutex
	cfg core.ProcessorConfig

	lines   [2]*delay.Line
	delayMs [2]float64
	tone    [2]*biquad.Section
	toneHz  [2]float64
	toneQ   [2]float64

	oscs    [vinyl.NumSources]*signal.Oscillator
	noises  [vinyl.NumSources]*signal.WhiteNoise
	surface *signal.PinkNoise

	envs   [vinyl.NumEnvelopes]*envelope.Envelope
	mixers [vinyl.NumMixers]*mixer.Mixer

	volume        float64
	volumeCurrent float64

	buf buffers
}

type buffers struct {
	direct   [2][]float64
	filtered [2][]float64
	surface  []float64
	voice    [vinyl.NumSources][]float64
	crackles []float64
	needle   []float64
	effects  []float64
	ramp     []float64
}

// New returns a silent graph configured by core processor options.
func New(opts ...core.ProcessorOption) (*Graph, error) {
	return NewWithOptions(opts)
}

// NewWithOptions returns a silent graph with processor and graph options.
// All mixer gains start at zero; a controller's Setup makes it audible.
func NewWithOptions(coreOpts []core.ProcessorOption, opts ...Option) (*Graph, error) {
	cfg := core.ApplyProcessorOptions(coreOpts...)
	o := options{seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	g := &Graph{cfg: cfg, volume: 1, volumeCurrent: 1}

	lineSize := core.MillisToSamples(vinyl.MaxDelayMs, cfg.SampleRate) + 4
	for s := range g.lines {
		line, err := delay.New(lineSize)
		if err != nil {
			return nil, fmt.Errorf("graph: delay line: %w", err)
		}
		g.lines[s] = line
		g.toneHz[s] = defaultToneHz
		g.toneQ[s] = defaultToneQ
		g.tone[s] = biquad.NewSection(design.Lowpass(defaultToneHz, defaultToneQ, cfg.SampleRate))
	}

	for _, src := range []vinyl.Source{vinyl.SourceLightPop, vinyl.SourceDeepPop, vinyl.SourceNeedleDrop} {
		g.oscs[src] = signal.NewOscillator(cfg.SampleRate)
	}
	g.noises[vinyl.SourceScratch] = signal.NewWhiteNoise(o.seed)
	g.noises[vinyl.SourceNeedleNoise] = signal.NewWhiteNoise(o.seed + 1)
	g.surface = signal.NewPinkNoise(o.seed + 2)

	for e := range g.envs {
		env, err := envelope.New(cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("graph: envelope %v: %w", vinyl.Envelope(e), err)
		}
		g.envs[e] = env
	}
	for m := range g.mixers {
		mx, err := mixer.New(cfg.BlockSize)
		if err != nil {
			return nil, fmt.Errorf("graph: mixer %v: %w", vinyl.Mixer(m), err)
		}
		g.mixers[m] = mx
	}

	g.allocBuffers(cfg.BlockSize)
	return g, nil
}

func (g *Graph) allocBuffers(n int) {
	b := &g.buf
	for s := range 2 {
		b.direct[s] = make([]float64, n)
		b.filtered[s] = make([]float64, n)
	}
	for src := range b.voice {
		b.voice[src] = make([]float64, n)
	}
	b.surface = make([]float64, n)
	b.crackles = make([]float64, n)
	b.needle = make([]float64, n)
	b.effects = make([]float64, n)
	b.ramp = make([]float64, n)
}

// Config returns the sample rate and block size.
func (g *Graph) Config() core.ProcessorConfig {
	return g.cfg
}

// Process renders one stereo buffer in place: left and right carry the
// clean input on entry and the processed output on return. Buffers longer
// than the block size are rendered in block-sized chunks. Samples beyond
// the shorter of the two buffers are left untouched.
func (g *Graph) Process(left, right []float64) {
	n := min(len(left), len(right))

	g.mu.Lock()
	defer g.mu.Unlock()

	for start := 0; start < n; start += g.cfg.BlockSize {
		end := min(start+g.cfg.BlockSize, n)
		g.processBlock(left[start:end], right[start:end])
	}
}

func (g *Graph) processBlock(left, right []float64) {
	n := len(left)
	b := &g.buf
	out := [2][]float64{left, right}

	for s := range 2 {
		direct := b.direct[s][:n]
		filtered := b.filtered[s][:n]
		copy(direct, out[s])

		d := g.delayMs[s]*g.cfg.SampleRate/1000 + 1
		g.lines[s].ProcessBlockTo(filtered, direct, d)
		g.tone[s].ProcessBlock(filtered)
	}

	g.surface.Process(b.surface[:n])

	g.renderVoice(vinyl.SourceLightPop, vinyl.EnvelopeLightPop, n)
	g.renderVoice(vinyl.SourceDeepPop, vinyl.EnvelopeDeepPop, n)
	g.renderVoice(vinyl.SourceScratch, vinyl.EnvelopeScratch, n)
	g.mixers[vinyl.MixerCrackles].Process(b.crackles[:n], [mixer.Channels][]float64{
		b.voice[vinyl.SourceLightPop], b.voice[vinyl.SourceDeepPop], b.voice[vinyl.SourceScratch], nil,
	})

	g.renderNeedle(n)
	g.mixers[vinyl.MixerEffects].Process(b.effects[:n], [mixer.Channels][]float64{
		b.crackles, b.needle, nil, nil,
	})

	for s, m := range [2]vinyl.Mixer{vinyl.MixerOutputLeft, vinyl.MixerOutputRight} {
		g.mixers[m].Process(out[s], [mixer.Channels][]float64{
			b.filtered[s], b.direct[s], b.surface, b.effects,
		})
	}

	g.applyVolume(left, right)
}

func (g *Graph) renderVoice(src vinyl.Source, env vinyl.Envelope, n int) {
	buf := g.buf.voice[src][:n]
	e := g.envs[env]
	if !e.Active() {
		core.Zero(buf)
		return
	}
	g.renderSource(src, buf)
	e.Process(buf)
}

func (g *Graph) renderNeedle(n int) {
	b := &g.buf
	buf := b.needle[:n]
	e := g.envs[vinyl.EnvelopeNeedleDrop]
	if !e.Active() {
		core.Zero(buf)
		return
	}
	g.renderSource(vinyl.SourceNeedleDrop, b.voice[vinyl.SourceNeedleDrop][:n])
	g.renderSource(vinyl.SourceNeedleNoise, b.voice[vinyl.SourceNeedleNoise][:n])
	g.mixers[vinyl.MixerNeedleDrop].Process(buf, [mixer.Channels][]float64{
		b.voice[vinyl.SourceNeedleDrop], b.voice[vinyl.SourceNeedleNoise], nil, nil,
	})
	e.Process(buf)
}

func (g *Graph) renderSource(src vinyl.Source, buf []float64) {
	switch {
	case g.oscs[src] != nil:
		g.oscs[src].Process(buf)
	case g.noises[src] != nil:
		g.noises[src].Process(buf)
	default:
		core.Zero(buf)
	}
}

func (g *Graph) applyVolume(left, right []float64) {
	from, to := g.volumeCurrent, g.volume
	g.volumeCurrent = to
	if from == 1 && to == 1 {
		return
	}

	ramp := g.buf.ramp[:len(left)]
	core.GainRamp(ramp, from, to)
	vecmath.MulBlockInPlace(left, ramp)
	vecmath.MulBlockInPlace(right, ramp)
}

// Reset clears all signal state (delay lines, filter memories, envelopes,
// oscillator phases) and keeps the parameters.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for s := range 2 {
		g.lines[s].Reset()
		g.tone[s].Reset()
	}
	for _, o := range g.oscs {
		if o != nil {
			o.Reset()
		}
	}
	for _, e := range g.envs {
		e.Reset()
	}
	for _, m := range g.mixers {
		m.Snap()
	}
	g.volumeCurrent = g.volume
}
