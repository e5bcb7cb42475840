package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-vinyl/internal/session"
	"github.com/cwbudde/algo-vinyl/internal/ui"
)

const (
	outputChannels = 2
	bytesPerSample = 4
	frameBytes     = outputChannels * bytesPerSample
)

// PlayCmd plays the session through the default audio device.
type PlayCmd struct {
	SessionFlags `embed:""`
}

// Run opens the audio device and runs the terminal interface until quit.
func (p *PlayCmd) Run(rc *runContext) error {
	cfg, err := p.config(rc.logger)
	if err != nil {
		return err
	}
	engine, err := session.New(cfg)
	if err != nil {
		return err
	}

	out, err := newOtoOutput(engine, p.SampleRate, p.Latency)
	if err != nil {
		return err
	}
	defer out.Close()
	out.Start()

	if _, err := tea.NewProgram(ui.NewModel(engine), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal interface: %w", err)
	}
	return nil
}

// otoOutput streams the engine into an oto player as interleaved
// little-endian float32 stereo.
type otoOutput struct {
	ctx    *oto.Context
	player *oto.Player
	engine *session.Engine
	buf    []float32

	mu      sync.Mutex // setup and teardown only
	started bool
}

func newOtoOutput(engine *session.Engine, sampleRate int, latency time.Duration) (*otoOutput, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: outputChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("audio device: %w", err)
	}
	<-ready

	o := &otoOutput{ctx: ctx, engine: engine}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read fills p with whole stereo frames rendered by the engine.
func (o *otoOutput) Read(p []byte) (int, error) {
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	n := frames * outputChannels
	if len(o.buf) < n {
		o.buf = make([]float32, n)
	}
	samples := o.buf[:n]
	o.engine.ReadFloat32(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}
	return n * bytesPerSample, nil
}

func (o *otoOutput) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		o.player.Play()
		o.started = true
	}
}

func (o *otoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	return err
}
