package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/algo-vinyl/internal/automation"
	"github.com/cwbudde/algo-vinyl/internal/cli"
	"github.com/cwbudde/algo-vinyl/internal/session"
	"github.com/cwbudde/algo-vinyl/internal/wav"
	"github.com/cwbudde/algo-vinyl/measure/tone"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

const (
	reportFFTSize  = 4096
	reportCutoffHz = 4000
)

// RenderCmd renders offline on the audio-sample clock.
type RenderCmd struct {
	SessionFlags `embed:""`

	Duration time.Duration `short:"d" default:"10s" help:"Length of the render"`
	Script   string        `type:"existingfile" placeholder:"FILE" help:"Lua automation script"`
	Output   string        `arg:"" type:"path" help:"Output WAV file"`
}

// Run renders, writes the WAV file and prints a tone report.
func (r *RenderCmd) Run(rc *runContext) error {
	cfg, err := r.config(rc.logger)
	if err != nil {
		return err
	}
	engine, err := session.New(cfg)
	if err != nil {
		return err
	}

	var script *automation.Script
	if r.Script != "" {
		script, err = automation.LoadFile(r.Script, engine, automation.Knobs{Intensity: cfg.Intensity, Volume: cfg.Volume})
		if err != nil {
			return err
		}
		defer script.Close()
	}

	start := time.Now()
	res, err := session.Render(engine, r.Duration, script)
	if err != nil {
		return err
	}
	if err := wav.WriteFile(r.Output, r.SampleRate, res.Left, res.Right); err != nil {
		return err
	}

	fields := []cli.Field{
		{Key: "Duration", Value: r.Duration.String()},
		{Key: "Format", Value: engine.Status().Format.String()},
		{Key: "Render time", Value: time.Since(start).Round(time.Millisecond).String()},
	}
	toneFields, err := toneReport(cfg.SampleRate, res)
	if err != nil {
		return err
	}
	fields = append(fields, toneFields...)
	fields = append(fields, statsFields(res.Stats)...)

	cli.PrintReport(os.Stdout, "Rendered "+r.Output, fields)
	return nil
}

func toneReport(sampleRate float64, res session.Result) ([]cli.Field, error) {
	if len(res.Dry) < reportFFTSize {
		return nil, nil
	}
	a, err := tone.NewAnalyzer(reportFFTSize, sampleRate)
	if err != nil {
		return nil, err
	}
	dry, err := a.Analyze(res.Dry, reportCutoffHz)
	if err != nil {
		return nil, fmt.Errorf("analyze dry: %w", err)
	}
	wet, err := a.Analyze(res.Left, reportCutoffHz)
	if err != nil {
		return nil, fmt.Errorf("analyze output: %w", err)
	}

	return []cli.Field{
		{Key: "Dry centroid", Value: fmt.Sprintf("%.0f Hz", dry.Centroid)},
		{Key: "Wet centroid", Value: fmt.Sprintf("%.0f Hz", wet.Centroid)},
		{Key: "Dry above 4 kHz", Value: fmt.Sprintf("%.1f %%", 100*dry.HighFraction)},
		{Key: "Wet above 4 kHz", Value: fmt.Sprintf("%.1f %%", 100*wet.HighFraction)},
		{Key: "Dry RMS", Value: fmt.Sprintf("%.4f", dry.RMS)},
		{Key: "Wet RMS", Value: fmt.Sprintf("%.4f", wet.RMS)},
	}, nil
}

func statsFields(s vinyl.Stats) []cli.Field {
	fields := make([]cli.Field, 0, vinyl.NumArtifacts+1)
	for a := range vinyl.NumArtifacts {
		fields = append(fields, cli.Field{
			Key:   a.String(),
			Value: fmt.Sprintf("%d of %d checks", s.Fires[a], s.Checks[a]),
		})
	}
	return append(fields, cli.Field{Key: "Needle drops", Value: fmt.Sprint(s.NeedleDrops)})
}
