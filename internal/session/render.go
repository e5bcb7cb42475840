package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/algo-vinyl/internal/automation"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

// Result is an offline render.
type Result struct {
	Dry   []float64
	Left  []float64
	Right []float64
	Stats vinyl.Stats
}

// Render renders duration of audio. When script is not nil it is advanced
// to the render position before every block and its knobs replace the
// engine's intensity and volume.
func Render(e *Engine, duration time.Duration, script *automation.Script) (Result, error) {
	if duration <= 0 {
		return Result{}, errors.New("session: render duration must be > 0")
	}
	cfg := e.Config()
	n := int(duration.Seconds() * cfg.SampleRate)
	res := Result{
		Dry:   make([]float64, n),
		Left:  make([]float64, n),
		Right: make([]float64, n),
	}

	for start := 0; start < n; start += cfg.BlockSize {
		end := min(start+cfg.BlockSize, n)
		if script != nil {
			if err := script.Advance(e.Position()); err != nil {
				return Result{}, fmt.Errorf("session: %w", err)
			}
			k := script.Knobs()
			e.SetIntensity(k.Intensity)
			e.SetVolume(k.Volume)
		}
		e.Process(res.Dry[start:end], res.Left[start:end], res.Right[start:end])
	}
	res.Stats = e.Status().Stats
	return res, nil
}
