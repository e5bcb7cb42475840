// Command vinyl renders or plays audio through the vinyl record simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-vinyl/internal/cli"
	"github.com/cwbudde/algo-vinyl/internal/session"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version  versionFlag `short:"v" help:"Show version information"`
	DebugLog string      `name:"debug-log" type:"path" placeholder:"FILE" help:"Write controller debug logs to FILE"`

	Render RenderCmd `cmd:"" help:"Render program material through the simulation to a WAV file"`
	Play   PlayCmd   `cmd:"" help:"Play through the simulation in real time"`
}

type versionFlag bool

// BeforeReset prints the version and exits before required arguments are
// validated.
func (versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(vars["version"])
	app.Exit(0)
	return nil
}

// runContext is bound to every command's Run method.
type runContext struct {
	logger *slog.Logger
}

// SessionFlags are shared by render and play.
type SessionFlags struct {
	Format     string        `short:"f" enum:"78,33" default:"78" help:"Record format (${enum})"`
	Source     string        `short:"s" enum:"melody,noise,silence,tones" default:"melody" help:"Program material (${enum})"`
	Intensity  float64       `short:"i" default:"0.6" help:"Artifact intensity, 0 to 1"`
	Volume     float64       `default:"1" help:"Volume knob, 0 to 1"`
	Clean      bool          `help:"Start with vinyl playback off"`
	Seed       uint64        `default:"1" help:"Random seed"`
	SampleRate int           `name:"sample-rate" default:"48000" help:"Sample rate in Hz"`
	Block      int           `default:"128" help:"Processing block size in frames"`
	Latency    time.Duration `default:"50ms" help:"Audio output buffer (play only)"`
}

func (f SessionFlags) config(logger *slog.Logger) (session.Config, error) {
	format, err := vinyl.ParseFormat(f.Format)
	if err != nil {
		return session.Config{}, err
	}
	source, err := session.ParseSource(f.Source)
	if err != nil {
		return session.Config{}, err
	}
	if f.SampleRate <= 0 {
		return session.Config{}, fmt.Errorf("sample rate must be > 0: %d", f.SampleRate)
	}

	cfg := session.DefaultConfig()
	cfg.SampleRate = float64(f.SampleRate)
	cfg.BlockSize = f.Block
	cfg.Format = format
	cfg.Source = source
	cfg.Intensity = f.Intensity
	cfg.Volume = f.Volume
	cfg.Enabled = !f.Clean
	cfg.Seed = f.Seed
	cfg.Logger = logger
	return cfg, nil
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("vinyl"),
		kong.Description("Vinyl record playback simulation"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	logger, closeLog, err := openDebugLog(cliArgs.DebugLog)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	defer closeLog()

	if err := ctx.Run(&runContext{logger: logger}); err != nil {
		closeLog()
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// openDebugLog returns a debug-level logger writing to path, or nil when
// path is empty.
func openDebugLog(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("debug log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}
