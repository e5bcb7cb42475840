package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-vinyl/internal/session"
	"github.com/cwbudde/algo-vinyl/vinyl"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cliArgs := &CLI{}
	parser, err := kong.New(cliArgs, kong.Name("vinyl"), kong.Vars{"version": version})
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return cliArgs, ctx
}

func TestRenderFlagsToConfig(t *testing.T) {
	cliArgs, ctx := parse(t, "render", "--format", "33", "--source", "noise",
		"--intensity", "0.25", "--clean", "--seed", "9", "--sample-rate", "44100", "out.wav")
	if ctx.Command() != "render <output>" {
		t.Fatalf("command = %q", ctx.Command())
	}

	cfg, err := cliArgs.Render.config(nil)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Format != vinyl.Format33 || cfg.Source != session.SourceNoise {
		t.Fatalf("format/source = %v/%v", cfg.Format, cfg.Source)
	}
	if cfg.Intensity != 0.25 || cfg.Enabled || cfg.Seed != 9 || cfg.SampleRate != 44100 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cliArgs.Render.Duration != 10*time.Second {
		t.Fatalf("default duration = %v", cliArgs.Render.Duration)
	}
}

func TestConfigRejectsBadSampleRate(t *testing.T) {
	f := SessionFlags{Format: "78", Source: "melody", SampleRate: 0}
	if _, err := f.config(nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestRenderCommandWritesWAV(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.wav")
	script := filepath.Join(dir, "script.lua")
	if err := os.WriteFile(script, []byte(`at(200, function() toggle_format() end)`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ctx := parse(t, "render", "--duration", "500ms", "--script", script, out)
	if err := ctx.Run(&runContext{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "RIFF") {
		t.Fatal("missing RIFF header")
	}
	want := 44 + 24000*2*2
	if len(data) != want {
		t.Fatalf("file size = %d, want %d", len(data), want)
	}
}

func TestStatsFields(t *testing.T) {
	var s vinyl.Stats
	s.Checks[vinyl.Scratch] = 4
	s.Fires[vinyl.Scratch] = 1
	s.NeedleDrops = 2

	fields := statsFields(s)
	if len(fields) != int(vinyl.NumArtifacts)+1 {
		t.Fatalf("len = %d", len(fields))
	}
	if got := fields[vinyl.Scratch].Value; got != "1 of 4 checks" {
		t.Fatalf("scratch = %q", got)
	}
	if got := fields[len(fields)-1].Value; got != "2" {
		t.Fatalf("needle drops = %q", got)
	}
}
