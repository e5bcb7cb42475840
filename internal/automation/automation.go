// Package automation runs Lua scripts that drive a vinyl controller on the
// render timeline.
//
// A script runs once at load time and schedules callbacks with at(ms, fn).
// Time is the render position in milliseconds; the caller moves it forward
// with Advance. The functions available to scripts are:
//
//	at(ms, fn)          run fn once the render position reaches ms
//	now()               current render position in ms
//	toggle_vinyl()      switch vinyl playback on or off
//	toggle_format()     select the next record format
//	set_intensity(x)    set the intensity knob, clamped to [0,1]
//	set_volume(x)       set the volume knob, clamped to [0,1]
package automation

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-vinyl/dsp/core"
)

// ErrScript marks errors raised by script code.
var ErrScript = errors.New("automation: script error")

// Target receives the commands of a script. *vinyl.Controller implements it.
type Target interface {
	ToggleEnabled()
	ToggleFormat()
}

// Knobs are the continuous inputs a script can set. The render loop passes
// them to the controller on every cycle.
type Knobs struct {
	Intensity float64
	Volume    float64
}

type event struct {
	at  time.Duration
	seq int
	fn  *lua.LFunction
}

// Script is a loaded automation script.
type Script struct {
	state  *lua.LState
	target Target
	knobs  Knobs

	now     time.Duration
	pending []event
	seq     int
}

// Load compiles and runs src. knobs holds the initial knob positions.
func Load(src string, target Target, knobs Knobs) (*Script, error) {
	s, err := newScript(target, knobs)
	if err != nil {
		return nil, err
	}
	if err := s.state.DoString(src); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	return s, nil
}

// LoadFile reads, compiles and runs the script at path.
func LoadFile(path string, target Target, knobs Knobs) (*Script, error) {
	s, err := newScript(target, knobs)
	if err != nil {
		return nil, err
	}
	if err := s.state.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrScript, path, err)
	}
	return s, nil
}

func newScript(target Target, knobs Knobs) (*Script, error) {
	if target == nil {
		return nil, errors.New("automation: nil target")
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("automation: open %s: %w", lib.name, err)
		}
	}

	s := &Script{
		state:  L,
		target: target,
		knobs:  Knobs{Intensity: core.Clamp01(knobs.Intensity), Volume: core.Clamp01(knobs.Volume)},
	}
	for name, fn := range map[string]lua.LGFunction{
		"at":            s.luaAt,
		"now":           s.luaNow,
		"toggle_vinyl":  s.luaToggleVinyl,
		"toggle_format": s.luaToggleFormat,
		"set_intensity": s.luaSetIntensity,
		"set_volume":    s.luaSetVolume,
	} {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	return s, nil
}

// Advance runs every callback scheduled at or before now, in time order.
// Callbacks scheduled for the same time run in the order they were added.
func (s *Script) Advance(now time.Duration) error {
	for len(s.pending) > 0 && s.pending[0].at <= now {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		if ev.at > s.now {
			s.now = ev.at
		}
		if err := s.state.CallByParam(lua.P{Fn: ev.fn, NRet: 0, Protect: true}); err != nil {
			return fmt.Errorf("%w: callback at %v: %v", ErrScript, ev.at, err)
		}
	}
	if now > s.now {
		s.now = now
	}
	return nil
}

// Knobs returns the current knob positions.
func (s *Script) Knobs() Knobs { return s.knobs }

// Pending returns the number of callbacks not yet run.
func (s *Script) Pending() int { return len(s.pending) }

// Last returns the time of the latest pending callback, or the current
// position when nothing is pending.
func (s *Script) Last() time.Duration {
	if len(s.pending) == 0 {
		return s.now
	}
	return s.pending[len(s.pending)-1].at
}

// Close releases the Lua state.
func (s *Script) Close() {
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

func (s *Script) schedule(at time.Duration, fn *lua.LFunction) {
	ev := event{at: at, seq: s.seq, fn: fn}
	s.seq++
	i, _ := slices.BinarySearchFunc(s.pending, ev, func(a, b event) int {
		if a.at != b.at {
			return cmp.Compare(a.at, b.at)
		}
		return a.seq - b.seq
	})
	s.pending = slices.Insert(s.pending, i, ev)
}

func (s *Script) luaAt(L *lua.LState) int {
	ms := float64(L.CheckNumber(1))
	fn := L.CheckFunction(2)
	if ms < 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		L.ArgError(1, "time must be a finite number of milliseconds >= 0")
		return 0
	}
	s.schedule(time.Duration(ms*float64(time.Millisecond)), fn)
	return 0
}

func (s *Script) luaNow(L *lua.LState) int {
	L.Push(lua.LNumber(float64(s.now) / float64(time.Millisecond)))
	return 1
}

func (s *Script) luaToggleVinyl(L *lua.LState) int {
	s.target.ToggleEnabled()
	return 0
}

func (s *Script) luaToggleFormat(L *lua.LState) int {
	s.target.ToggleFormat()
	return 0
}

func (s *Script) luaSetIntensity(L *lua.LState) int {
	s.knobs.Intensity = core.Clamp01(float64(L.CheckNumber(1)))
	return 0
}

func (s *Script) luaSetVolume(L *lua.LState) int {
	s.knobs.Volume = core.Clamp01(float64(L.CheckNumber(1)))
	return 0
}
