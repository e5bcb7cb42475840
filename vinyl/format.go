package vinyl

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownFormat is returned by ParseFormat for names outside the preset table.
var ErrUnknownFormat = errors.New("unknown vinyl format")

// Format selects a record type and with it a tone and noise preset.
type Format int

const (
	Format78 Format = iota // shellac, muffled and noisy
	Format33               // long play, cleaner
)

// Modulator is a sinusoidal frequency offset.
type Modulator struct {
	DepthHz float64
	RateHz  float64
}

func (m Modulator) at(t float64) float64 {
	return m.DepthHz * math.Sin(2*math.Pi*m.RateHz*t)
}

// Preset holds everything a Format changes on the sink.
type Preset struct {
	Name          string
	FilteredGain  float64
	DirectGain    float64
	FilterLeftHz  float64
	FilterRightHz float64
	NoiseGain     float64
	Wow           Modulator
	Flutter       Modulator
}

// formats lists the presets in toggle order.
var formats = []Format{Format78, Format33}

var presets = map[Format]Preset{
	Format78: {
		Name:          "78",
		FilteredGain:  0.85,
		DirectGain:    0.15,
		FilterLeftHz:  600,
		FilterRightHz: 650,
		NoiseGain:     0.03,
		Wow:           Modulator{DepthHz: 150, RateHz: 0.4},
		Flutter:       Modulator{DepthHz: 60, RateHz: 4},
	},
	Format33: {
		Name:          "33",
		FilteredGain:  0.70,
		DirectGain:    0.30,
		FilterLeftHz:  1000,
		FilterRightHz: 1250,
		NoiseGain:     0.015,
		Wow:           Modulator{DepthHz: 60, RateHz: 0.3},
		Flutter:       Modulator{DepthHz: 20, RateHz: 3},
	},
}

// Formats returns all formats in toggle order.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// ParseFormat resolves a preset name such as "33" or "78".
func ParseFormat(name string) (Format, error) {
	name = strings.TrimSpace(name)
	for _, f := range formats {
		if presets[f].Name == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Valid reports whether f has a preset.
func (f Format) Valid() bool {
	_, ok := presets[f]
	return ok
}

// Preset returns the preset of f. It panics for formats outside the table.
func (f Format) Preset() Preset {
	p, ok := presets[f]
	if !ok {
		panic(fmt.Sprintf("vinyl: no preset for format %d", int(f)))
	}
	return p
}

// Next returns the format that follows f in toggle order.
func (f Format) Next() Format {
	for i, g := range formats {
		if g == f {
			return formats[(i+1)%len(formats)]
		}
	}
	panic(fmt.Sprintf("vinyl: no preset for format %d", int(f)))
}

func (f Format) String() string {
	if p, ok := presets[f]; ok {
		return p.Name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}
