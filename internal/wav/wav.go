// Package wav writes 16-bit PCM WAVE files.
package wav

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	formatPCM = 1
)

// ErrChannelLength is returned when the channels differ in length.
var ErrChannelLength = errors.New("wav: channels differ in length")

// Write encodes the channels as interleaved 16-bit PCM. Samples are
// clipped to [-1,1] and NaN is written as silence. The header sizes are
// patched in place, so w must be seekable.
func Write(w io.WriteSeeker, sampleRate int, channels ...[]float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: sample rate must be > 0: %d", sampleRate)
	}
	if len(channels) == 0 {
		return errors.New("wav: no channels")
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != frames {
			return ErrChannelLength
		}
	}

	numCh := len(channels)
	data := make([]int, 0, frames*numCh)
	for i := range frames {
		for _, ch := range channels {
			data = append(data, int(quantize(ch[i])))
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numCh, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	enc := gowav.NewEncoder(w, sampleRate, bitDepth, numCh, formatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// WriteFile writes the channels to path.
func WriteFile(path string, sampleRate int, channels ...[]float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("wav: %w", cerr)
		}
	}()
	return Write(f, sampleRate, channels...)
}

func quantize(x float64) int16 {
	if math.IsNaN(x) {
		return 0
	}
	x = math.Max(-1, math.Min(1, x))
	return int16(math.Round(x * math.MaxInt16))
}
