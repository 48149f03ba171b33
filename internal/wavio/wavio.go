// Package wavio reads and writes PCM WAV files as planar float64 audio.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
)

// ErrInvalidFile is returned for input that is not a readable PCM WAV file.
var ErrInvalidFile = errors.New("wavio: invalid wav file")

// Audio is a planar buffer of samples in [-1, 1].
type Audio struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Frames returns the per-channel sample count.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	return len(a.Channels[0])
}

// Read decodes the WAV file at path.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}

	return a, nil
}

// Decode reads a complete WAV stream.
func Decode(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode: %w", err)
	}

	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidFile)
	}

	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidFile, buf.Format.SampleRate)
	}

	numCh := buf.Format.NumChannels
	frames := len(buf.Data) / numCh
	channels := core.NewPlanar(numCh, frames)
	core.Deinterleave(channels, buf.Data)

	return &Audio{
		SampleRate: buf.Format.SampleRate,
		BitDepth:   buf.SourceBitDepth,
		Channels:   channels,
	}, nil
}

// Write encodes a as PCM at bitDepth (16 or 24) to path, creating parent
// directories as needed.
func Write(path string, a *Audio, bitDepth int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(f, a, bitDepth); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Encode writes a as a PCM WAV stream. Samples outside [-1, 1] are clipped.
func Encode(w io.WriteSeeker, a *Audio, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("wavio: unsupported bit depth: %d", bitDepth)
	}

	if a == nil || len(a.Channels) == 0 {
		return errors.New("wavio: no channels")
	}

	if a.SampleRate <= 0 {
		return fmt.Errorf("wavio: sample rate must be > 0: %d", a.SampleRate)
	}

	numCh := len(a.Channels)
	frames := a.Frames()

	for ch, data := range a.Channels {
		if len(data) != frames {
			return fmt.Errorf("wavio: channel %d has %d frames, want %d", ch, len(data), frames)
		}
	}

	data := make([]float32, frames*numCh)
	core.Interleave(data, a.Channels, frames)

	for i, v := range data {
		data[i] = float32(core.Clamp(float64(v), -1, 1))
	}

	enc := wav.NewEncoder(w, a.SampleRate, bitDepth, numCh, 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  a.SampleRate,
			NumChannels: numCh,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: close: %w", err)
	}

	return nil
}
