// Command lpfilter renders a WAV file through the resonant low-pass filter.
//
// Usage:
//
//	lpfilter -in input.wav -out output.wav [flags]
//
// The cutoff can be swept exponentially across the file with -sweep-to; the
// sweep publishes one parameter update per block, the way a host automates a
// plugin parameter.
//
// Examples:
//
//	lpfilter -in drums.wav -out dark.wav -cutoff 800 -resonance 4
//	lpfilter -in pad.wav -out sweep.wav -cutoff 200 -sweep-to 8000 -block 256
//	lpfilter -in loop.wav -out quiet.wav -cutoff 1200 -gain-db -6
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/lowpass"
	"github.com/cwbudde/algo-iirfilter/dsp/param"
	"github.com/cwbudde/algo-iirfilter/internal/wavio"
)

type renderConfig struct {
	cutoff    float64
	resonance float64
	sweepTo   float64 // 0 disables the sweep
	block     int
	gain      float64
}

type renderStats struct {
	blocks int
	peak   float64
}

func main() {
	in := flag.String("in", "", "input WAV file")
	out := flag.String("out", "", "output WAV file")
	cutoff := flag.Float64("cutoff", 440, "cutoff frequency in Hz (20..20000)")
	resonance := flag.Float64("resonance", 1, "resonance Q (1..10)")
	sweepTo := flag.Float64("sweep-to", 0, "sweep the cutoff exponentially to this frequency over the file")
	block := flag.Int("block", 512, "block size in samples")
	bits := flag.Int("bits", 16, "output bit depth (16 or 24)")
	gainDB := flag.Float64("gain-db", 0, "output gain in dB")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lpfilter -in input.wav -out output.wav [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders a WAV file through the resonant low-pass filter.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lpfilter -in drums.wav -out dark.wav -cutoff 800 -resonance 4\n")
		fmt.Fprintf(os.Stderr, "  lpfilter -in pad.wav -out sweep.wav -cutoff 200 -sweep-to 8000\n")
	}
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *block < 1 {
		fmt.Fprintf(os.Stderr, "error: block size must be >= 1: %d\n", *block)
		os.Exit(1)
	}

	audio, err := wavio.Read(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading input: %v\n", err)
		os.Exit(1)
	}

	stats, err := render(audio, renderConfig{
		cutoff:    *cutoff,
		resonance: *resonance,
		sweepTo:   *sweepTo,
		block:     *block,
		gain:      core.DBToLinear(*gainDB),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if stats.peak > 1 {
		fmt.Fprintf(os.Stderr, "warning: output peaks at %.2f dBFS and will be clipped\n", core.LinearToDB(stats.peak))
	}

	if err := wavio.Write(*out, audio, *bits); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s (%d frames, %d channels, %d blocks)\n", *out, audio.Frames(), len(audio.Channels), stats.blocks)
}

// render filters a in place.
func render(a *wavio.Audio, cfg renderConfig) (renderStats, error) {
	var stats renderStats

	store := param.NewDefaultStore()
	if err := store.Set(param.CutoffID, cfg.cutoff); err != nil {
		return stats, err
	}

	if err := store.Set(param.ResonanceID, cfg.resonance); err != nil {
		return stats, err
	}

	eng, err := lowpass.New(store)
	if err != nil {
		return stats, err
	}

	stream := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(a.SampleRate)),
		core.WithBlockSize(cfg.block),
		core.WithNumChannels(len(a.Channels)),
	)

	if err := eng.PrepareConfig(stream); err != nil {
		return stats, err
	}

	cutoffParam, err := store.Param(param.CutoffID)
	if err != nil {
		return stats, err
	}

	start, _ := store.Get(param.CutoffID)
	frames := a.Frames()
	view := make([][]float64, len(a.Channels))

	for pos := 0; pos < frames; pos += cfg.block {
		n := min(cfg.block, frames-pos)

		if cfg.sweepTo > 0 {
			if err := cutoffParam.Store(sweepCutoff(start, cfg.sweepTo, pos, frames)); err != nil {
				return stats, err
			}
		}

		for ch := range view {
			view[ch] = a.Channels[ch][pos : pos+n]
		}

		if err := eng.Process(view, n); err != nil {
			return stats, err
		}

		stats.blocks++
	}

	for _, data := range a.Channels {
		if cfg.gain != 1 {
			vecmath.ScaleBlockInPlace(data, cfg.gain)
		}

		stats.peak = math.Max(stats.peak, vecmath.MaxAbs(data))
	}

	return stats, nil
}

// sweepCutoff interpolates exponentially from start to end.
func sweepCutoff(start, end float64, pos, frames int) float64 {
	if frames <= 1 || start <= 0 || end <= 0 {
		return start
	}

	t := float64(pos) / float64(frames-1)

	return start * math.Pow(end/start, t)
}
