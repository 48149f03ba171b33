// Command lpinfo prints the coefficients, poles and frequency response of
// the low-pass filter at one cutoff/resonance setting.
//
// Usage:
//
//	lpinfo [flags]
//
// Examples:
//
//	lpinfo -cutoff 1000 -q 4
//	lpinfo -rate 48000 -cutoff 20000
//	lpinfo -cutoff 2000 -measure
package main

import (
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/biquad"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/design"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/lowpass"
	"github.com/cwbudde/algo-iirfilter/dsp/param"
	"github.com/cwbudde/algo-iirfilter/measure/spectrum"
)

const (
	measureBlock  = 512
	measureLength = 1 << 17
	measureFFT    = 4096
)

var tableFreqs = []float64{20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000}

func main() {
	rate := flag.Float64("rate", 44100, "sample rate in Hz")
	cutoff := flag.Float64("cutoff", 440, "cutoff frequency in Hz")
	q := flag.Float64("q", 1, "resonance (Q)")
	measure := flag.Bool("measure", false, "also render noise through the filter and show the measured response")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lpinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints coefficients, poles and magnitude response of the low-pass filter.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lpinfo -cutoff 1000 -q 4\n")
		fmt.Fprintf(os.Stderr, "  lpinfo -cutoff 2000 -measure\n")
	}
	flag.Parse()

	store := param.NewDefaultStore()
	if err := store.Set(param.CutoffID, *cutoff); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := store.Set(param.ResonanceID, *q); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	eng, err := lowpass.New(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	stream := core.ApplyProcessorOptions(
		core.WithSampleRate(*rate),
		core.WithBlockSize(measureBlock),
		core.WithNumChannels(1),
	)

	if err := eng.PrepareConfig(stream); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	storedCutoff, _ := store.Get(param.CutoffID)
	storedQ, _ := store.Get(param.ResonanceID)
	effCutoff := design.ClampCutoff(storedCutoff, *rate)
	effQ := design.ClampQ(storedQ)
	c := eng.Coefficients()

	printSummary(*rate, effCutoff, effQ, c)

	var measured []float64
	var analyzer *spectrum.Analyzer

	if *measure {
		analyzer, measured, err = measureResponse(eng, *rate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: measurement failed: %v\n", err)
			os.Exit(1)
		}
	}

	printResponse(c, *rate, effCutoff, analyzer, measured)
}

func printSummary(rate, cutoff, q float64, c biquad.Coefficients) {
	fmt.Printf("sample rate  %g Hz\n", rate)
	fmt.Printf("cutoff       %g Hz\n", cutoff)
	fmt.Printf("resonance    %g\n", q)
	fmt.Printf("kernel       %s\n\n", biquad.KernelName())

	fmt.Printf("b0 = %+.12f\n", c.B0)
	fmt.Printf("b1 = %+.12f\n", c.B1)
	fmt.Printf("b2 = %+.12f\n", c.B2)
	fmt.Printf("a1 = %+.12f\n", c.A1)
	fmt.Printf("a2 = %+.12f\n\n", c.A2)

	for i, p := range c.Poles() {
		fmt.Printf("pole %d       %.6f%+.6fi  |p| = %.6f\n", i, real(p), imag(p), cmplx.Abs(p))
	}

	fmt.Printf("stable       %v\n\n", c.IsStable())
}

func measureResponse(eng *lowpass.Engine, rate float64) (*spectrum.Analyzer, []float64, error) {
	rng := rand.New(rand.NewSource(1))

	in := make([]float64, measureLength)
	for i := range in {
		in[i] = rng.Float64() - 0.5
	}

	out := append([]float64(nil), in...)

	eng.Reset()

	block := [][]float64{nil}
	for start := 0; start < len(out); start += measureBlock {
		block[0] = out[start:min(start+measureBlock, len(out))]
		if err := eng.Process(block, len(block[0])); err != nil {
			return nil, nil, err
		}
	}

	a, err := spectrum.NewAnalyzer(measureFFT, rate)
	if err != nil {
		return nil, nil, err
	}

	h, err := a.Transfer(in, out)
	if err != nil {
		return nil, nil, err
	}

	return a, h, nil
}

func printResponse(c biquad.Coefficients, rate, cutoff float64, a *spectrum.Analyzer, measured []float64) {
	freqs := []float64{cutoff}
	for _, f := range tableFreqs {
		if f < rate/2 && f != cutoff {
			freqs = append(freqs, f)
		}
	}

	sort.Float64s(freqs)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	header := "Frequency [Hz]\tMagnitude [dB]\tPhase [deg]"
	rule := "--------------\t--------------\t-----------"

	if measured != nil {
		header += "\tMeasured [dB]\tError [dB]"
		rule += "\t-------------\t----------"
	}

	if _, err := fmt.Fprintf(tw, "%s\n%s\n", header, rule); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, f := range freqs {
		mag := c.MagnitudeDB(f, rate)
		phase := c.Phase(f, rate) * 180 / math.Pi

		row := fmt.Sprintf("%.1f\t%.3f\t%.2f", f, mag, phase)

		if measured != nil {
			k := a.Bin(f)
			got := a.LevelDB(measured, f)
			want := c.MagnitudeDB(a.Frequency(k), rate)
			row += fmt.Sprintf("\t%.3f\t%+.3f", got, got-want)
		}

		if _, err := fmt.Fprintln(tw, row); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}

	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
