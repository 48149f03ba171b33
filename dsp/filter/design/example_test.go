package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-iirfilter/dsp/filter/design"
)

func ExampleLowpass() {
	c := design.Lowpass(1000, 4, 48000)

	fmt.Printf("100 Hz:   %+.2f dB\n", c.MagnitudeDB(100, 48000))
	fmt.Printf("1000 Hz:  %+.2f dB\n", c.MagnitudeDB(1000, 48000))
	fmt.Printf("10000 Hz: %+.2f dB\n", c.MagnitudeDB(10000, 48000))
	// Output:
	// 100 Hz:   +0.08 dB
	// 1000 Hz:  +12.04 dB
	// 10000 Hz: -42.68 dB
}

func ExampleSafeLowpass() {
	sr := 44100.0
	c := design.SafeLowpass(sr/2+100, 0, sr)

	fmt.Printf("cutoff: %.0f Hz\n", design.ClampCutoff(sr/2+100, sr))
	fmt.Println("stable:", c.IsStable())
	// Output:
	// cutoff: 21609 Hz
	// stable: true
}
