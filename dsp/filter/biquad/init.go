package biquad

import (
	_ "github.com/cwbudde/algo-iirfilter/dsp/filter/biquad/internal/arch/generic" // portable fallback
	_ "github.com/cwbudde/algo-iirfilter/dsp/filter/biquad/internal/arch/unroll4" // avx2 / neon entries
)
