// Package unroll4 registers a 4x-unrolled biquad kernel for CPUs with wide
// out-of-order cores (AVX2-class x86-64, ARMv8 with NEON).
//
// The kernel is portable Go on both architectures. The CPU feature only
// gates where it is preferred over the generic loop; the registered names
// "unroll4-avx2" and "unroll4-neon" record that gate, not an instruction
// set used by the code.
package unroll4

import "github.com/cwbudde/algo-iirfilter/dsp/filter/biquad/internal/arch/registry"

// ProcessBlock filters buf in place four samples per iteration.
func ProcessBlock(c registry.Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	i := 0
	n := len(buf)

	for ; i+3 < n; i += 4 {
		x0 := buf[i]
		y0 := b0*x0 + d0
		d00 := b1*x0 - a1*y0 + d1
		d10 := b2*x0 - a2*y0

		x1 := buf[i+1]
		y1 := b0*x1 + d00
		d01 := b1*x1 - a1*y1 + d10
		d11 := b2*x1 - a2*y1

		x2 := buf[i+2]
		y2 := b0*x2 + d01
		d02 := b1*x2 - a1*y2 + d11
		d12 := b2*x2 - a2*y2

		x3 := buf[i+3]
		y3 := b0*x3 + d02
		d0 = b1*x3 - a1*y3 + d12
		d1 = b2*x3 - a2*y3

		buf[i] = y0
		buf[i+1] = y1
		buf[i+2] = y2
		buf[i+3] = y3
	}

	for ; i < n; i++ {
		x := buf[i]
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	return d0, d1
}
