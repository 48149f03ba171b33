package biquad

import (
	"math"
	"math/cmplx"
)

// Poles returns the z-plane roots of 1 + A1*z^-1 + A2*z^-2.
func (c *Coefficients) Poles() [2]complex128 {
	return quadraticRoots(1, c.A1, c.A2)
}

// Zeros returns the z-plane roots of B0 + B1*z^-1 + B2*z^-2.
func (c *Coefficients) Zeros() [2]complex128 {
	return quadraticRoots(c.B0, c.B1, c.B2)
}

// IsStable reports whether both poles lie strictly inside the unit circle,
// using the stability triangle |A2| < 1, |A1| < 1 + A2.
func (c *Coefficients) IsStable() bool {
	if math.IsNaN(c.A1) || math.IsNaN(c.A2) {
		return false
	}

	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

// IsFinite reports whether every coefficient is a finite number.
func (c *Coefficients) IsFinite() bool {
	for _, v := range [...]float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// MaxPoleRadius returns the larger pole magnitude.
func (c *Coefficients) MaxPoleRadius() float64 {
	p := c.Poles()
	return math.Max(cmplx.Abs(p[0]), cmplx.Abs(p[1]))
}

func quadraticRoots(a, b, c float64) [2]complex128 {
	if a == 0 {
		if b == 0 {
			return [2]complex128{}
		}

		return [2]complex128{complex(-c/b, 0), 0}
	}

	sqrtDisc := cmplx.Sqrt(complex(b*b-4*a*c, 0))
	den := complex(2*a, 0)

	return [2]complex128{
		(-complex(b, 0) + sqrtDisc) / den,
		(-complex(b, 0) - sqrtDisc) / den,
	}
}
