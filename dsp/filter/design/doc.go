// Package design derives biquad coefficients for the low-pass engine.
//
// [Lowpass] implements the RBJ cookbook low-pass and returns zero
// coefficients for inputs outside its domain. [SafeLowpass] first pulls
// cutoff and Q into a numerically safe range and therefore always yields a
// stable section; it is the variant used on the render path.
package design
