// Package peakfreq implements Quinn's second estimator, a sub-bin
// peak-frequency interpolator using three adjacent DFT bins.
package peakfreq

import "math"

const sqrt6over24 = 0.10206207261596577 // math.Sqrt(6) / 24
const sqrtTwoThirds = 0.8164965809277260 // math.Sqrt(2.0 / 3.0)

func tau(x float64) float64 {
	return 0.25*math.Log(3*x*x+6*x+1) -
		sqrt6over24*math.Log((x+1-sqrtTwoThirds)/(x+1+sqrtTwoThirds))
}

// Estimate returns the sub-bin-interpolated frequency (in Hz) of a
// spectral peak at bin k, given the complex values of bin k and its two
// neighbours, for a transform of size n over signal sampled at sampleRate.
func Estimate(k int, prev, at, next complex128, n int, sampleRate float64) float64 {
	denom := real(at) * real(at) + imag(at) * imag(at)
	if denom == 0 {
		return float64(k) * sampleRate / float64(n)
	}

	a1 := real(prev*cmplxConj(at)) / denom
	a2 := real(next*cmplxConj(at)) / denom

	d1 := a1 / (1 - a1)
	d2 := a2 / (a2 - 1)

	delta := (d1+d2)/2 + tau(d1*d1) - tau(d2*d2)

	return (float64(k) + delta) * sampleRate / float64(n)
}

func cmplxConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}
