// Package window provides analysis/synthesis windowing for the phase
// vocoder's STFT frames.
package window

import "math"

// Hann returns a length-n Hann window: w[i] = 0.5*(1 - cos(2*pi*i/(n-1))).
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Apply multiplies frame element-wise by w in place. Lengths must match.
func Apply(frame, w []float64) {
	for i := range frame {
		frame[i] *= w[i]
	}
}

// Blackman returns a length-n Blackman window, used by the low-pass filter
// kernel rather than the STFT path.
func Blackman(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		w[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
	}
	return w
}
