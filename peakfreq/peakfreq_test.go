package peakfreq

import (
	"math"
	"testing"

	"github.com/audiostretch/audiostretch/fourier"
)

func TestEstimateAccuracy(t *testing.T) {
	n := 4096
	sampleRate := 44100.0

	cases := []float64{
		2 * sampleRate / float64(n),
		1000,
		5000,
		sampleRate / 4,
	}

	for _, f := range cases {
		x := make([]float64, n)
		for i := range x {
			x[i] = math.Sin(2 * math.Pi * f * float64(i) / sampleRate)
		}
		spectrum, err := fourier.FFT(x)
		if err != nil {
			t.Fatalf("FFT error: %v", err)
		}

		// Find the bin with peak magnitude in the lower half spectrum.
		peakBin := 1
		peakMag := 0.0
		for k := 1; k < n/2; k++ {
			mag := math.Hypot(real(spectrum[k]), imag(spectrum[k]))
			if mag > peakMag {
				peakMag = mag
				peakBin = k
			}
		}

		got := Estimate(peakBin, spectrum[peakBin-1], spectrum[peakBin], spectrum[peakBin+1], n, sampleRate)
		tol := f * 0.001
		if tol < 0.5 {
			tol = 0.5
		}
		if !(math.Abs(got-f) <= tol) {
			t.Errorf("f=%v: Estimate() = %v, want within %v", f, got, tol)
		}
	}
}
