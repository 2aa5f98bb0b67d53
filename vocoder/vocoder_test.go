package vocoder

import (
	"math"
	"testing"
)

func sineWave(freq float64, sampleRate int, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestIdentityStretchPreservesLength(t *testing.T) {
	sampleRate := 44100
	n := sampleRate / 2
	input := sineWave(440, sampleRate, n)

	pv := New(sampleRate, n, 1.0)
	if err := pv.SubmitAudioData(input); err != nil {
		t.Fatalf("SubmitAudioData() error: %v", err)
	}
	if err := pv.FlushAudioData(); err != nil {
		t.Fatalf("FlushAudioData() error: %v", err)
	}

	avail := pv.OutputSamplesAvailable()
	out, err := pv.GetAudioData(avail)
	if err != nil {
		t.Fatalf("GetAudioData() error: %v", err)
	}

	wantLen := int(float64(n)*1.0 + 0.5)
	// Duration law: within a reasonable tolerance of round(L*sigma); the
	// phase vocoder's whole-frame consumption means the achievable length
	// is quantized by the hop size.
	tol := DefaultFFTSize / OverlapFactor
	if diff := abs(len(out) - wantLen); diff > tol {
		t.Fatalf("output length = %d, want within %d of %d", len(out), tol, wantLen)
	}
}

func TestStretchFactorDoublesDuration(t *testing.T) {
	sampleRate := 44100
	n := sampleRate
	input := sineWave(440, sampleRate, n)

	pv := New(sampleRate, n, 2.0)
	if err := pv.SubmitAudioData(input); err != nil {
		t.Fatalf("SubmitAudioData() error: %v", err)
	}
	if err := pv.FlushAudioData(); err != nil {
		t.Fatalf("FlushAudioData() error: %v", err)
	}

	avail := pv.OutputSamplesAvailable()
	out, err := pv.GetAudioData(avail)
	if err != nil {
		t.Fatalf("GetAudioData() error: %v", err)
	}

	wantLen := int(float64(n)*2.0 + 0.5)
	tol := DefaultFFTSize
	if diff := abs(len(out) - wantLen); diff > tol {
		t.Fatalf("output length = %d, want within %d of %d", len(out), tol, wantLen)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
