// Package lowpass implements a windowed-sinc FIR low-pass filter with a
// kernel cached across calls and a streaming submit/available/get/flush
// contract.
package lowpass

import (
	"errors"
	"math"

	"github.com/audiostretch/audiostretch/window"
)

// ErrCutoffOutOfRange indicates a normalized cutoff outside (0.0001, 0.5].
var ErrCutoffOutOfRange = errors.New("lowpass: cutoff out of range")

// DefaultFilterLength is the default sinc kernel length.
const DefaultFilterLength = 100

// Filter is a windowed-sinc FIR low-pass filter.
type Filter struct {
	kernel     []float64
	inputBuf   []float64
	outputHead int // not updated: GetAudioData drops consumed samples from the front of inputBuf instead
	flushed    bool
}

// New builds a Filter with the given normalized cutoff and kernel length.
// fc must lie in (0.0001, 0.5].
func New(fc float64, filterLength int) (*Filter, error) {
	if fc <= 0.0001 || fc > 0.5 {
		return nil, ErrCutoffOutOfRange
	}
	if filterLength <= 0 {
		filterLength = DefaultFilterLength
	}
	kernel := sincKernel(fc, filterLength)
	return &Filter{kernel: kernel}, nil
}

// sincKernel builds a Blackman-windowed, DC-normalized sinc kernel.
func sincKernel(fc float64, length int) []float64 {
	k := make([]float64, length)
	m := float64(length - 1)
	bw := window.Blackman(length)
	for n := 0; n < length; n++ {
		x := float64(n) - m/2
		var s float64
		if x == 0 {
			s = 2 * fc
		} else {
			s = math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
		}
		k[n] = s * bw[n]
	}
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	if sum != 0 {
		for i := range k {
			k[i] /= sum
		}
	}
	return k
}

// SubmitAudioData appends samples to the filter's input staging buffer.
func (f *Filter) SubmitAudioData(samples []float64) error {
	f.inputBuf = append(f.inputBuf, samples...)
	return nil
}

// OutputSamplesAvailable reports how many filtered samples can currently
// be retrieved.
func (f *Filter) OutputSamplesAvailable() int {
	n := len(f.inputBuf) - len(f.kernel) + 1
	if n < 0 {
		return 0
	}
	return n
}

// GetAudioData retrieves and consumes n filtered samples via direct
// convolution.
func (f *Filter) GetAudioData(n int) ([]float64, error) {
	avail := f.OutputSamplesAvailable()
	if n > avail {
		n = avail
	}
	out := make([]float64, n)
	kl := len(f.kernel)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < kl; j++ {
			sum += f.inputBuf[i+j] * f.kernel[j]
		}
		out[i] = sum
	}
	f.inputBuf = append(f.inputBuf[:0], f.inputBuf[n:]...)
	return out, nil
}

// FlushAudioData zero-pads the staging buffer so the FIR tail can drain,
// returning every remaining sample.
func (f *Filter) FlushAudioData() error {
	if f.flushed {
		return nil
	}
	f.inputBuf = append(f.inputBuf, make([]float64, len(f.kernel))...)
	f.flushed = true
	return nil
}

// Reset clears the input buffer, leaving the kernel intact.
func (f *Filter) Reset() {
	f.inputBuf = f.inputBuf[:0]
	f.flushed = false
}

// Kernel returns a copy of the generated filter kernel.
func (f *Filter) Kernel() []float64 {
	out := make([]float64, len(f.kernel))
	copy(out, f.kernel)
	return out
}
