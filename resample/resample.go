// Package resample implements the upsample-filter-decimate polyphase
// resampler used both to hit explicit output sample-rate targets and, in
// combination with the phase vocoder, to realize pitch shifting.
package resample

import (
	"math"

	"github.com/audiostretch/audiostretch/lowpass"
)

// maxConvergentDenominator bounds the continued-fraction search for a
// rational L/M approximation of an irrational ratio.
const maxConvergentDenominator = 4096

// rationalApproximation returns L, M such that L/M approximates ratio,
// using continued-fraction convergents. If ratio is already a ratio of
// small integers (e.g. two common sample rates), the exact values are
// returned.
func rationalApproximation(ratio float64) (l, m int) {
	if ratio <= 0 {
		return 1, 1
	}

	x := ratio
	var nums, dens [2]int
	nums[0], dens[0] = 0, 1
	nums[1], dens[1] = 1, 0
	prevL, prevM := 0, 1

	for i := 0; i < 32; i++ {
		a := int(math.Floor(x))
		num := a*nums[1] + nums[0]
		den := a*dens[1] + dens[0]
		if den == 0 || den > maxConvergentDenominator || num > maxConvergentDenominator {
			break
		}
		prevL, prevM = num, den
		if math.Abs(x-math.Floor(x)) < 1e-12 {
			break
		}
		nums[0], dens[0] = nums[1], dens[1]
		nums[1], dens[1] = num, den
		x = 1 / (x - float64(a))
	}

	if prevM == 0 {
		return 1, 1
	}
	return prevL, prevM
}

// Resampler resamples a stream of 64-bit float samples by ratio r = Rout/Rin
// via zero-stuff upsampling by L, low-pass filtering, and decimation by M.
type Resampler struct {
	l, m    int
	filter  *lowpass.Filter
	phase   int // offset into the next filtered batch of the next sample to keep
	pending []float64
	outBuf  []float64
}

// New builds a Resampler for the given input sample rate and target ratio
// r = outputRate/inputRate.
func New(inputRate int, ratio float64) (*Resampler, error) {
	l, m := rationalApproximation(ratio)
	if l < 1 {
		l = 1
	}
	if m < 1 {
		m = 1
	}
	cutoff := 0.5 / float64(maxInt(l, m))
	if cutoff > 0.5 {
		cutoff = 0.5
	}
	if cutoff <= 0.0001 {
		cutoff = 0.0001 + 1e-9
	}
	filter, err := lowpass.New(cutoff, lowpass.DefaultFilterLength)
	if err != nil {
		return nil, err
	}
	return &Resampler{l: l, m: m, filter: filter}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// upsample inserts L-1 zeros between consecutive input samples.
func (r *Resampler) upsample(samples []float64) []float64 {
	if r.l == 1 {
		return samples
	}
	out := make([]float64, len(samples)*r.l)
	for i, s := range samples {
		out[i*r.l] = s * float64(r.l)
	}
	return out
}

// SubmitAudioData feeds samples through upsample-by-L then the shared
// low-pass filter stage.
func (r *Resampler) SubmitAudioData(samples []float64) error {
	return r.filter.SubmitAudioData(r.upsample(samples))
}

// decimate pulls every currently-available filtered sample out of the
// filter and keeps every M-th one, carrying the decimation phase forward
// sample-accurately across calls.
func (r *Resampler) decimate() error {
	avail := r.filter.OutputSamplesAvailable()
	if avail == 0 {
		return nil
	}
	filtered, err := r.filter.GetAudioData(avail)
	if err != nil {
		return err
	}
	r.pending = append(r.pending, filtered...)

	i := r.phase
	for i < len(r.pending) {
		r.outBuf = append(r.outBuf, r.pending[i])
		i += r.m
	}
	r.phase = i - len(r.pending)
	r.pending = r.pending[:0]
	return nil
}

// OutputSamplesAvailable reports how many decimated output samples can be
// retrieved right now.
func (r *Resampler) OutputSamplesAvailable() int {
	if err := r.decimate(); err != nil {
		return 0
	}
	return len(r.outBuf)
}

// GetAudioData retrieves and consumes n decimated output samples.
func (r *Resampler) GetAudioData(n int) ([]float64, error) {
	if err := r.decimate(); err != nil {
		return nil, err
	}
	if n > len(r.outBuf) {
		n = len(r.outBuf)
	}
	out := make([]float64, n)
	copy(out, r.outBuf[:n])
	r.outBuf = append(r.outBuf[:0], r.outBuf[n:]...)
	return out, nil
}

// FlushAudioData pushes filterLength zeros through the low-pass filter to
// drain its FIR tail.
func (r *Resampler) FlushAudioData() error {
	return r.filter.FlushAudioData()
}

// Reset clears internal buffering state, leaving the filter kernel intact.
func (r *Resampler) Reset() {
	r.filter.Reset()
	r.phase = 0
	r.outBuf = r.outBuf[:0]
}

// LM returns the chosen upsample/decimate factors, exposed for tests and
// diagnostics.
func (r *Resampler) LM() (int, int) {
	return r.l, r.m
}
