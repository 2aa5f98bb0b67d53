// Package vocoder implements the phase vocoder: an STFT-based time
// stretcher that decouples analysis hop from synthesis hop while keeping
// spectral bins phase-coherent across frames via instantaneous-frequency
// estimation.
package vocoder

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/audiostretch/audiostretch/buffer"
	"github.com/audiostretch/audiostretch/fourier"
	"github.com/audiostretch/audiostretch/peakfreq"
	"github.com/audiostretch/audiostretch/window"
)

// ErrFlushUnderrun indicates a flush was asked to produce more samples
// than the pending overlap-add tail can supply — an upstream math error.
var ErrFlushUnderrun = errors.New("vocoder: flush asked for more samples than available")

// DefaultFFTSize is the STFT frame size used at typical sample rates.
const DefaultFFTSize = 4096

// OverlapFactor determines the analysis hop as FFTSize/OverlapFactor.
const OverlapFactor = 4

// PhaseVocoder stretches a segment of audio by stretchFactor using an
// STFT analysis/synthesis loop with phase locking.
type PhaseVocoder struct {
	sampleRate    int
	fftSize       int
	hopA          int
	hopS          int
	stretchFactor float64

	analysisWindow []float64

	prevPhase []float64
	synPhase  []float64

	inputBuf []float64
	outAccum []float64
	ready    *buffer.Buffer

	flushed bool
}

// New builds a PhaseVocoder for a segment of lengthSamples input samples
// at sampleRate, targeting stretchFactor (output/input duration ratio).
// The FFT size scales with sample rate relative to the 4096-at-44.1kHz
// default, and never exceeds what the segment can actually supply, except
// that it is never below 64.
func New(sampleRate int, lengthSamples int, stretchFactor float64) *PhaseVocoder {
	fftSize := frameSize(sampleRate, lengthSamples)
	hopA := fftSize / OverlapFactor
	hopS := int(float64(hopA)*stretchFactor + 0.5)
	if hopS < 1 {
		hopS = 1
	}

	half := fftSize/2 + 1
	return &PhaseVocoder{
		sampleRate:     sampleRate,
		fftSize:        fftSize,
		hopA:           hopA,
		hopS:           hopS,
		stretchFactor:  stretchFactor,
		analysisWindow: window.Hann(fftSize),
		prevPhase:      make([]float64, half),
		synPhase:       make([]float64, half),
		outAccum:       make([]float64, fftSize),
		ready:          buffer.New(),
	}
}

// frameSize scales the default 4096-sample frame (defined at 44.1 kHz) to
// other sample rates, rounds up to a power of two, and never exceeds the
// largest power of two the segment can supply (with a floor of 64).
func frameSize(sampleRate, lengthSamples int) int {
	scaled := int(float64(DefaultFFTSize) * float64(sampleRate) / 44100.0)
	n := 64
	for n < scaled {
		n <<= 1
	}

	maxForSegment := 64
	for maxForSegment*2 <= lengthSamples {
		maxForSegment <<= 1
	}
	if maxForSegment < 64 {
		maxForSegment = 64
	}
	if n > maxForSegment {
		n = maxForSegment
	}
	return n
}

// GetStretchFactor returns the stretch factor this vocoder was built with.
func (pv *PhaseVocoder) GetStretchFactor() float64 {
	return pv.stretchFactor
}

// wrapPhase wraps x into (-pi, pi].
func wrapPhase(x float64) float64 {
	twoPi := 2 * math.Pi
	x = math.Mod(x, twoPi)
	if x > math.Pi {
		x -= twoPi
	} else if x <= -math.Pi {
		x += twoPi
	}
	return x
}

// SubmitAudioData appends samples to the analysis staging buffer and
// processes every full frame currently available.
func (pv *PhaseVocoder) SubmitAudioData(samples []float64) error {
	pv.inputBuf = append(pv.inputBuf, samples...)
	return pv.processFrames()
}

func (pv *PhaseVocoder) processFrames() error {
	for len(pv.inputBuf) >= pv.fftSize {
		if err := pv.processFrame(pv.inputBuf[:pv.fftSize]); err != nil {
			return err
		}
		drop := pv.hopA
		if drop > len(pv.inputBuf) {
			drop = len(pv.inputBuf)
		}
		pv.inputBuf = append(pv.inputBuf[:0], pv.inputBuf[drop:]...)
	}
	return nil
}

func (pv *PhaseVocoder) processFrame(frame []float64) error {
	windowed := make([]float64, pv.fftSize)
	copy(windowed, frame)
	window.Apply(windowed, pv.analysisWindow)

	spectrum, err := fourier.FFT(windowed)
	if err != nil {
		return err
	}

	n := pv.fftSize
	half := n / 2
	synSpectrum := make([]complex128, n)
	sampleRate := float64(pv.sampleRate)

	for k := 0; k <= half; k++ {
		re, im := real(spectrum[k]), imag(spectrum[k])
		mag := math.Hypot(re, im)
		phase := math.Atan2(im, re)

		omega := 2 * math.Pi * float64(k) / float64(n)
		delta := wrapPhase(phase - pv.prevPhase[k] - float64(pv.hopA)*omega)
		trueFreq := omega + delta/float64(pv.hopA)

		// A bin that is a local magnitude maximum is a spectral peak; lock
		// its phase propagation to the sub-bin frequency Quinn's estimator
		// resolves, rather than the heterodyne estimate above, which is
		// only accurate exactly at a bin centre.
		if k > 0 && k < half {
			magPrev := cmplx.Abs(spectrum[k-1])
			magNext := cmplx.Abs(spectrum[k+1])
			if mag > magPrev && mag >= magNext {
				peakHz := peakfreq.Estimate(k, spectrum[k-1], spectrum[k], spectrum[k+1], n, sampleRate)
				trueFreq = 2 * math.Pi * peakHz / sampleRate
			}
		}

		pv.synPhase[k] += float64(pv.hopS) * trueFreq
		synSpectrum[k] = cmplx.Rect(mag, pv.synPhase[k])
		if k > 0 && k < half {
			synSpectrum[n-k] = cmplx.Conj(synSpectrum[k])
		}

		pv.prevPhase[k] = phase
	}

	y, err := fourier.InverseFFT(synSpectrum)
	if err != nil {
		return err
	}
	window.Apply(y, pv.analysisWindow)

	for i := 0; i < n; i++ {
		pv.outAccum[i] += y[i]
	}

	hop := pv.hopS
	if hop > len(pv.outAccum) {
		hop = len(pv.outAccum)
	}
	pv.ready.Append(pv.outAccum[:hop])

	remaining := make([]float64, n)
	copy(remaining, pv.outAccum[hop:])
	pv.outAccum = remaining

	return nil
}

// OutputSamplesAvailable reports how many finalized output samples are
// ready to retrieve.
func (pv *PhaseVocoder) OutputSamplesAvailable() int {
	return pv.ready.Len()
}

// GetAudioData retrieves and consumes n finalized output samples.
func (pv *PhaseVocoder) GetAudioData(n int) ([]float64, error) {
	return pv.ready.RetrieveRemove(n).Data(), nil
}

// FlushAudioData drains the pending overlap-add tail. While the input not
// yet consumed by analysis hops, scaled by the stretch factor, is longer
// than that tail, it first analyses further frames from that input
// (zero-padded to the frame size), so the segment's total output covers
// about round(L * stretchFactor) samples. The remaining tail is then pushed
// straight to the ready queue.
func (pv *PhaseVocoder) FlushAudioData() error {
	if pv.flushed {
		return nil
	}
	pv.flushed = true
	for len(pv.inputBuf) > 0 && float64(len(pv.inputBuf))*pv.stretchFactor > float64(len(pv.outAccum)) {
		frame := make([]float64, pv.fftSize)
		copy(frame, pv.inputBuf)
		if err := pv.processFrame(frame); err != nil {
			return err
		}
		drop := pv.hopA
		if drop > len(pv.inputBuf) {
			drop = len(pv.inputBuf)
		}
		pv.inputBuf = pv.inputBuf[drop:]
	}
	pv.ready.Append(pv.outAccum)
	pv.outAccum = pv.outAccum[:0]
	return nil
}
