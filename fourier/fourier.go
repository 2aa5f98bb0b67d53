// Package fourier implements the forward/inverse discrete Fourier
// transform and a radix-2 fast Fourier transform over complex spectra.
package fourier

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrInvalidSize indicates a non-power-of-two length was passed to FFT or
// InverseFFT.
var ErrInvalidSize = errors.New("fourier: length must be a power of two")

// DFT computes the naive O(N^2) discrete Fourier transform of real input x.
// It exists as a correctness reference for FFT and for small N where the
// power-of-two constraint would otherwise apply.
func DFT(x []float64) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for t := 0; t < n; t++ {
			angle := -2 * math.Pi * float64(k) * float64(t) / float64(n)
			sum += complex(x[t], 0) * cmplx.Exp(complex(0, angle))
		}
		out[k] = sum
	}
	return out
}

// IDFT computes the naive inverse discrete Fourier transform, returning the
// real part of the reconstructed signal.
func IDFT(X []complex128) []float64 {
	n := len(X)
	out := make([]float64, n)
	for t := 0; t < n; t++ {
		var sum complex128
		for k := 0; k < n; k++ {
			angle := 2 * math.Pi * float64(k) * float64(t) / float64(n)
			sum += X[k] * cmplx.Exp(complex(0, angle))
		}
		out[t] = real(sum) / float64(n)
	}
	return out
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// bitReverse returns a copy of buf permuted into bit-reversed order.
func bitReverse(buf []complex128) []complex128 {
	n := len(buf)
	out := make([]complex128, n)
	bits := 0
	for 1<<bits < n {
		bits++
	}
	for i := 0; i < n; i++ {
		rev := 0
		v := i
		for b := 0; b < bits; b++ {
			rev = (rev << 1) | (v & 1)
			v >>= 1
		}
		out[rev] = buf[i]
	}
	return out
}

// fft runs the iterative in-place radix-2 Cooley-Tukey transform. sign is
// -1 for the forward transform and +1 for the inverse (conjugated twiddle
// factors); the caller is responsible for the 1/N scaling of the inverse.
func fft(buf []complex128, sign float64) {
	n := len(buf)
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		angleStep := sign * 2 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				twiddle := cmplx.Exp(complex(0, angleStep*float64(k)))
				even := buf[start+k]
				odd := buf[start+k+half] * twiddle
				buf[start+k] = even + odd
				buf[start+k+half] = even - odd
			}
		}
	}
}

// FFT computes the forward fast Fourier transform of real input x. len(x)
// must be a power of two.
func FFT(x []float64) ([]complex128, error) {
	n := len(x)
	if !isPowerOfTwo(n) {
		return nil, ErrInvalidSize
	}
	buf := make([]complex128, n)
	for i, v := range x {
		buf[i] = complex(v, 0)
	}
	buf = bitReverse(buf)
	fft(buf, -1)
	return buf, nil
}

// FFTComplex computes the forward FFT of a complex input, returning the
// spectrum in natural order in a new slice; x is not modified. len(x) must
// be a power of two.
func FFTComplex(x []complex128) ([]complex128, error) {
	if !isPowerOfTwo(len(x)) {
		return nil, ErrInvalidSize
	}
	buf := bitReverse(x)
	fft(buf, -1)
	return buf, nil
}

// InverseFFT computes the inverse fast Fourier transform, returning the
// real part of the reconstructed signal. len(X) must be a power of two.
func InverseFFT(X []complex128) ([]float64, error) {
	n := len(X)
	if !isPowerOfTwo(n) {
		return nil, ErrInvalidSize
	}
	buf := bitReverse(X)
	fft(buf, 1)
	out := make([]float64, n)
	for i, v := range buf {
		out[i] = real(v) / float64(n)
	}
	return out, nil
}

// InverseFFTComplex is InverseFFT without discarding the imaginary part,
// returning the full complex reconstruction.
func InverseFFTComplex(X []complex128) ([]complex128, error) {
	n := len(X)
	if !isPowerOfTwo(n) {
		return nil, ErrInvalidSize
	}
	buf := bitReverse(X)
	fft(buf, 1)
	out := make([]complex128, n)
	for i, v := range buf {
		out[i] = v / complex(float64(n), 0)
	}
	return out, nil
}
