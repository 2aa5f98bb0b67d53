// Package freqdomain implements the complex-bin frequency-domain
// container with lazily cached magnitude and wrapped-phase views.
package freqdomain

import "math"

// Bin is a single complex frequency-domain sample.
type Bin struct {
	Re, Im float64
}

// Magnitude returns sqrt(re^2 + im^2).
func (b Bin) Magnitude() float64 {
	return math.Hypot(b.Re, b.Im)
}

// Phase returns the wrapped phase of b in (-pi, pi] using a
// quadrant-disambiguated arctangent.
func (b Bin) Phase() float64 {
	re, im := b.Re, b.Im
	switch {
	case re == 0 && im == 0:
		return 0
	case re == 0:
		if im > 0 {
			return math.Pi / 2
		}
		return -math.Pi / 2
	case im == 0:
		if re >= 0 {
			return 0
		}
		return math.Pi
	case re > 0 && im > 0:
		return math.Atan(im / re)
	case re < 0 && im > 0:
		return math.Pi - math.Atan(im/-re)
	case re < 0 && im < 0:
		return -math.Pi + math.Atan(-im/-re)
	default: // re > 0 && im < 0
		return -math.Atan(-im / re)
	}
}

// Domain is an ordered sequence of frequency bins with lazily cached
// magnitude and phase views. A single invalidation bit is flipped on any
// mutation; the cache is rebuilt on first access after that.
type Domain struct {
	bins  []Bin
	valid bool
	mags  []float64
	phs   []float64
}

// New returns a Domain holding n zero-valued bins.
func New(n int) *Domain {
	return &Domain{bins: make([]Bin, n)}
}

// FromComplex builds a Domain from complex128 spectrum values.
func FromComplex(spectrum []complex128) *Domain {
	d := &Domain{bins: make([]Bin, len(spectrum))}
	for i, c := range spectrum {
		d.bins[i] = Bin{Re: real(c), Im: imag(c)}
	}
	return d
}

// Len returns the number of bins.
func (d *Domain) Len() int {
	return len(d.bins)
}

// At returns the bin at index k.
func (d *Domain) At(k int) Bin {
	return d.bins[k]
}

// Set replaces the bin at index k and invalidates the cache.
func (d *Domain) Set(k int, b Bin) {
	d.bins[k] = b
	d.valid = false
}

// Bins returns the underlying bin slice (read-only by convention).
func (d *Domain) Bins() []Bin {
	return d.bins
}

// ToComplex converts the domain back to a complex128 spectrum.
func (d *Domain) ToComplex() []complex128 {
	out := make([]complex128, len(d.bins))
	for i, b := range d.bins {
		out[i] = complex(b.Re, b.Im)
	}
	return out
}

func (d *Domain) rebuild() {
	if d.valid {
		return
	}
	if d.mags == nil || len(d.mags) != len(d.bins) {
		d.mags = make([]float64, len(d.bins))
		d.phs = make([]float64, len(d.bins))
	}
	for i, b := range d.bins {
		d.mags[i] = b.Magnitude()
		d.phs[i] = b.Phase()
	}
	d.valid = true
}

// Magnitudes returns the magnitude of every bin, rebuilding the cache if
// the domain was mutated since the last access.
func (d *Domain) Magnitudes() []float64 {
	d.rebuild()
	out := make([]float64, len(d.mags))
	copy(out, d.mags)
	return out
}

// Phases returns the wrapped phase of every bin, rebuilding the cache if
// the domain was mutated since the last access.
func (d *Domain) Phases() []float64 {
	d.rebuild()
	out := make([]float64, len(d.phs))
	copy(out, d.phs)
	return out
}

// Real returns the real component of every bin.
func (d *Domain) Real() []float64 {
	out := make([]float64, len(d.bins))
	for i, b := range d.bins {
		out[i] = b.Re
	}
	return out
}

// Imaginary returns the imaginary component of every bin.
func (d *Domain) Imaginary() []float64 {
	out := make([]float64, len(d.bins))
	for i, b := range d.bins {
		out[i] = b.Im
	}
	return out
}
