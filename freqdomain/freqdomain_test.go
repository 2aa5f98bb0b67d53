package freqdomain

import (
	"math"
	"testing"
)

func TestPhaseQuadrants(t *testing.T) {
	cases := []struct {
		name string
		b    Bin
		want float64
	}{
		{"Q1", Bin{1, 1}, math.Pi / 4},
		{"Q2", Bin{-1, 1}, 3 * math.Pi / 4},
		{"Q3", Bin{-1, -1}, -3 * math.Pi / 4},
		{"Q4", Bin{1, -1}, -math.Pi / 4},
		{"+imAxis", Bin{0, 1}, math.Pi / 2},
		{"-imAxis", Bin{0, -1}, -math.Pi / 2},
		{"+reAxis", Bin{1, 0}, 0},
		{"-reAxis", Bin{-1, 0}, math.Pi},
		{"origin", Bin{0, 0}, 0},
	}
	for _, c := range cases {
		if got := c.b.Phase(); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: Phase() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestMagnitude(t *testing.T) {
	b := Bin{3, 4}
	if got := b.Magnitude(); math.Abs(got-5) > 1e-12 {
		t.Fatalf("Magnitude() = %v, want 5", got)
	}
}

func TestDomainCacheRebuildsAfterMutation(t *testing.T) {
	d := New(4)
	d.Set(0, Bin{3, 4})
	mags := d.Magnitudes()
	if math.Abs(mags[0]-5) > 1e-12 {
		t.Fatalf("Magnitudes()[0] = %v, want 5", mags[0])
	}
	d.Set(0, Bin{6, 8})
	mags = d.Magnitudes()
	if math.Abs(mags[0]-10) > 1e-12 {
		t.Fatalf("Magnitudes()[0] after mutation = %v, want 10", mags[0])
	}
}

func TestFromComplexRoundTrip(t *testing.T) {
	spectrum := []complex128{1 + 2i, -3 + 4i}
	d := FromComplex(spectrum)
	got := d.ToComplex()
	for i := range spectrum {
		if got[i] != spectrum[i] {
			t.Fatalf("ToComplex()[%d] = %v, want %v", i, got[i], spectrum[i])
		}
	}
}
