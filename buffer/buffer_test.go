package buffer

import "testing"

func almostEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestAppendAndLen(t *testing.T) {
	b := New()
	b.Append([]float64{1, 2, 3})
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if got := b.Data(); got[1] != 2 {
		t.Fatalf("Data()[1] = %v, want 2", got[1])
	}
}

func TestAppendSilence(t *testing.T) {
	b := New()
	b.AppendSilence(5)
	for _, s := range b.Data() {
		if s != 0 {
			t.Fatalf("expected silence, got %v", s)
		}
	}
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
}

func TestMixIn(t *testing.T) {
	a := FromSlice([]float64{1, 1, 1})
	b := FromSlice([]float64{1, 1, 1, 1, 1})
	a.MixIn(b)
	want := []float64{2, 2, 2, 1, 1}
	got := a.Data()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MixIn()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLinearCrossfade(t *testing.T) {
	a := FromSlice([]float64{1, 1, 1})
	b := FromSlice([]float64{0, 0, 0})
	out := LinearCrossfade(a, b)
	if out.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", out.Len())
	}
	data := out.Data()
	if !almostEqual(data[0], 1, 1e-12) {
		t.Fatalf("data[0] = %v, want 1", data[0])
	}
	if !almostEqual(data[2], 0, 1e-12) {
		t.Fatalf("data[2] = %v, want 0", data[2])
	}
}

func TestRetrieveRemove(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3, 4, 5})
	head := b.RetrieveRemove(2)
	if head.Data()[0] != 1 || head.Data()[1] != 2 {
		t.Fatalf("unexpected retrieved data: %v", head.Data())
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if b.Data()[0] != 3 {
		t.Fatalf("remaining front = %v, want 3", b.Data()[0])
	}
}

func TestMoveLastSamples(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3, 4, 5})
	tail := b.MoveLastSamples(2)
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if tail.Data()[0] != 4 || tail.Data()[1] != 5 {
		t.Fatalf("unexpected tail: %v", tail.Data())
	}
}

func TestAmplify(t *testing.T) {
	b := FromSlice([]float64{1, 1, 1})
	b.Amplify(0.5)
	for _, s := range b.Data() {
		if s != 0.5 {
			t.Fatalf("Amplify() sample = %v, want 0.5", s)
		}
	}
}

func TestAmplifyRamp(t *testing.T) {
	b := FromSlice([]float64{1, 1, 1})
	b.AmplifyRamp(0, 1)
	data := b.Data()
	if !almostEqual(data[0], 0, 1e-12) {
		t.Fatalf("data[0] = %v, want 0", data[0])
	}
	if !almostEqual(data[2], 1, 1e-12) {
		t.Fatalf("data[2] = %v, want 1", data[2])
	}
}

func TestMaxAbsSample(t *testing.T) {
	b := FromSlice([]float64{-0.2, 0.9, -0.5})
	if got := b.MaxAbsSample(); !almostEqual(got, 0.9, 1e-12) {
		t.Fatalf("MaxAbsSample() = %v, want 0.9", got)
	}
	if New().MaxAbsSample() != 0 {
		t.Fatal("MaxAbsSample() of empty buffer should be 0")
	}
}

func TestTruncate(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3, 4})
	b.Truncate(2)
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
}
