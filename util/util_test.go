package util

import "testing"

func TestAbs(t *testing.T) {
	if Abs(-5) != 5 {
		t.Error("Abs(-5) should be 5")
	}
	if Abs(5) != 5 {
		t.Error("Abs(5) should be 5")
	}
	if Abs(float64(-3.14)) != 3.14 {
		t.Error("Abs(-3.14) should be 3.14")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 10) != 5 {
		t.Error("Clamp(5, 0, 10) should be 5")
	}
	if Clamp(-1, 0, 10) != 0 {
		t.Error("Clamp(-1, 0, 10) should be 0")
	}
	if Clamp(11, 0, 10) != 10 {
		t.Error("Clamp(11, 0, 10) should be 10")
	}
}

func TestLerp(t *testing.T) {
	if Lerp(0, 10, 0.5) != 5 {
		t.Error("Lerp(0, 10, 0.5) should be 5")
	}
	if Lerp(1, 2, 0) != 1 {
		t.Error("Lerp(1, 2, 0) should be 1")
	}
	if Lerp(1, 2, 1) != 2 {
		t.Error("Lerp(1, 2, 1) should be 2")
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 4095: 4096, 4096: 4096}
	for in, want := range cases {
		if got := NextPowerOfTwo(in); got != want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 4096} {
		if !IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) should be true", n)
		}
	}
	for _, n := range []int{0, -1, 3, 5, 100} {
		if IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) should be false", n)
		}
	}
}
