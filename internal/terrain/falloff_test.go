package terrain

import (
	"math"
	"testing"
)

func TestGenerateFalloffMaskSymmetry(t *testing.T) {
	for _, size := range []int{2, 17, 51, 64} {
		mask := GenerateFalloffMask(size)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				v := mask.At(x, y)
				if v < 0 || v > 1 {
					t.Fatalf("size %d: mask(%d,%d) = %v outside [0,1]", size, x, y, v)
				}
				mirrors := []float64{
					mask.At(size-1-x, y),
					mask.At(x, size-1-y),
					mask.At(size-1-x, size-1-y),
				}
				for _, m := range mirrors {
					if math.Abs(v-m) > 1e-12 {
						t.Fatalf("size %d: mask not symmetric at (%d,%d): %v vs %v", size, x, y, v, m)
					}
				}
			}
		}
	}
}

func TestGenerateFalloffMaskCentreAndCorners(t *testing.T) {
	const size = 51
	mask := GenerateFalloffMask(size)

	if c := mask.At(size/2, size/2); c > 1e-9 {
		t.Errorf("centre value %v, want ~0", c)
	}
	corners := [][2]int{{0, 0}, {size - 1, 0}, {0, size - 1}, {size - 1, size - 1}}
	for _, c := range corners {
		if v := mask.At(c[0], c[1]); math.Abs(v-falloffCurve(1)) > 1e-12 {
			t.Errorf("corner %v = %v, want %v", c, v, falloffCurve(1))
		}
	}
	if falloffCurve(1) != 1 {
		t.Errorf("falloffCurve(1) = %v, want 1", falloffCurve(1))
	}

	// Values rise monotonically from centre to edge along a row
	prev := -1.0
	for x := size / 2; x < size; x++ {
		v := mask.At(x, size/2)
		if v < prev {
			t.Fatalf("mask decreases towards edge at x=%d: %v < %v", x, v, prev)
		}
		prev = v
	}
}

func TestGenerateFalloffMaskDeterministic(t *testing.T) {
	a := GenerateFalloffMask(33)
	b := GenerateFalloffMask(33)
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatalf("mask differs at %d", i)
		}
	}
}

func TestApplyFalloffClamps(t *testing.T) {
	field := NewHeightField(3, 1)
	field.Values = []float64{0.2, 1.5, 0.9}
	mask := NewHeightField(3, 1)
	mask.Values = []float64{0.7, 0.1, 0.4}

	out, err := ApplyFalloff(field, mask)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 0.5}
	for i, w := range want {
		if math.Abs(out.Values[i]-w) > 1e-12 {
			t.Errorf("value %d = %v, want %v", i, out.Values[i], w)
		}
	}
	if field.Values[0] != 0.2 {
		t.Error("ApplyFalloff modified its input")
	}

	noise := GenerateNoiseField(51, 51, defaultParams())
	out, err = ApplyFalloff(noise, GenerateFalloffMask(51))
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range out.Values {
		if v < 0 || v > 1 {
			t.Fatalf("combined value %v outside [0,1]", v)
		}
	}
}

func TestApplyFalloffSizeMismatch(t *testing.T) {
	if _, err := ApplyFalloff(NewHeightField(4, 4), GenerateFalloffMask(5)); err == nil {
		t.Error("expected error for mismatched mask size")
	}
}
