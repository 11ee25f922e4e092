package terrain

import "math"

// Sample returns the bilinearly interpolated value at fractional grid position (fx, fy).
// Positions outside the field are clamped to the nearest edge.
func (h *HeightField) Sample(fx, fy float64) float64 {
	if h.Width == 0 || h.Height == 0 {
		return 0
	}
	if h.Width == 1 || h.Height == 1 {
		return h.At(clampi(int(fx), 0, h.Width-1), clampi(int(fy), 0, h.Height-1))
	}

	fx = clampf(fx, 0, float64(h.Width-1))
	fy = clampf(fy, 0, float64(h.Height-1))

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	if x0 >= h.Width-1 {
		x0 = h.Width - 2
	}
	if y0 >= h.Height-1 {
		y0 = h.Height - 2
	}

	tx := fx - float64(x0)
	ty := fy - float64(y0)

	// Lerp along x on both rows, then between rows
	top := h.At(x0, y0)*(1-tx) + h.At(x0+1, y0)*tx
	bottom := h.At(x0, y0+1)*(1-tx) + h.At(x0+1, y0+1)*tx
	return top*(1-ty) + bottom*ty
}

// Clone returns a deep copy of the field.
func (h *HeightField) Clone() *HeightField {
	out := NewHeightField(h.Width, h.Height)
	copy(out.Values, h.Values)
	return out
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clampf(v, 0, 1)
}

// inverseLerp maps v from [a, b] to [0, 1]. A degenerate range maps to 0.
func inverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return clamp01((v - a) / (b - a))
}
