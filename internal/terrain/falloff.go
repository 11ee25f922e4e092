package terrain

import (
	"fmt"
	"math"
)

// Falloff curve shape: f(t) = t^a / (t^a + (b - b*t)^a).
const (
	falloffA = 3.0
	falloffB = 2.2
)

// GenerateFalloffMask returns a size x size mask that is ~0 in the centre and
// rises to 1 at the edges. It depends on size alone.
func GenerateFalloffMask(size int) *HeightField {
	mask := NewHeightField(size, size)
	if size == 1 {
		return mask
	}

	for y := 0; y < size; y++ {
		vy := float64(y)/float64(size-1)*2 - 1
		for x := 0; x < size; x++ {
			vx := float64(x)/float64(size-1)*2 - 1
			t := math.Max(math.Abs(vx), math.Abs(vy))
			mask.Set(x, y, falloffCurve(t))
		}
	}
	return mask
}

func falloffCurve(t float64) float64 {
	ta := math.Pow(t, falloffA)
	return ta / (ta + math.Pow(falloffB-falloffB*t, falloffA))
}

// ApplyFalloff returns a new field holding clamp01(h - mask) for every cell.
func ApplyFalloff(field, mask *HeightField) (*HeightField, error) {
	if field.Width != mask.Width || field.Height != mask.Height {
		return nil, fmt.Errorf("falloff mask %dx%d does not match field %dx%d",
			mask.Width, mask.Height, field.Width, field.Height)
	}

	out := NewHeightField(field.Width, field.Height)
	for i, v := range field.Values {
		out.Values[i] = clamp01(v - mask.Values[i])
	}
	return out, nil
}
