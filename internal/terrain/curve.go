package terrain

import "sort"

// Curve remaps a normalized height before it is scaled by the height multiplier.
type Curve interface {
	Evaluate(t float64) float64
}

// LinearCurve returns its input unchanged.
type LinearCurve struct{}

// Evaluate implements Curve.
func (LinearCurve) Evaluate(t float64) float64 { return t }

// CurveFunc adapts a plain function to Curve.
type CurveFunc func(t float64) float64

// Evaluate implements Curve.
func (f CurveFunc) Evaluate(t float64) float64 { return f(t) }

// Keyframe is a curve control point with Hermite tangents.
type Keyframe struct {
	Time       float64 `yaml:"time"`
	Value      float64 `yaml:"value"`
	InTangent  float64 `yaml:"in_tangent"`
	OutTangent float64 `yaml:"out_tangent"`
}

// KeyframeCurve is a piecewise cubic Hermite curve. It is immutable after
// construction and safe for concurrent use.
type KeyframeCurve struct {
	keys []Keyframe
}

// NewKeyframeCurve builds a curve from keys, sorted by time.
func NewKeyframeCurve(keys ...Keyframe) *KeyframeCurve {
	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})
	return &KeyframeCurve{keys: sorted}
}

// Keys returns a copy of the curve's keyframes.
func (c *KeyframeCurve) Keys() []Keyframe {
	out := make([]Keyframe, len(c.keys))
	copy(out, c.keys)
	return out
}

// Evaluate implements Curve. Inputs outside the key range clamp to the end values.
func (c *KeyframeCurve) Evaluate(t float64) float64 {
	n := len(c.keys)
	switch {
	case n == 0:
		return t
	case n == 1 || t <= c.keys[0].Time:
		return c.keys[0].Value
	case t >= c.keys[n-1].Time:
		return c.keys[n-1].Value
	}

	// First key strictly after t; the segment is [i-1, i]
	i := sort.Search(n, func(i int) bool { return c.keys[i].Time > t })
	k0, k1 := c.keys[i-1], c.keys[i]

	dt := k1.Time - k0.Time
	if dt == 0 {
		return k1.Value
	}
	s := (t - k0.Time) / dt
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	return h00*k0.Value + h10*dt*k0.OutTangent + h01*k1.Value + h11*dt*k1.InTangent
}
