package terrain

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// MinScale is the smallest noise scale used; lower values are floored to it.
const MinScale = 1e-4

// Global normalization tunables. Empirical, calibrated for 3-6 octaves.
const (
	GlobalOffsetDivisor        = 2.7
	GlobalNormalizationDivisor = 1.75
)

// Per-octave sampling origins are drawn from [-octaveOffsetRange, octaveOffsetRange].
const octaveOffsetRange = 100000

// NormalizeMode selects how raw noise is remapped into [0, 1].
type NormalizeMode int

const (
	// NormalizeLocal stretches each field to its own observed range.
	NormalizeLocal NormalizeMode = iota
	// NormalizeGlobal uses the theoretical amplitude bound so independently
	// generated chunks stay height-consistent.
	NormalizeGlobal
)

// String returns the config name of m.
func (m NormalizeMode) String() string {
	switch m {
	case NormalizeLocal:
		return "local"
	case NormalizeGlobal:
		return "global"
	default:
		return fmt.Sprintf("normalize(%d)", int(m))
	}
}

// ParseNormalizeMode converts a config name to a NormalizeMode.
func ParseNormalizeMode(s string) (NormalizeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local":
		return NormalizeLocal, nil
	case "global":
		return NormalizeGlobal, nil
	default:
		return 0, fmt.Errorf("unknown normalize mode %q", s)
	}
}

// NoiseParams configures fractal noise synthesis.
type NoiseParams struct {
	Seed        int64
	Scale       float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
	Offset      mgl64.Vec2
	Normalize   NormalizeMode
	Basis       BasisKind
}

// GenerateNoiseField synthesizes a width x height field of multi-octave noise
// normalized into [0, 1] according to p.Normalize.
func GenerateNoiseField(width, height int, p NoiseParams) *HeightField {
	field := NewHeightField(width, height)

	scale := p.Scale
	if scale <= 0 {
		scale = MinScale
	}
	octaves := max(p.Octaves, 0)

	// Per-octave origins decorrelate layers that would otherwise share phase.
	// Y subtracts the offset because grid rows run towards -Z in mesh space.
	rng := rand.New(rand.NewSource(p.Seed))
	offsets := make([]mgl64.Vec2, octaves)
	maxPossibleHeight := 0.0
	amplitude := 1.0
	for i := range offsets {
		ox := float64(rng.Intn(2*octaveOffsetRange+1)-octaveOffsetRange) + p.Offset.X()
		oy := float64(rng.Intn(2*octaveOffsetRange+1)-octaveOffsetRange) - p.Offset.Y()
		offsets[i] = mgl64.Vec2{ox, oy}

		maxPossibleHeight += amplitude
		amplitude *= p.Persistence
	}

	basis := NewBasis(p.Basis, p.Seed)

	halfWidth := float64(width) / 2
	halfHeight := float64(height) / 2

	minLocal := math.Inf(1)
	maxLocal := math.Inf(-1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			amplitude := 1.0
			frequency := 1.0
			value := 0.0

			for i := 0; i < octaves; i++ {
				sampleX := (float64(x) - halfWidth + offsets[i].X()) / scale * frequency
				sampleY := (float64(y) - halfHeight + offsets[i].Y()) / scale * frequency

				value += basis.Eval2(sampleX, sampleY) * amplitude

				amplitude *= p.Persistence
				frequency *= p.Lacunarity
			}

			minLocal = math.Min(minLocal, value)
			maxLocal = math.Max(maxLocal, value)
			field.Set(x, y, value)
		}
	}

	switch p.Normalize {
	case NormalizeGlobal:
		for i, v := range field.Values {
			field.Values[i] = normalizeGlobal(v, maxPossibleHeight)
		}
	default:
		for i, v := range field.Values {
			field.Values[i] = inverseLerp(minLocal, maxLocal, v)
		}
	}

	return field
}

func normalizeGlobal(v, maxPossibleHeight float64) float64 {
	if maxPossibleHeight == 0 {
		return 0
	}
	n := (v + maxPossibleHeight/GlobalOffsetDivisor) / (maxPossibleHeight / GlobalNormalizationDivisor)
	return math.Max(n, 0)
}
