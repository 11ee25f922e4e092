package terrain

import (
	"fmt"
	"math"
	"strings"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Basis is single-octave 2D coherent noise returning values in roughly [-1, 1].
type Basis interface {
	Eval2(x, y float64) float64
}

// BasisKind selects the coherent noise implementation.
type BasisKind int

const (
	BasisSimplex BasisKind = iota
	// BasisPerlin is classic gradient noise. Samples are shifted off the
	// integer lattice, where it would always return 0.
	BasisPerlin
)

// String returns the config name of k.
func (k BasisKind) String() string {
	switch k {
	case BasisSimplex:
		return "simplex"
	case BasisPerlin:
		return "perlin"
	default:
		return fmt.Sprintf("basis(%d)", int(k))
	}
}

// ParseBasisKind converts a config name to a BasisKind.
func ParseBasisKind(s string) (BasisKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "simplex", "opensimplex":
		return BasisSimplex, nil
	case "perlin":
		return BasisPerlin, nil
	default:
		return 0, fmt.Errorf("unknown noise basis %q", s)
	}
}

// NewBasis creates a seeded basis of the given kind.
func NewBasis(kind BasisKind, seed int64) Basis {
	if kind == BasisPerlin {
		return perlinBasis{p: perlin.NewPerlin(2, 2, 1, seed)}
	}
	return opensimplex.New(seed)
}

// Single-octave Perlin peaks near ±sqrt(1/2); rescale to the simplex range.
var perlinGain = math.Sqrt2

// Perlin noise is 0 on every integer lattice point, and integer scales put
// whole octaves on the lattice. Shifting by an irrational fraction keeps
// samples off it.
var perlinBias = 1 / math.Pi

type perlinBasis struct {
	p *perlin.Perlin
}

func (b perlinBasis) Eval2(x, y float64) float64 {
	return clampf(b.p.Noise2D(x+perlinBias, y+perlinBias)*perlinGain, -1, 1)
}
