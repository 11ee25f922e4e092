// Package terrain provides height field synthesis and LOD mesh building for chunked terrain.
package terrain

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// SupportedChunkSizes lists the chunk edge lengths (in world units) a chunk may use.
// Every entry is a multiple of every LOD stride so all levels tile evenly.
var SupportedChunkSizes = [...]int{48, 72, 96, 120, 144, 168, 192, 216, 240}

// MaxLOD is the coarsest supported level of detail.
const MaxLOD LOD = 4

var (
	// ErrInvalidLOD is returned when a level of detail is outside [0, MaxLOD].
	ErrInvalidLOD = errors.New("invalid level of detail")
	// ErrFieldShape is returned when a height field cannot be meshed.
	ErrFieldShape = errors.New("malformed height field")
)

// LOD is a mesh level of detail. Zero is full resolution.
type LOD int

// Valid reports whether l is a supported level.
func (l LOD) Valid() bool {
	return l >= 0 && l <= MaxLOD
}

// Stride returns the vertex skip for l.
func (l LOD) Stride() int {
	if l == 0 {
		return 1
	}
	return int(l) * 2
}

// ChunkSize returns the supported chunk size at index.
func ChunkSize(index int) (int, error) {
	if index < 0 || index >= len(SupportedChunkSizes) {
		return 0, fmt.Errorf("chunk size index %d out of range [0,%d]", index, len(SupportedChunkSizes)-1)
	}
	return SupportedChunkSizes[index], nil
}

// VerticesPerLine returns the number of interior vertices along one chunk edge.
func VerticesPerLine(chunkSize int, lod LOD) int {
	return chunkSize/lod.Stride() + 1
}

// HeightFieldSize returns the bordered height field edge length for a chunk.
func HeightFieldSize(chunkSize int) int {
	return VerticesPerLine(chunkSize, 0) + 2
}

// HeightField is a row-major grid of elevations.
type HeightField struct {
	Width  int
	Height int
	Values []float64
}

// NewHeightField allocates a zeroed width x height field.
func NewHeightField(width, height int) *HeightField {
	return &HeightField{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// At returns the value at (x, y).
func (h *HeightField) At(x, y int) float64 {
	return h.Values[y*h.Width+x]
}

// Set stores v at (x, y).
func (h *HeightField) Set(x, y int, v float64) {
	h.Values[y*h.Width+x] = v
}

// Square reports whether the field has equal dimensions.
func (h *HeightField) Square() bool {
	return h.Width == h.Height
}

// MinMax returns the smallest and largest value in the field.
func (h *HeightField) MinMax() (lo, hi float64) {
	if len(h.Values) == 0 {
		return 0, 0
	}
	lo, hi = h.Values[0], h.Values[0]
	for _, v := range h.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// MeshBuffers holds renderable mesh data. Triangles stores index triples.
type MeshBuffers struct {
	Vertices  []mgl32.Vec3
	UVs       []mgl32.Vec2
	Normals   []mgl32.Vec3
	Triangles []uint32
	Bounds    Bounds
}

// TriangleCount returns the number of triangles in the mesh.
func (m *MeshBuffers) TriangleCount() int {
	return len(m.Triangles) / 3
}
