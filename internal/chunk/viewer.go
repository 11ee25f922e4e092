package chunk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/terrainforge/internal/config"
	"github.com/Faultbox/terrainforge/internal/terrain"
)

// Coord identifies a chunk on the chunk grid.
type Coord struct {
	X, Y int
}

// CoordAt returns the chunk containing world position pos.
func CoordAt(pos mgl64.Vec2, chunkSize int) Coord {
	size := float64(chunkSize)
	return Coord{
		X: int(math.Round(pos.X() / size)),
		Y: int(math.Round(pos.Y() / size)),
	}
}

// Center returns the world position of the chunk centre.
func (c Coord) Center(chunkSize int) mgl64.Vec2 {
	return mgl64.Vec2{float64(c.X * chunkSize), float64(c.Y * chunkSize)}
}

// Distance returns the distance from viewer to the nearest point of the chunk.
func (c Coord) Distance(viewer mgl64.Vec2, chunkSize int) float64 {
	center := c.Center(chunkSize)
	half := float64(chunkSize) / 2
	dx := math.Max(math.Abs(viewer.X()-center.X())-half, 0)
	dy := math.Max(math.Abs(viewer.Y()-center.Y())-half, 0)
	return math.Hypot(dx, dy)
}

// LODLevel is the level used for chunks up to MaxDistance from the viewer.
type LODLevel struct {
	LOD         terrain.LOD
	MaxDistance float64
}

// LODLevelsFromConfig converts configured thresholds.
func LODLevelsFromConfig(levels []config.LODLevelConfig) []LODLevel {
	out := make([]LODLevel, len(levels))
	for i, l := range levels {
		out[i] = LODLevel{LOD: terrain.LOD(l.LOD), MaxDistance: l.MaxDistance}
	}
	return out
}

// SelectLOD returns the first level whose MaxDistance covers distance.
// Levels must be sorted by ascending MaxDistance. ok is false past the last level.
func SelectLOD(levels []LODLevel, distance float64) (lod terrain.LOD, ok bool) {
	for _, l := range levels {
		if distance <= l.MaxDistance {
			return l.LOD, true
		}
	}
	return 0, false
}

// VisibleChunks returns every chunk whose nearest point lies within viewDistance
// of viewer, in row-major order.
func VisibleChunks(viewer mgl64.Vec2, chunkSize int, viewDistance float64) []Coord {
	current := CoordAt(viewer, chunkSize)
	radius := int(math.Ceil(viewDistance / float64(chunkSize)))

	var coords []Coord
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			c := Coord{X: current.X + dx, Y: current.Y + dy}
			if c.Distance(viewer, chunkSize) <= viewDistance {
				coords = append(coords, c)
			}
		}
	}
	return coords
}
