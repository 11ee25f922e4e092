// Package chunk coordinates per-chunk height field and mesh generation.
package chunk

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainforge/internal/config"
	"github.com/Faultbox/terrainforge/internal/terrain"
)

// Settings are the immutable inputs of a Generator.
type Settings struct {
	Noise            terrain.NoiseParams
	ChunkSize        int
	HeightMultiplier float64
	HeightCurve      terrain.Curve
	UseFalloff       bool
	FlatShading      bool
}

// SettingsFromConfig builds Settings from a loaded config.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	params, err := cfg.NoiseParams()
	if err != nil {
		return Settings{}, err
	}
	chunkSize, err := cfg.ChunkSize()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Noise:            params,
		ChunkSize:        chunkSize,
		HeightMultiplier: cfg.Terrain.HeightMultiplier,
		HeightCurve:      cfg.HeightCurve(),
		UseFalloff:       cfg.Terrain.UseFalloff,
		FlatShading:      cfg.Terrain.FlatShading,
	}, nil
}

// Generator turns chunk positions into height fields and meshes.
// All methods are safe for concurrent use.
type Generator struct {
	settings Settings
	log      *zap.Logger

	falloffOnce sync.Once
	falloff     *terrain.HeightField
}

// NewGenerator creates a generator. A nil logger discards output.
func NewGenerator(settings Settings, log *zap.Logger) (*Generator, error) {
	valid := false
	for _, size := range terrain.SupportedChunkSizes {
		if size == settings.ChunkSize {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unsupported chunk size %d", settings.ChunkSize)
	}
	if settings.HeightCurve == nil {
		settings.HeightCurve = terrain.LinearCurve{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{settings: settings, log: log}, nil
}

// Settings returns the generator's settings.
func (g *Generator) Settings() Settings {
	return g.settings
}

// FieldSize returns the bordered height field edge length for this generator.
func (g *Generator) FieldSize() int {
	return terrain.HeightFieldSize(g.settings.ChunkSize)
}

// FalloffMask returns the cached falloff mask for this generator's field size.
func (g *Generator) FalloffMask() *terrain.HeightField {
	g.falloffOnce.Do(func() {
		g.falloff = terrain.GenerateFalloffMask(g.FieldSize())
		g.log.Debug("falloff mask generated", zap.Int("size", g.FieldSize()))
	})
	return g.falloff
}

// GenerateHeightField synthesizes the bordered height field of the chunk centred at center.
func (g *Generator) GenerateHeightField(center mgl64.Vec2) *terrain.HeightField {
	size := g.FieldSize()

	params := g.settings.Noise
	params.Offset = params.Offset.Add(center)
	field := terrain.GenerateNoiseField(size, size, params)

	if g.settings.UseFalloff {
		// Dimensions match by construction
		carved, err := terrain.ApplyFalloff(field, g.FalloffMask())
		if err != nil {
			panic(err)
		}
		field = carved
	}
	return field
}

// GenerateMesh builds the mesh of field at lod using the configured height settings.
func (g *Generator) GenerateMesh(field *terrain.HeightField, lod terrain.LOD) (*terrain.MeshBuffers, error) {
	mesh, err := terrain.BuildMesh(field, g.settings.HeightMultiplier, g.settings.HeightCurve, lod)
	if err != nil {
		return nil, err
	}
	if g.settings.FlatShading {
		mesh = mesh.FlatShaded()
	}
	return mesh, nil
}
