// Package config handles terrain generator configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/terrainforge/internal/terrain"
)

// Config holds all generator settings.
type Config struct {
	Noise   NoiseConfig   `yaml:"noise"`
	Terrain TerrainConfig `yaml:"terrain"`
	Workers WorkerConfig  `yaml:"workers"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// NoiseConfig holds height field synthesis settings.
type NoiseConfig struct {
	Scale       float64    `yaml:"scale"`
	Octaves     int        `yaml:"octaves"`
	Persistence float64    `yaml:"persistence"`
	Lacunarity  float64    `yaml:"lacunarity"`
	Seed        int64      `yaml:"seed"`
	Offset      [2]float64 `yaml:"offset"`
	Normalize   string     `yaml:"normalize"` // local or global
	Basis       string     `yaml:"basis"`     // simplex or perlin
}

// TerrainConfig holds meshing and chunk settings.
type TerrainConfig struct {
	HeightMultiplier float64            `yaml:"height_multiplier"`
	HeightCurve      []terrain.Keyframe `yaml:"height_curve"` // empty means linear
	UseFalloff       bool               `yaml:"use_falloff"`
	FlatShading      bool               `yaml:"flat_shading"`
	ChunkSizeIndex   int                `yaml:"chunk_size_index"`
	LOD              int                `yaml:"lod"`
	LODLevels        []LODLevelConfig   `yaml:"lod_levels"`
}

// LODLevelConfig maps a viewer distance threshold to a level of detail.
type LODLevelConfig struct {
	LOD         int     `yaml:"lod"`
	MaxDistance float64 `yaml:"max_distance"`
}

// WorkerConfig holds chunk worker pool settings.
type WorkerConfig struct {
	Count int `yaml:"count"` // 0 uses GOMAXPROCS
}

// ExportConfig holds output settings for the CLI.
type ExportConfig struct {
	OutputDir string         `yaml:"output_dir"`
	Regions   []RegionConfig `yaml:"regions"`
}

// RegionConfig colours heights up to Height in colour maps.
type RegionConfig struct {
	Name   string  `yaml:"name"`
	Height float64 `yaml:"height"`
	Color  string  `yaml:"color"` // #rrggbb
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Noise: NoiseConfig{
			Scale:       50,
			Octaves:     4,
			Persistence: 0.5,
			Lacunarity:  2,
			Seed:        1,
			Normalize:   "global",
			Basis:       "simplex",
		},
		Terrain: TerrainConfig{
			HeightMultiplier: 30,
			UseFalloff:       false,
			FlatShading:      false,
			ChunkSizeIndex:   len(terrain.SupportedChunkSizes) - 1,
			LOD:              0,
			LODLevels: []LODLevelConfig{
				{LOD: 0, MaxDistance: 200},
				{LOD: 1, MaxDistance: 400},
				{LOD: 4, MaxDistance: 600},
			},
		},
		Workers: WorkerConfig{
			Count: 0,
		},
		Export: ExportConfig{
			OutputDir: "out",
			Regions: []RegionConfig{
				{Name: "deep water", Height: 0.3, Color: "#1e3c8c"},
				{Name: "shallow water", Height: 0.4, Color: "#3264c8"},
				{Name: "sand", Height: 0.45, Color: "#d2d07d"},
				{Name: "grass", Height: 0.55, Color: "#569817"},
				{Name: "forest", Height: 0.6, Color: "#3e6b12"},
				{Name: "rock", Height: 0.7, Color: "#5a453c"},
				{Name: "mountain", Height: 0.9, Color: "#4b3c35"},
				{Name: "snow", Height: 1, Color: "#ffffff"},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Clamp pulls numeric settings into their usable ranges.
func (c *Config) Clamp() {
	if c.Noise.Scale <= 0 {
		c.Noise.Scale = terrain.MinScale
	}
	if c.Noise.Octaves < 0 {
		c.Noise.Octaves = 0
	}
	if c.Noise.Lacunarity < 1 {
		c.Noise.Lacunarity = 1
	}
	c.Noise.Persistence = min(max(c.Noise.Persistence, 0), 1)
	if c.Workers.Count < 0 {
		c.Workers.Count = 0
	}
}

// Validate reports settings that cannot be clamped into a usable value.
func (c *Config) Validate() error {
	var errs []error

	if _, err := terrain.ParseNormalizeMode(c.Noise.Normalize); err != nil {
		errs = append(errs, err)
	}
	if _, err := terrain.ParseBasisKind(c.Noise.Basis); err != nil {
		errs = append(errs, err)
	}
	if _, err := terrain.ChunkSize(c.Terrain.ChunkSizeIndex); err != nil {
		errs = append(errs, err)
	}
	if !terrain.LOD(c.Terrain.LOD).Valid() {
		errs = append(errs, fmt.Errorf("lod %d out of range [0,%d]", c.Terrain.LOD, terrain.MaxLOD))
	}
	for i, lvl := range c.Terrain.LODLevels {
		if !terrain.LOD(lvl.LOD).Valid() {
			errs = append(errs, fmt.Errorf("lod_levels[%d]: lod %d out of range", i, lvl.LOD))
		}
		if i > 0 && lvl.MaxDistance <= c.Terrain.LODLevels[i-1].MaxDistance {
			errs = append(errs, fmt.Errorf("lod_levels[%d]: max_distance must increase", i))
		}
	}
	for _, r := range c.Export.Regions {
		if _, err := ParseColor(r.Color); err != nil {
			errs = append(errs, fmt.Errorf("region %q: %w", r.Name, err))
		}
	}

	return errors.Join(errs...)
}

// NoiseParams converts the noise section into generator parameters.
func (c *Config) NoiseParams() (terrain.NoiseParams, error) {
	mode, err := terrain.ParseNormalizeMode(c.Noise.Normalize)
	if err != nil {
		return terrain.NoiseParams{}, err
	}
	basis, err := terrain.ParseBasisKind(c.Noise.Basis)
	if err != nil {
		return terrain.NoiseParams{}, err
	}
	return terrain.NoiseParams{
		Seed:        c.Noise.Seed,
		Scale:       c.Noise.Scale,
		Octaves:     c.Noise.Octaves,
		Persistence: c.Noise.Persistence,
		Lacunarity:  c.Noise.Lacunarity,
		Offset:      mgl64.Vec2{c.Noise.Offset[0], c.Noise.Offset[1]},
		Normalize:   mode,
		Basis:       basis,
	}, nil
}

// HeightCurve returns the configured curve, linear when no keys are set.
func (c *Config) HeightCurve() terrain.Curve {
	if len(c.Terrain.HeightCurve) == 0 {
		return terrain.LinearCurve{}
	}
	return terrain.NewKeyframeCurve(c.Terrain.HeightCurve...)
}

// ChunkSize returns the configured chunk edge length.
func (c *Config) ChunkSize() (int, error) {
	return terrain.ChunkSize(c.Terrain.ChunkSizeIndex)
}

// ParseColor parses a #rrggbb colour.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
