// terraingen generates procedural terrain chunks from the command line.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainforge/internal/chunk"
	"github.com/Faultbox/terrainforge/internal/config"
	"github.com/Faultbox/terrainforge/internal/export"
	"github.com/Faultbox/terrainforge/internal/logger"
	"github.com/Faultbox/terrainforge/internal/terrain"
)

func main() {
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]
	args = args[1:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	switch command {
	case "preview":
		err = cmdPreview(cfg, args)
	case "mesh":
		err = cmdMesh(cfg, args)
	case "dump":
		err = cmdDump(cfg, args)
	case "inspect":
		err = cmdInspect(args)
	case "stream":
		err = cmdStream(cfg, args)
	case "saveconfig":
		err = cmdSaveConfig(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Debug("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraingen - procedural terrain chunk generator

Usage:
  terraingen [global flags] <command> [options]

Global flags:
  -config <file>   Config file (default: ./terrain.yaml, ./config.yaml, user config dir)
  -seed <n>        Noise seed
  -chunk <i>       Chunk size index (0-8 → 48..240)
  -lod <l>         Level of detail (0-4)
  -workers <n>     Worker pool size
  -out <dir>       Output directory
  -falloff         Carve chunks with the falloff mask
  -debug           Debug logging

Commands:
  preview [-mode noise|color|falloff] [-format png|bmp] [-scale n] [x y]
                                 Render a chunk's height field to an image
  mesh [-o file.obj] [x y]       Export a chunk mesh as Wavefront OBJ
  dump [-o file.tfh] [x y]       Write a compressed height dump
  inspect <file.tfh>             Print a height dump summary
  stream [-steps n] [-step d]    Walk a viewer along +X and stream chunks
  saveconfig [path]              Write the effective config as YAML

Chunk coordinates x y default to 0 0.

Examples:
  terraingen -seed 7 preview -mode color -scale 4
  terraingen -chunk 0 -lod 2 mesh 1 -1
  terraingen -workers 8 stream -steps 200`)
}

// chunkCoord parses optional trailing "x y" chunk coordinates.
func chunkCoord(fs *flag.FlagSet) (chunk.Coord, error) {
	switch fs.NArg() {
	case 0:
		return chunk.Coord{}, nil
	case 2:
		var c chunk.Coord
		if _, err := fmt.Sscanf(fs.Arg(0)+" "+fs.Arg(1), "%d %d", &c.X, &c.Y); err != nil {
			return chunk.Coord{}, fmt.Errorf("chunk coordinates: %w", err)
		}
		return c, nil
	}
	return chunk.Coord{}, fmt.Errorf("expected chunk coordinates as \"x y\", got %d arguments", fs.NArg())
}

func newGenerator(cfg *config.Config, log *zap.Logger) (*chunk.Generator, error) {
	settings, err := chunk.SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return chunk.NewGenerator(settings, log)
}

func cmdPreview(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	mode := fs.String("mode", "noise", "Draw mode: noise, color or falloff")
	format := fs.String("format", "png", "Image format: png or bmp")
	scale := fs.Int("scale", 1, "Integer upscale factor")
	fs.Parse(args)

	coord, err := chunkCoord(fs)
	if err != nil {
		return err
	}
	imgFormat, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	log := logger.Named("preview")
	gen, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}

	var field *terrain.HeightField
	switch *mode {
	case "noise", "color", "colour":
		field = gen.GenerateHeightField(coord.Center(gen.Settings().ChunkSize))
	case "falloff":
		field = gen.FalloffMask()
	default:
		return fmt.Errorf("unknown preview mode %q", *mode)
	}

	capture := export.NewCapture(cfg.Export.OutputDir, fmt.Sprintf("chunk_%d_%d", coord.X, coord.Y), imgFormat)
	var path string
	if *mode == "color" || *mode == "colour" {
		regions, err := export.RegionsFromConfig(cfg.Export.Regions)
		if err != nil {
			return err
		}
		path, err = capture.Save(export.Upscale(export.ColorImage(field, regions), *scale), "color")
		if err != nil {
			return err
		}
	} else {
		path, err = capture.Save(export.Upscale(export.HeightImage(field), *scale), *mode)
		if err != nil {
			return err
		}
	}

	lo, hi := field.MinMax()
	log.Info("preview written",
		zap.String("path", path),
		zap.String("mode", *mode),
		zap.Int("size", field.Width),
		zap.Float64("min", lo),
		zap.Float64("max", hi))
	fmt.Println(path)
	return nil
}

func cmdMesh(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default: <out>/chunk_<x>_<y>_lod<l>.obj)")
	fs.Parse(args)

	coord, err := chunkCoord(fs)
	if err != nil {
		return err
	}

	log := logger.Named("mesh")
	gen, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}

	lod := terrain.LOD(cfg.Terrain.LOD)
	name := fmt.Sprintf("chunk_%d_%d_lod%d", coord.X, coord.Y, lod)
	path := *output
	if path == "" {
		path = filepath.Join(cfg.Export.OutputDir, name+".obj")
	}

	start := time.Now()
	field := gen.GenerateHeightField(coord.Center(gen.Settings().ChunkSize))
	mesh, err := gen.GenerateMesh(field, lod)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := export.WriteOBJ(f, name, mesh); err != nil {
		f.Close()
		return fmt.Errorf("writing OBJ: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Info("mesh written",
		zap.String("path", path),
		zap.Int("lod", int(lod)),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Duration("took", time.Since(start)))
	fmt.Println(path)
	return nil
}

func cmdDump(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default: <out>/chunk_<x>_<y>.tfh)")
	fs.Parse(args)

	coord, err := chunkCoord(fs)
	if err != nil {
		return err
	}

	gen, err := newGenerator(cfg, logger.Named("dump"))
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = filepath.Join(cfg.Export.OutputDir, fmt.Sprintf("chunk_%d_%d.tfh", coord.X, coord.Y))
	}
	field := gen.GenerateHeightField(coord.Center(gen.Settings().ChunkSize))
	if err := export.WriteHeightFieldFile(path, field); err != nil {
		return err
	}
	logger.Info("height dump written", zap.String("path", path), zap.Int("size", field.Width))
	fmt.Println(path)
	return nil
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: terraingen inspect <file.tfh>")
	}
	field, err := export.ReadHeightFieldFile(args[0])
	if err != nil {
		return err
	}
	lo, hi := field.MinMax()
	fmt.Printf("File:   %s\n", args[0])
	fmt.Printf("Size:   %dx%d\n", field.Width, field.Height)
	fmt.Printf("Range:  %.6f .. %.6f\n", lo, hi)
	fmt.Printf("Centre: %.6f\n", field.At(field.Width/2, field.Height/2))
	return nil
}

func cmdStream(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	steps := fs.Int("steps", 100, "Number of viewer steps")
	step := fs.Float64("step", 10, "Distance travelled per step")
	tick := fs.Duration("tick", 10*time.Millisecond, "Delay between ticks")
	fs.Parse(args)

	log := logger.Named("stream")
	gen, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}

	disp := chunk.NewDispatcher(gen, cfg.Workers.Count, logger.Named("dispatcher"))
	defer disp.Close()

	streamer := chunk.NewStreamer(disp, chunk.LODLevelsFromConfig(cfg.Terrain.LODLevels), logger.Named("streamer"))

	start := time.Now()
	delivered := 0
	viewer := mgl64.Vec2{}
	for i := 0; i < *steps; i++ {
		viewer = mgl64.Vec2{float64(i) * *step, 0}
		delivered += streamer.Tick(viewer)
		time.Sleep(*tick)
	}
	for !streamer.Idle() {
		delivered += streamer.Tick(viewer)
		time.Sleep(*tick)
	}

	log.Info("stream finished",
		zap.Int("steps", *steps),
		zap.Int("delivered", delivered),
		zap.Int("known", streamer.Known()),
		zap.Int("visible", len(streamer.Visible())),
		zap.Duration("took", time.Since(start)))

	for _, c := range streamer.Visible() {
		view, _ := streamer.Chunk(c)
		if view.Mesh == nil {
			fmt.Printf("chunk %4d %4d  pending\n", c.X, c.Y)
			continue
		}
		fmt.Printf("chunk %4d %4d  lod %d  %6d vertices\n", c.X, c.Y, view.LOD, len(view.Mesh.Vertices))
	}
	return nil
}

func cmdSaveConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Println(args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println(filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}
