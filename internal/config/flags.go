package config

import (
	"flag"
	"strconv"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagSeed    = optionalInt64("seed", "Noise seed (any value, including 0)")
	flagChunk   = flag.Int("chunk", -1, "Chunk size index into the supported sizes")
	flagLOD     = flag.Int("lod", -1, "Level of detail for single-chunk output")
	flagWorkers = flag.Int("workers", 0, "Worker pool size")
	flagOut     = flag.String("out", "", "Output directory")
	flagFalloff = flag.Bool("falloff", false, "Carve the height field with the falloff mask")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flagSeed.set {
		cfg.Noise.Seed = flagSeed.value
	}
	if *flagChunk >= 0 {
		cfg.Terrain.ChunkSizeIndex = *flagChunk
	}
	if *flagLOD >= 0 {
		cfg.Terrain.LOD = *flagLOD
	}
	if *flagWorkers > 0 {
		cfg.Workers.Count = *flagWorkers
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
	if *flagFalloff {
		cfg.Terrain.UseFalloff = true
	}
}

// int64Flag is an int64 flag that remembers whether it was given, so every
// value stays usable as an override.
type int64Flag struct {
	value int64
	set   bool
}

func optionalInt64(name, usage string) *int64Flag {
	f := &int64Flag{}
	flag.Var(f, name, usage)
	return f
}

func (f *int64Flag) String() string {
	return strconv.FormatInt(f.value, 10)
}

func (f *int64Flag) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	f.value = v
	f.set = true
	return nil
}
