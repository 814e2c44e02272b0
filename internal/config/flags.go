package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers    = flag.Int("workers", 0, "Worker goroutines for per-vertex loops")
	flagResolution = flag.Int("resolution", 0, "Cells per side of procedural meshes")
	flagIterations = flag.Int("iterations", 0, "Benchmark iterations")
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
	if *flagWorkers > 0 {
		cfg.Engine.Workers = *flagWorkers
	}
	if *flagResolution > 0 {
		cfg.Mesh.Resolution = *flagResolution
	}
	if *flagIterations > 0 {
		cfg.Bench.Iterations = *flagIterations
	}
}
