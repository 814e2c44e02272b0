// Package config handles nptool configuration loading and management.
package config

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/Faultbox/normalpainter/pkg/editor"
)

// Config holds all tool settings.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Bench   BenchConfig   `yaml:"bench"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig holds editing tolerances and parallelism.
type EngineConfig struct {
	BoundaryAngleDeg   float32 `yaml:"boundary_angle_deg"`
	WeldEpsilon        float32 `yaml:"weld_epsilon"` // squared distance
	FrontfaceTolerance float32 `yaml:"frontface_tolerance"`
	PickCandidateCap   int     `yaml:"pick_candidate_cap"`
	MirrorEpsilon      float32 `yaml:"mirror_epsilon"`
	MirrorNormalDot    float32 `yaml:"mirror_normal_dot"`
	Workers            int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// MeshConfig holds the resolution of the procedural meshes.
type MeshConfig struct {
	Resolution int     `yaml:"resolution"` // cells per side
	Size       float32 `yaml:"size"`
}

// BenchConfig holds benchmark settings.
type BenchConfig struct {
	Iterations   int           `yaml:"iterations"`
	SmoothRadius float32       `yaml:"smooth_radius"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			BoundaryAngleDeg:   357,
			WeldEpsilon:        1e-4,
			FrontfaceTolerance: 0.01,
			PickCandidateCap:   64,
			MirrorEpsilon:      0.001,
			MirrorNormalDot:    0.99,
			Workers:            0,
		},
		Mesh: MeshConfig{
			Resolution: 32,
			Size:       4,
		},
		Bench: BenchConfig{
			Iterations:   10,
			SmoothRadius: 0.25,
			Timeout:      time.Minute,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// EditorOptions converts the engine settings to editor options.
func (c *Config) EditorOptions() editor.Options {
	e := c.Engine
	return editor.Options{
		Workers:            e.Workers,
		BoundaryAngle:      e.BoundaryAngleDeg * math32.Pi / 180,
		WeldEpsilon:        e.WeldEpsilon,
		FrontfaceTolerance: e.FrontfaceTolerance,
		PickCandidateCap:   e.PickCandidateCap,
		MirrorEpsilon:      e.MirrorEpsilon,
		MirrorNormalDot:    e.MirrorNormalDot,
	}
}
