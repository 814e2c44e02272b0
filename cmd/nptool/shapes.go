package main

import (
	"fmt"
	"sort"

	"github.com/Faultbox/normalpainter/internal/config"
	"github.com/Faultbox/normalpainter/pkg/meshgen"
)

type shapeFunc func(cfg config.MeshConfig) *meshgen.Mesh

var shapes = map[string]shapeFunc{
	"grid": func(cfg config.MeshConfig) *meshgen.Mesh {
		r := cfg.Resolution
		return meshgen.Grid(r, r, cfg.Size/float32(r), nil)
	},
	// Grid with a square hole in the middle.
	"holegrid": func(cfg config.MeshConfig) *meshgen.Mesh {
		r := cfg.Resolution
		lo, hi := r/3, r-r/3
		return meshgen.Grid(r, r, cfg.Size/float32(r), func(x, z int) bool {
			return x >= lo && x < hi && z >= lo && z < hi
		})
	},
	"cube": func(cfg config.MeshConfig) *meshgen.Mesh {
		return meshgen.Cube(cfg.Size, false)
	},
	"splitcube": func(cfg config.MeshConfig) *meshgen.Mesh {
		return meshgen.Cube(cfg.Size, true)
	},
	"torus": func(cfg config.MeshConfig) *meshgen.Mesh {
		return meshgen.Torus(cfg.Size/2, cfg.Size/6, cfg.Resolution, max(cfg.Resolution/2, 3))
	},
	// Torus cut open along X == 0 with coincident seam vertices.
	"seamtorus": func(cfg config.MeshConfig) *meshgen.Mesh {
		t := meshgen.Torus(cfg.Size/2, cfg.Size/6, cfg.Resolution, max(cfg.Resolution/2, 3))
		return meshgen.SplitSeam(t, 0)
	},
}

// shapeNames returns the known shapes in sorted order.
func shapeNames() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildShape returns the named procedural mesh.
func buildShape(name string, cfg config.MeshConfig) (*meshgen.Mesh, error) {
	fn, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q", name)
	}
	if cfg.Resolution < 3 {
		return nil, fmt.Errorf("resolution %d too small", cfg.Resolution)
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("invalid mesh size %g", cfg.Size)
	}
	return fn(cfg), nil
}
