// nptool is a CLI utility for inspecting and benchmarking the normal
// editing engine on procedural meshes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/normalpainter/internal/camera"
	"github.com/Faultbox/normalpainter/internal/config"
	"github.com/Faultbox/normalpainter/internal/logger"
	"github.com/Faultbox/normalpainter/pkg/editor"
	"github.com/Faultbox/normalpainter/pkg/math"
	"github.com/Faultbox/normalpainter/pkg/meshgen"
	"github.com/Faultbox/normalpainter/pkg/raycast"
	"github.com/Faultbox/normalpainter/pkg/skin"
)

// benchRays is the number of rays cast per benchmark iteration.
const benchRays = 256

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	case "shapes":
		fmt.Println(strings.Join(shapeNames(), "\n"))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	if path, origin := config.Resolve(); path != "" {
		logger.Debug("loaded config", zap.String("path", path), zap.String("origin", string(origin)))
	}

	switch command {
	case "info":
		err = cmdInfo(cfg, args)
	case "holes":
		err = cmdHoles(cfg, args)
	case "select":
		err = cmdSelect(cfg, args)
	case "bench":
		err = cmdBench(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`nptool - normal editing engine utility

Usage:
  nptool [flags] <command> [shape]

Commands:
  info <shape>     Show vertex, face, boundary and component counts
  holes <shape>    List open boundary loops after welding seams
  select <shape>   Select the visible centre of the default view and pick
                   the surface under the screen centre
  bench <shape>    Time raycasts, smoothing, tangents and skinning
  shapes           List procedural shapes

Flags:
  --config <path>      Config file (else $NPTOOL_CONFIG, ./nptool.yaml,
                       then nptool.yaml in $NPTOOL_CONFIG_DIR or the
                       user config directory)
  --debug              Enable debug logging
  --workers <n>        Worker goroutines (0 = GOMAXPROCS)
  --resolution <n>     Cells per side of procedural meshes
  --iterations <n>     Benchmark iterations

Examples:
  nptool info torus
  nptool --resolution 8 holes holegrid
  nptool select cube
  nptool --workers 4 --iterations 20 bench seamtorus`)
}

func shapeArg(command string, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: nptool %s <shape> (one of %s)", command, strings.Join(shapeNames(), ", "))
	}
	return args[0], nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	name, err := shapeArg("info", args)
	if err != nil {
		return err
	}
	m, err := buildShape(name, cfg.Mesh)
	if err != nil {
		return err
	}

	start := time.Now()
	r, err := analyze(m, cfg.EditorOptions())
	if err != nil {
		return err
	}
	logger.Debug("analyzed mesh", zap.String("shape", name), zap.Duration("elapsed", time.Since(start)))

	fmt.Printf("Shape:       %s\n", name)
	fmt.Printf("Vertices:    %d\n", r.Vertices)
	fmt.Printf("Faces:       %d\n", r.Faces)
	fmt.Printf("Triangles:   %d\n", r.Triangles)
	fmt.Printf("Boundary:    %d\n", r.Boundary)
	fmt.Printf("Components:  %d\n", r.Components)
	fmt.Printf("Weld groups: %d\n", r.WeldGroups)
	fmt.Printf("Holes:       %d\n", len(r.Holes))
	return nil
}

func cmdHoles(cfg *config.Config, args []string) error {
	name, err := shapeArg("holes", args)
	if err != nil {
		return err
	}
	m, err := buildShape(name, cfg.Mesh)
	if err != nil {
		return err
	}
	r, err := analyze(m, cfg.EditorOptions())
	if err != nil {
		return err
	}

	if len(r.Holes) == 0 {
		fmt.Println("No holes")
		return nil
	}
	for i, loop := range r.Holes {
		fmt.Printf("Hole %d: %d vertices\n", i, len(loop))
		for _, v := range loop {
			p := m.Points[v]
			fmt.Printf("  %6d  (%8.3f, %8.3f, %8.3f)\n", v, p.X, p.Y, p.Z)
		}
	}
	return nil
}

// viewport is the virtual screen used by the select command.
const viewportW, viewportH float32 = 640, 480

// selection is the outcome of a screen-space selection.
type selection struct {
	Count   int
	Summary editor.Summary
	Hit     bool
	Normal  math.Vec3
}

func cmdSelect(cfg *config.Config, args []string) error {
	name, err := shapeArg("select", args)
	if err != nil {
		return err
	}
	m, err := buildShape(name, cfg.Mesh)
	if err != nil {
		return err
	}

	opts := cfg.EditorOptions()
	opts.Logger = logger.Named("nptool")
	s := selectCentre(editor.New(opts), meshgen.Triangulate(m))

	fmt.Printf("Selected:  %d\n", s.Count)
	if s.Count > 0 {
		p, n := s.Summary.Position, s.Summary.Normal
		fmt.Printf("Centroid:  (%.3f, %.3f, %.3f)\n", p.X, p.Y, p.Z)
		fmt.Printf("Normal:    (%.3f, %.3f, %.3f)\n", n.X, n.Y, n.Z)
	}
	if s.Hit {
		fmt.Printf("Picked:    (%.3f, %.3f, %.3f)\n", s.Normal.X, s.Normal.Y, s.Normal.Z)
	} else {
		fmt.Println("Picked:    nothing")
	}
	return nil
}

// selectCentre frames tri with an orbit camera, rect-selects the visible
// vertices in the middle half of the screen and picks the surface normal
// under the screen centre.
func selectCentre(e *editor.Editor, tri *meshgen.Mesh) selection {
	model := editor.NewModel(tri.Points, append([]math.Vec3(nil), tri.Normals...), tri.Indices)

	cam := camera.NewOrbitCamera()
	cam.FitToBounds(raycast.Bounds(tri.Points))
	view := cam.View(viewportW/viewportH, model.Transform, true)

	var s selection
	s.Count = e.SelectRect(model, view, math.Vec2{X: -0.5, Y: -0.5}, math.Vec2{X: 0.5, Y: 0.5}, 1)
	s.Summary = e.SelectionSummary(model)

	r := cam.Ray(viewportW/2, viewportH/2, viewportW, viewportH)
	if hit, ok := e.Raycast(model, r); ok {
		s.Hit = true
		s.Normal = e.PickNormal(model, r.At(hit.Distance), hit.Triangle)
	}
	return s
}

// benchResult accumulates time spent per phase.
type benchResult struct {
	Raycast  time.Duration
	Hits     int
	Smooth   time.Duration
	Tangents time.Duration
	Skin     time.Duration
	Runs     int
}

func cmdBench(cfg *config.Config, args []string) error {
	name, err := shapeArg("bench", args)
	if err != nil {
		return err
	}
	m, err := buildShape(name, cfg.Mesh)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Bench.Timeout)
	defer cancel()

	opts := cfg.EditorOptions()
	opts.Logger = logger.Named("nptool")
	res, err := bench(ctx, editor.New(opts), meshgen.Triangulate(m), cfg.Bench)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if res.Runs == 0 {
		return fmt.Errorf("no iterations finished within %v", cfg.Bench.Timeout)
	}
	if err != nil {
		logger.Warn("benchmark timed out", zap.Int("finished", res.Runs), zap.Int("requested", cfg.Bench.Iterations))
	}

	per := func(d time.Duration) time.Duration { return d / time.Duration(res.Runs) }
	fmt.Printf("Shape:      %s (%d vertices, %d triangles)\n", name, len(m.Points), len(meshgen.Triangulate(m).Indices)/3)
	fmt.Printf("Iterations: %d\n", res.Runs)
	fmt.Printf("Raycast:    %v per %d rays (%d hits)\n", per(res.Raycast), benchRays, res.Hits/res.Runs)
	fmt.Printf("Smooth:     %v\n", per(res.Smooth))
	fmt.Printf("Tangents:   %v\n", per(res.Tangents))
	fmt.Printf("Skin:       %v\n", per(res.Skin))
	return nil
}

// bench runs every phase cfg.Iterations times on tri, stopping early when ctx
// is done.
func bench(ctx context.Context, e *editor.Editor, tri *meshgen.Mesh, cfg config.BenchConfig) (benchResult, error) {
	var res benchResult

	normals := append([]math.Vec3(nil), tri.Normals...)
	model := editor.NewModel(tri.Points, normals, tri.Indices)
	rays := spiralRays(tri.Points, benchRays)

	bindings := make([]int, len(tri.Points))
	ones := make([]float32, len(tri.Points))
	for i := range ones {
		ones[i] = 1
	}
	weights, err := skin.GenerateWeights4(bindings, ones, 1)
	if err != nil {
		return res, err
	}
	sk := &skin.Skin[skin.Weights4]{
		Weights:   weights,
		Bones:     []math.Mat4{math.RotateAxis(math.Vec3{Y: 1}, math32.Pi/4)},
		BindPoses: []math.Mat4{math.Identity()},
	}
	out := skin.Streams{
		Points:   make([]math.Vec3, len(tri.Points)),
		Normals:  make([]math.Vec3, len(tri.Points)),
		Tangents: make([]math.Vec4, len(tri.Points)),
	}

	for range cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := time.Now()
		for _, r := range rays {
			if _, ok := e.Raycast(model, r); ok {
				res.Hits++
			}
		}
		res.Raycast += time.Since(start)

		start = time.Now()
		e.Smooth(model, cfg.SmoothRadius, 0.5, false)
		res.Smooth += time.Since(start)

		start = time.Now()
		tangents := editor.GenerateTangents(tri.Points, model.Normals, tri.UV, tri.Indices)
		res.Tangents += time.Since(start)

		start = time.Now()
		in := skin.Streams{Points: tri.Points, Normals: model.Normals, Tangents: tangents}
		if err := sk.Apply(ctx, in, out); err != nil {
			return res, err
		}
		res.Skin += time.Since(start)

		res.Runs++
	}
	return res, nil
}

// spiralRays returns n rays aimed at the centre of points from a golden
// spiral of directions around it.
func spiralRays(points []math.Vec3, n int) []raycast.Ray {
	box := raycast.Bounds(points)
	center := box.Min.Add(box.Max).Scale(0.5)
	reach := box.Max.Sub(box.Min).Length() + 1

	golden := math32.Pi * (3 - math32.Sqrt(5))
	rays := make([]raycast.Ray, n)
	for i := range rays {
		y := 1 - 2*(float32(i)+0.5)/float32(n)
		rad := math32.Sqrt(1 - y*y)
		phi := golden * float32(i)
		dir := math.Vec3{X: math32.Cos(phi) * rad, Y: y, Z: math32.Sin(phi) * rad}
		rays[i] = raycast.NewRay(center.Add(dir.Scale(reach)), dir.Neg())
	}
	return rays
}
