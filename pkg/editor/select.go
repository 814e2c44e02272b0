package editor

import (
	gomath "math"
	"sync/atomic"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/normalpainter/internal/parallel"
	"github.com/Faultbox/normalpainter/pkg/math"
	"github.com/Faultbox/normalpainter/pkg/raycast"
	"github.com/Faultbox/normalpainter/pkg/topology"
)

// View is the camera state of a screen-space selection. MVP maps model
// space to clip space; Camera is the eye position in world space.
type View struct {
	MVP           math.Mat4
	Camera        math.Vec3
	FrontfaceOnly bool
}

// Pick is the outcome of SelectSingle.
type Pick struct {
	Vertex     int // -1 when nothing was picked
	Candidates int
	Truncated  bool
}

// Traversal configures the topological selection walks.
type Traversal struct {
	Strength float32
	Clear    bool // zero the selection before walking
	Mask     bool // seed from selected vertices instead of all vertices
}

// Summary describes the current selection in world space.
type Summary struct {
	Count    int
	Position math.Vec3
	Normal   math.Vec3
	Rotation math.Quat
}

func addSelection(sel []float32, v int, strength float32) {
	sel[v] = math.Clamp01(sel[v] + strength)
}

// screenPos projects p and reports whether it lies in front of the camera.
func screenPos(mvp math.Mat4, p math.Vec3) (math.Vec2, bool) {
	vp := mvp.Project(p)
	return math.Vec2{X: vp[0] / vp[3], Y: vp[1] / vp[3]}, vp[2] > 0
}

func inRect(sp, lo, hi math.Vec2) bool {
	return sp.X >= lo.X && sp.X <= hi.X && sp.Y >= lo.Y && sp.Y <= hi.Y
}

// visible applies the front-face filter of v to vertex vi.
func (e *Editor) visible(m *Model, v View, localCam math.Vec3, vi int) bool {
	if !v.FrontfaceOnly {
		return true
	}
	return raycast.FrontFacing(m.Points, m.Indices, localCam, m.Points[vi], e.opts.FrontfaceTolerance)
}

// frontfaceUsable reports whether the front-face filter of v can run on m.
func (e *Editor) frontfaceUsable(m *Model, v View) bool {
	if !v.FrontfaceOnly {
		return true
	}
	_, ok := e.validTopology(m)
	return ok
}

// SelectRect adds strength to every vertex projecting into the screen rect
// [lo, hi] and returns how many were touched.
func (e *Editor) SelectRect(m *Model, v View, lo, hi math.Vec2, strength float32) int {
	if !m.hasSelection() || !e.frontfaceUsable(m, v) {
		return 0
	}
	lcam := m.trans().Inverse().TransformPoint(v.Camera)
	var n atomic.Int32
	parallel.For(len(m.Points), e.opts.Workers, func(vi int) {
		sp, front := screenPos(v.MVP, m.Points[vi])
		if !front || !inRect(sp, lo, hi) || !e.visible(m, v, lcam, vi) {
			return
		}
		addSelection(m.Selection, vi, strength)
		n.Add(1)
	})
	e.log.Debug("select rect", zap.Int32("count", n.Load()))
	return int(n.Load())
}

// SelectLasso adds strength to every vertex projecting inside the closed
// lasso polygon. Fewer than three points select nothing.
func (e *Editor) SelectLasso(m *Model, v View, lasso []math.Vec2, strength float32) int {
	if !m.hasSelection() || len(lasso) < 3 || !e.frontfaceUsable(m, v) {
		return 0
	}
	lcam := m.trans().Inverse().TransformPoint(v.Camera)
	lo, hi := math.MinMax2(lasso)
	var n atomic.Int32
	parallel.For(len(m.Points), e.opts.Workers, func(vi int) {
		sp, _ := screenPos(v.MVP, m.Points[vi])
		if !math.PolyInside(lasso, lo, hi, sp) || !e.visible(m, v, lcam, vi) {
			return
		}
		addSelection(m.Selection, vi, strength)
		n.Add(1)
	})
	e.log.Debug("select lasso", zap.Int32("count", n.Load()))
	return int(n.Load())
}

// SelectSingle picks the vertex nearest the centre of the screen rect. Among
// candidates at the same screen distance the one facing the camera most is
// chosen. At most PickCandidateCap candidates are considered, in vertex
// order; Truncated reports when more were inside.
func (e *Editor) SelectSingle(m *Model, v View, lo, hi math.Vec2, strength float32) Pick {
	pick := Pick{Vertex: -1}
	if !m.editable() || !e.frontfaceUsable(m, v) {
		return pick
	}
	lcam := m.trans().Inverse().TransformPoint(v.Camera)
	center := lo.Add(hi).Scale(0.5)

	dist := make([]float32, len(m.Points))
	parallel.For(len(m.Points), e.opts.Workers, func(vi int) {
		dist[vi] = -1
		sp, front := screenPos(v.MVP, m.Points[vi])
		if front && inRect(sp, lo, hi) && e.visible(m, v, lcam, vi) {
			dist[vi] = sp.Distance(center)
		}
	})

	limit := e.opts.PickCandidateCap
	nearestDist := float32(gomath.MaxFloat32)
	nearestFacing := float32(1)
	for vi, d := range dist {
		if d < 0 {
			continue
		}
		pick.Candidates++
		if limit > 0 && pick.Candidates > limit {
			pick.Truncated = true
			continue
		}
		facing := m.Normals[vi].Dot(m.Points[vi].Sub(lcam).Normalize())
		switch {
		case math32.Abs(d-nearestDist) < 1e-4:
			if facing < nearestFacing {
				pick.Vertex, nearestDist, nearestFacing = vi, d, facing
			}
		case d < nearestDist:
			pick.Vertex, nearestDist, nearestFacing = vi, d, facing
		}
	}
	if pick.Truncated {
		e.log.Debug("single pick truncated",
			zap.Int("candidates", pick.Candidates), zap.Int("cap", limit))
	}
	if pick.Vertex >= 0 {
		addSelection(m.Selection, pick.Vertex, strength)
	}
	return pick
}

// Raycast casts a world-space ray against m and returns the nearest triangle
// with its world-space distance.
func (e *Editor) Raycast(m *Model, r raycast.Ray) (raycast.Hit, bool) {
	if len(m.Points) == 0 || len(m.Indices) < 3 {
		return raycast.Miss, false
	}
	if _, ok := e.validTopology(m); !ok {
		return raycast.Miss, false
	}
	t := m.trans()
	lr := r.Transform(t.Inverse())
	hit, n := raycast.Indexed(lr, m.Points, m.Indices)
	if n == 0 {
		return raycast.Miss, false
	}
	hit.Distance = t.TransformPoint(lr.At(hit.Distance)).Distance(r.Origin)
	return hit, true
}

// PickNormal interpolates the normals of triangle ti at world position pos
// and returns the world-space result.
func (e *Editor) PickNormal(m *Model, pos math.Vec3, ti int) math.Vec3 {
	if ti < 0 || ti*3+2 >= len(m.Indices) || len(m.Normals) != len(m.Points) {
		return math.Vec3{}
	}
	if _, ok := e.validTopology(m); !ok {
		return math.Vec3{}
	}
	t := m.trans()
	i0, i1, i2 := m.Indices[ti*3], m.Indices[ti*3+1], m.Indices[ti*3+2]
	lpos := t.Inverse().TransformPoint(pos)
	r := math.TriangleInterpolate(lpos,
		m.Points[i0], m.Points[i1], m.Points[i2],
		m.Normals[i0], m.Normals[i1], m.Normals[i2])
	return t.TransformDirection(r).Normalize()
}

// SelectTriangle adds strength to the three vertices of the triangle hit by
// r.
func (e *Editor) SelectTriangle(m *Model, r raycast.Ray, strength float32) bool {
	if !m.hasSelection() {
		return false
	}
	hit, ok := e.Raycast(m, r)
	if !ok {
		return false
	}
	for c := 0; c < 3; c++ {
		addSelection(m.Selection, m.Indices[hit.Triangle*3+c], strength)
	}
	return true
}

// selectInside calls fn for every vertex within radius of the world-space
// position pos.
func selectInside(m *Model, pos math.Vec3, radius float32, fn func(vi int, d float32, p math.Vec3)) int {
	t := m.trans()
	rsq := radius * radius
	n := 0
	for vi, lp := range m.Points {
		p := t.TransformPoint(lp)
		if dsq := p.Sub(pos).LengthSq(); dsq <= rsq {
			fn(vi, math32.Sqrt(dsq), p)
			n++
		}
	}
	return n
}

// SelectBrush adds falloff-weighted strength to the vertices inside the
// brush.
func (e *Editor) SelectBrush(m *Model, b Brush) int {
	if !m.hasSelection() || b.Radius <= 0 {
		return 0
	}
	strength := b.strength()
	return selectInside(m, b.Position, b.Radius, func(vi int, d float32, _ math.Vec3) {
		addSelection(m.Selection, vi, b.Falloff.Sample(d, b.Radius)*strength)
	})
}

func (m *Model) seeds(mask bool) []int {
	seeds := make([]int, 0, len(m.Points))
	for vi := range m.Points {
		if !mask || m.Selection[vi] > 0 {
			seeds = append(seeds, vi)
		}
	}
	return seeds
}

// SelectEdge selects the open-boundary loops reachable from the seeds.
func (e *Editor) SelectEdge(m *Model, t Traversal) int {
	if !m.hasSelection() {
		return 0
	}
	topo, ok := e.validTopology(m)
	if !ok {
		return 0
	}
	seeds := m.seeds(t.Mask)
	if t.Clear {
		clear(m.Selection)
	}
	w := topology.NewWalker(topo.plain)
	n := 0
	for _, s := range seeds {
		w.Edge(s, func(v int) {
			addSelection(m.Selection, v, t.Strength)
			n++
		})
	}
	e.log.Debug("select edge", zap.Int("seeds", len(seeds)), zap.Int("count", n))
	return n
}

// SelectHole is SelectEdge over welded topology, so only real holes are
// followed across UV seams. Every vertex sharing a position with a hole
// vertex is selected.
func (e *Editor) SelectHole(m *Model, t Traversal) int {
	if !m.hasSelection() {
		return 0
	}
	if _, ok := e.validTopology(m); !ok {
		return 0
	}
	seeds := m.seeds(t.Mask)
	if t.Clear {
		clear(m.Selection)
	}
	topo := e.weldedTopology(m)
	hole := make([]bool, len(m.Points))
	w := topology.NewWalker(topo.welded)
	for _, s := range seeds {
		w.Edge(topo.weld[s], func(v int) { hole[v] = true })
	}
	n := 0
	for vi, rep := range topo.weld {
		if hole[rep] {
			addSelection(m.Selection, vi, t.Strength)
			n++
		}
	}
	e.log.Debug("select hole", zap.Int("seeds", len(seeds)), zap.Int("count", n))
	return n
}

// SelectConnected grows the current selection to whole mesh islands. With
// nothing selected every vertex is selected.
func (e *Editor) SelectConnected(m *Model, strength float32, clearFirst bool) int {
	if !m.hasSelection() {
		return 0
	}
	topo, ok := e.validTopology(m)
	if !ok {
		return 0
	}
	seeds := m.seeds(true)
	if len(seeds) == 0 {
		return e.SelectAll(m)
	}
	if clearFirst {
		clear(m.Selection)
	}
	w := topology.NewWalker(topo.plain)
	n := 0
	for _, s := range seeds {
		w.Connected(s, func(v int) {
			addSelection(m.Selection, v, strength)
			n++
		})
	}
	return n
}

// SelectAll sets every vertex fully selected.
func (e *Editor) SelectAll(m *Model) int {
	for i := range m.Selection {
		m.Selection[i] = 1
	}
	return len(m.Selection)
}

// InvertSelection replaces every strength s with 1-s.
func (e *Editor) InvertSelection(m *Model) int {
	for i, s := range m.Selection {
		m.Selection[i] = 1 - s
	}
	return len(m.Selection)
}

// ClearSelection zeroes the selection.
func (e *Editor) ClearSelection(m *Model) int {
	clear(m.Selection)
	return len(m.Selection)
}

// SelectionSummary returns the strength-weighted centroid and the summed
// normal of the selection, both in world space.
func (e *Editor) SelectionSummary(m *Model) Summary {
	sum := Summary{Rotation: math.QuatIdentity()}
	if !m.editable() {
		return sum
	}
	var total float32
	var pos, normal math.Vec3
	for vi, s := range m.Selection {
		if s <= 0 {
			continue
		}
		pos = pos.Add(m.Points[vi].Scale(s))
		normal = normal.Add(m.Normals[vi].Scale(s))
		total += s
		sum.Count++
	}
	if sum.Count == 0 {
		return sum
	}
	t := m.trans()
	sum.Position = t.TransformPoint(pos.Scale(1 / total))
	sum.Normal = t.TransformDirection(normal).Normalize()
	sum.Rotation = math.QuatLookRotation(sum.Normal, math.Vec3{Y: 1})
	return sum
}
