package editor

import (
	"sync/atomic"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/normalpainter/internal/parallel"
	"github.com/Faultbox/normalpainter/internal/spatial"
	"github.com/Faultbox/normalpainter/pkg/math"
	"github.com/Faultbox/normalpainter/pkg/raycast"
	"github.com/Faultbox/normalpainter/pkg/topology"
)

// canEdit reports whether m has normals to edit, and a selection when mask
// is set.
func (m *Model) canEdit(mask bool) bool {
	if len(m.Points) == 0 || len(m.Normals) != len(m.Points) {
		return false
	}
	return !mask || len(m.Selection) == len(m.Points)
}

// influence returns the selection strength of v, or 1 without a selection.
func (m *Model) influence(v int) float32 {
	if len(m.Selection) == len(m.Points) {
		return m.Selection[v]
	}
	return 1
}

// Smooth blends each normal toward the selection-weighted average of the
// normals within radius in world space. Every vertex reads the normals as
// they were before the call.
func (e *Editor) Smooth(m *Model, radius, strength float32, mask bool) int {
	if !m.canEdit(mask) || radius < 0 {
		return 0
	}
	wp := m.worldPoints()
	ix := spatial.New(wp)
	src := make([]math.Vec3, len(m.Normals))
	copy(src, m.Normals)

	var n atomic.Int32
	parallel.For(len(wp), e.opts.Workers, func(vi int) {
		s := m.weight(vi, mask)
		if s == 0 {
			return
		}
		var avg math.Vec3
		for _, i := range ix.Within(wp[vi], radius) {
			avg = avg.Add(src[i].Scale(m.influence(i)))
		}
		m.Normals[vi] = src[vi].Add(avg.Normalize().Scale(strength * s)).Normalize()
		n.Add(1)
	})
	e.log.Debug("smooth", zap.Float32("radius", radius), zap.Int32("count", n.Load()))
	return int(n.Load())
}

// coincidentDistance is the distance under which Weld treats two vertices
// of one mesh as sharing a position.
const coincidentDistance = 1e-4

// Weld unifies the normals of coincident vertices whose normals differ by at
// most angleDeg degrees. With smoothing the group takes its averaged normal,
// otherwise the normal of its lowest vertex. It returns the number of groups
// welded.
func (e *Editor) Weld(m *Model, smoothing bool, angleDeg float32, mask bool) int {
	if !m.canEdit(mask) {
		return 0
	}
	ix := spatial.New(m.Points)
	checked := make([]bool, len(m.Points))
	var shared []int
	groups := 0
	for vi, p := range m.Points {
		if checked[vi] || m.weight(vi, mask) == 0 {
			continue
		}
		base := m.Normals[vi]
		n := base
		for _, i := range ix.Within(p, coincidentDistance) {
			if i == vi || checked[i] {
				continue
			}
			if math.AngleBetween(base.Normalize(), m.Normals[i].Normalize())*math.Rad2Deg > angleDeg {
				continue
			}
			if smoothing {
				n = n.Add(m.Normals[i])
			}
			shared = append(shared, i)
			checked[i] = true
		}
		if len(shared) == 0 {
			continue
		}
		checked[vi] = true
		n = n.Normalize()
		m.Normals[vi] = n
		for _, si := range shared {
			m.Normals[si] = n
		}
		shared = shared[:0]
		groups++
	}
	e.log.Debug("weld", zap.Bool("smoothing", smoothing), zap.Int("groups", groups))
	return groups
}

// WeldMode selects how Weld2 merges normals across meshes.
type WeldMode int

// Weld2 modes.
const (
	// WeldCopyToTargets writes the model's normals onto matching target
	// vertices.
	WeldCopyToTargets WeldMode = iota
	// WeldCopyFromTargets writes target normals onto the model.
	WeldCopyFromTargets
	// WeldSmooth writes the sum of both sides, normalized, to both.
	WeldSmooth
)

func (w WeldMode) String() string {
	switch w {
	case WeldCopyToTargets:
		return "copy-to-targets"
	case WeldCopyFromTargets:
		return "copy-from-targets"
	case WeldSmooth:
		return "smooth"
	default:
		return "unknown"
	}
}

// worldFrame is a model's vertices and normals in world space.
type worldFrame struct {
	points  []math.Vec3
	normals []math.Vec3
	inverse math.Mat4
}

func frameOf(m *Model) worldFrame {
	t := m.trans()
	f := worldFrame{
		points:  make([]math.Vec3, len(m.Points)),
		normals: make([]math.Vec3, len(m.Points)),
		inverse: t.Inverse(),
	}
	for i, p := range m.Points {
		f.points[i] = t.TransformPoint(p)
		f.normals[i] = t.TransformDirection(m.Normals[i])
	}
	return f
}

// weldPair relates a model vertex to a target vertex.
type weldPair struct{ vertex, target int }

// Weld2 merges normals of vertices of m that coincide in world space with
// vertices of the targets, within angleDeg degrees. It returns the number of
// related vertex pairs.
func (e *Editor) Weld2(m *Model, targets []*Model, mode WeldMode, angleDeg float32, mask bool) int {
	if !m.canEdit(mask) {
		return 0
	}
	own := frameOf(m)
	radius := math32.Sqrt(e.opts.WeldEpsilon)

	frames := make([]worldFrame, len(targets))
	pairs := make([][]weldPair, len(targets))
	total := 0
	for ti, tm := range targets {
		if tm == nil || !tm.canEdit(false) {
			continue
		}
		tf := frameOf(tm)
		frames[ti] = tf
		ix := spatial.New(tf.points)
		matches := make([][]int, len(own.points))
		parallel.For(len(own.points), e.opts.Workers, func(vi int) {
			if m.weight(vi, mask) == 0 {
				return
			}
			p, n := own.points[vi], own.normals[vi].Normalize()
			for _, tvi := range ix.Within(p, radius) {
				if tf.points[tvi].Sub(p).LengthSq() >= e.opts.WeldEpsilon {
					continue
				}
				if math.AngleBetween(n, tf.normals[tvi].Normalize())*math.Rad2Deg <= angleDeg {
					matches[vi] = append(matches[vi], tvi)
				}
			}
		})
		for vi, tvs := range matches {
			for _, tvi := range tvs {
				pairs[ti] = append(pairs[ti], weldPair{vi, tvi})
			}
		}
		total += len(pairs[ti])
	}
	if total == 0 {
		return 0
	}

	switch mode {
	case WeldCopyToTargets:
		for ti, ps := range pairs {
			for _, p := range ps {
				targets[ti].Normals[p.target] = frames[ti].inverse.TransformDirection(own.normals[p.vertex]).Normalize()
			}
		}
	case WeldCopyFromTargets:
		for ti, ps := range pairs {
			for _, p := range ps {
				m.Normals[p.vertex] = own.inverse.TransformDirection(frames[ti].normals[p.target]).Normalize()
			}
		}
	case WeldSmooth:
		sum := make([]math.Vec3, len(own.normals))
		copy(sum, own.normals)
		for ti, ps := range pairs {
			for _, p := range ps {
				sum[p.vertex] = sum[p.vertex].Add(frames[ti].normals[p.target])
			}
		}
		for ti, ps := range pairs {
			for _, p := range ps {
				n := sum[p.vertex].Normalize()
				m.Normals[p.vertex] = own.inverse.TransformDirection(n).Normalize()
				targets[ti].Normals[p.target] = frames[ti].inverse.TransformDirection(n).Normalize()
			}
		}
	default:
		e.log.Warn("weld2: unknown mode", zap.Stringer("mode", mode))
		return 0
	}
	e.log.Debug("weld2",
		zap.Stringer("mode", mode),
		zap.Int("targets", len(targets)),
		zap.Int("pairs", total))
	return total
}

// Project casts a ray from every vertex of m along rayDirs (model space)
// against target and blends the interpolated target normal into the hit
// vertices. It returns the number of vertices whose ray hit.
func (e *Editor) Project(m *Model, target *Model, rayDirs []math.Vec3, mask bool) int {
	if !m.canEdit(mask) || target == nil || len(rayDirs) != len(m.Points) {
		return 0
	}
	if len(target.Indices) < 3 || len(target.Normals) != len(target.Points) {
		return 0
	}
	if err := topology.Triangles(target.Indices).Validate(len(target.Points)); err != nil {
		e.log.Warn("invalid projection target", zap.Error(err))
		return 0
	}
	toLocal := m.trans().Inverse().Mul(target.trans())
	soa := raycast.NewSoA(target.Points, target.Indices, toLocal)

	var n atomic.Int32
	parallel.For(len(m.Points), e.opts.Workers, func(vi int) {
		r := raycast.Ray{Origin: m.Points[vi], Direction: rayDirs[vi]}
		hit, num := soa.Cast(r)
		if num == 0 {
			return
		}
		ti := hit.Triangle
		p1, p2, p3 := soa.Triangle(ti)
		i0, i1, i2 := target.Indices[ti*3], target.Indices[ti*3+1], target.Indices[ti*3+2]
		result := math.TriangleInterpolate(r.At(hit.Distance), p1, p2, p3,
			target.Normals[i0], target.Normals[i1], target.Normals[i2])
		result = toLocal.TransformDirection(result).Normalize()
		m.Normals[vi] = m.Normals[vi].Lerp(result, m.weight(vi, mask)).Normalize()
		n.Add(1)
	})
	e.log.Debug("project", zap.Int32("hits", n.Load()))
	return int(n.Load())
}
