package editor

import (
	"go.uber.org/zap"

	"github.com/Faultbox/normalpainter/pkg/math"
)

// Falloff samples brush intensity from the rim (index 0) to the centre (last
// index). An empty falloff is a flat brush of intensity 1.
type Falloff []float32

// index maps a distance from the brush centre to a sample index.
func (f Falloff) index(d, radius float32) int {
	return int(math.Clamp01(1-d/radius) * float32(len(f)-1))
}

// Sample returns the intensity at distance d from the centre.
func (f Falloff) Sample(d, radius float32) float32 {
	if len(f) == 0 {
		return 1
	}
	return f[f.index(d, radius)]
}

// slope returns the derivative of the curve at sample i with respect to the
// normalized distance.
func (f Falloff) slope(i int) float32 {
	n := len(f)
	if n < 2 {
		return 0
	}
	step := 1 / float32(n-1)
	switch i {
	case 0:
		return (f[1] - f[0]) / step
	case n - 1:
		return (f[n-1] - f[n-2]) / step
	default:
		return (f[i+1] - f[i-1]) / (step * 2)
	}
}

// Brush is a world-space sphere of influence.
type Brush struct {
	Position math.Vec3
	Radius   float32
	Strength float32
	Falloff  Falloff
	// Pressure scales Strength, e.g. by pen pressure. 0 means no pressure
	// device and is read as 1.
	Pressure float32
	// Mask multiplies the effect by the selection.
	Mask bool
}

func (b Brush) strength() float32 {
	if b.Pressure == 0 {
		return b.Strength
	}
	return b.Strength * b.Pressure
}

func (b Brush) usable(m *Model) bool {
	return m.editable() && b.Radius > 0
}

// BrushReplace pushes normals inside the brush toward the local direction
// value.
func (e *Editor) BrushReplace(m *Model, b Brush, value math.Vec3) int {
	if !b.usable(m) {
		return 0
	}
	strength := b.strength()
	return selectInside(m, b.Position, b.Radius, func(vi int, d float32, _ math.Vec3) {
		s := b.Falloff.Sample(d, b.Radius) * strength * m.weight(vi, b.Mask)
		m.Normals[vi] = m.Normals[vi].Add(value.Scale(s)).Normalize()
	})
}

// BrushPaint tilts normals inside the brush toward base (a local direction),
// bending them outward where the falloff curve is steep so the brush shapes a
// bump.
func (e *Editor) BrushPaint(m *Model, b Brush, base math.Vec3) int {
	if !b.usable(m) {
		return 0
	}
	t := m.trans()
	it := t.Inverse()
	n := t.TransformDirection(base).Normalize()
	strength := b.strength()
	flat := len(b.Falloff) == 0

	return selectInside(m, b.Position, b.Radius, func(vi int, d float32, p math.Vec3) {
		sample, slope := float32(1), float32(0)
		if !flat {
			i := b.Falloff.index(d, b.Radius)
			sample, slope = b.Falloff[i], b.Falloff.slope(i)
		}
		s := math.Clamp11(sample * strength * 2)
		s *= m.weight(vi, b.Mask)

		// Direction from the brush centre to the vertex, in the base plane.
		p1 := b.Position.Sub(n.Scale(math.PlaneDistance(b.Position, n)))
		p2 := p.Sub(n.Scale(math.PlaneDistance(p, n)))
		tan := p2.Sub(p1).Normalize()
		if slope < 0 {
			tan, slope = tan.Neg(), -slope
		}
		if s < 0 {
			tan, s = tan.Neg(), -s
		}

		vn := m.Normals[vi]
		r := n.Lerp(tan, math.Clamp01(slope*0.5))
		r = it.TransformDirection(r).Normalize()
		r = vn.Lerp(r, s)
		m.Normals[vi] = vn.Add(r.Scale(s)).Normalize()
	})
}

// BrushLerp blends normals inside the brush from current toward base. A
// negative strength blends toward the flipped base.
func (e *Editor) BrushLerp(m *Model, b Brush, base, current []math.Vec3) int {
	if !b.usable(m) || len(base) != len(m.Points) || len(current) != len(m.Points) {
		return 0
	}
	strength := b.strength()
	sign := float32(1)
	if strength < 0 {
		sign = -1
	}
	return selectInside(m, b.Position, b.Radius, func(vi int, d float32, _ math.Vec3) {
		s := b.Falloff.Sample(d, b.Radius) * strength * m.weight(vi, b.Mask)
		m.Normals[vi] = current[vi].Lerp(base[vi].Scale(sign), s).Normalize()
	})
}

// BrushSmooth pulls normals inside the brush toward their average.
func (e *Editor) BrushSmooth(m *Model, b Brush) int {
	if !b.usable(m) {
		return 0
	}
	type inside struct {
		vi int
		d  float32
	}
	var in []inside
	selectInside(m, b.Position, b.Radius, func(vi int, d float32, _ math.Vec3) {
		in = append(in, inside{vi, d})
	})

	var avg math.Vec3
	for _, v := range in {
		avg = avg.Add(m.Normals[v.vi])
	}
	avg = avg.Normalize()

	strength := b.strength()
	for _, v := range in {
		s := b.Falloff.Sample(v.d, b.Radius) * strength * m.weight(v.vi, b.Mask)
		m.Normals[v.vi] = m.Normals[v.vi].Add(avg.Scale(s)).Normalize()
	}
	e.log.Debug("brush smooth", zap.Int("count", len(in)))
	return len(in)
}
