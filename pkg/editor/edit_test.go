package editor

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/normalpainter/pkg/math"
	"github.com/Faultbox/normalpainter/pkg/meshgen"
)

func fill(normals []math.Vec3, n math.Vec3) {
	for i := range normals {
		normals[i] = n
	}
}

func TestAssign(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	m.Selection[4] = 0.5
	assert.Equal(t, 1, e.Assign(m, math.Vec3{X: 1}))
	assertVec(t, math.Vec3{X: 1, Y: 1}.Normalize(), m.Normals[4])
	assertVec(t, math.Vec3{Y: 1}, m.Normals[0])
}

func TestAssignWorldSpace(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	m.Transform = math.RotateAxis(math.Vec3{Y: 1}, math32.Pi/2)
	m.Selection[0] = 1
	e.Assign(m, math.Vec3{X: 1})
	assertVec(t, math.Vec3{Z: 1}, m.Normals[0])
}

func TestMove(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	e.SelectAll(m)
	assert.Equal(t, 9, e.Move(m, math.Vec3{X: 1}))
	for _, n := range m.Normals {
		assertVec(t, math.Vec3{X: 1, Y: 1}.Normalize(), n)
	}
}

func TestRotate(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	fill(m.Normals, math.Vec3{X: 1})
	m.Selection[3] = 1

	q := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/2)
	assert.Equal(t, 1, e.Rotate(m, q, math.QuatIdentity()))
	assertVec(t, math.Vec3{Z: -1}, m.Normals[3])
	assertVec(t, math.Vec3{X: 1}, m.Normals[0])

	assert.Zero(t, e.Rotate(m, math.QuatIdentity(), math.QuatIdentity()), "zero rotation is skipped")
}

func TestRotateInPivotFrame(t *testing.T) {
	e := New(Options{})
	m := gridModel(1)
	fill(m.Normals, math.Vec3{Y: 1})
	e.SelectAll(m)

	// A rotation about the pivot's Z axis where the pivot's Z is world X.
	pivot := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/2)
	q := math.QuatFromAxisAngle(math.Vec3{Z: 1}, math32.Pi/2)
	e.Rotate(m, q, pivot)
	want := pivot.Rotate(q.Rotate(pivot.Inverse().Rotate(math.Vec3{Y: 1})))
	for _, n := range m.Normals {
		assertVec(t, want, n)
	}
	assert.InDelta(t, 0, want.Y, eps)
}

func TestRotatePivot(t *testing.T) {
	e := New(Options{})
	m := gridModel(4)
	e.SelectAll(m)
	center := math.Vec3{X: 2, Z: 2}

	q := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/6)
	assert.Equal(t, 24, e.RotatePivot(m, q, center, math.QuatIdentity()))
	assertVec(t, math.Vec3{Y: 1}, m.Normals[12])
	assert.Less(t, m.Normals[0].Y, float32(1))
	assertUnit(t, m.Normals)

	assert.Zero(t, e.RotatePivot(m, math.QuatIdentity(), center, math.QuatIdentity()))
	e.ClearSelection(m)
	assert.Zero(t, e.RotatePivot(m, q, center, math.QuatIdentity()), "no selection")
}

// assertBendsWithMotion checks that every selected normal leans toward the
// direction its vertex travels when rotated by value in the pivot frame.
// Grid normals start at +Y, so only rotations about world Y are meaningful.
func assertBendsWithMotion(t *testing.T, m *Model, value math.Quat, pivotPos math.Vec3, pivotRot math.Quat) {
	t.Helper()
	for vi, p := range m.Points {
		if m.Selection[vi] == 0 {
			continue
		}
		d := p.Sub(pivotPos)
		motion := pivotRot.Rotate(value.Rotate(pivotRot.Inverse().Rotate(d))).Sub(d)
		if motion.Length() < 1e-3 {
			continue
		}
		n := m.Normals[vi]
		assert.Greater(t, n.Dot(motion), float32(0), "vertex %d moves along %v, normal %v", vi, motion, n)
	}
}

func TestRotatePivotDirection(t *testing.T) {
	yaw := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/6)
	roll := math.QuatFromAxisAngle(math.Vec3{Z: 1}, math32.Pi/6)
	turn := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/4)
	// tilt maps pivot Z onto world -Y, so roll in that frame is a world yaw.
	tilt := math.QuatFromAxisAngle(math.Vec3{X: 1}, math32.Pi/2)
	center := math.Vec3{X: 2, Z: 2}

	tests := []struct {
		name     string
		cells    int
		selected []int
		value    math.Quat
		pivotPos math.Vec3
		pivotRot math.Quat
	}{
		{"single vertex about origin", 2, []int{2}, yaw, math.Vec3{}, math.QuatIdentity()},
		{"grid about centre", 4, nil, yaw, center, math.QuatIdentity()},
		{"negative angle", 4, nil, yaw.Inverse(), center, math.QuatIdentity()},
		{"turned pivot", 4, nil, yaw, center, turn},
		{"tilted pivot", 4, nil, roll, center, tilt},
		{"tilted pivot at corner", 4, nil, roll, math.Vec3{X: -1, Z: -1}, tilt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Options{})
			m := gridModel(tt.cells)
			if tt.selected == nil {
				e.SelectAll(m)
			}
			for _, vi := range tt.selected {
				m.Selection[vi] = 1
			}

			require.NotZero(t, e.RotatePivot(m, tt.value, tt.pivotPos, tt.pivotRot))
			assertBendsWithMotion(t, m, tt.value, tt.pivotPos, tt.pivotRot)
			assertUnit(t, m.Normals)
		})
	}

	t.Run("vertex (2,0,0) about Y", func(t *testing.T) {
		e := New(Options{})
		m := gridModel(2)
		m.Selection[2] = 1
		p := m.Points[2]
		require.Equal(t, 1, e.RotatePivot(m, yaw, math.Vec3{}, math.QuatIdentity()))
		assert.Greater(t, m.Normals[2].Dot(yaw.Rotate(p).Sub(p)), float32(0))
	})
}

func TestScale(t *testing.T) {
	e := New(Options{})
	m := gridModel(4)
	e.SelectAll(m)
	assert.Equal(t, 24, e.Scale(m, math.Vec3{X: 1, Z: 1}, math.Vec3{X: 2, Z: 2}, math.QuatIdentity()))

	// Vertex (4, 2) lies 2 units along +X of the pivot; the furthest vertex
	// is a corner at 2*sqrt(2).
	k := 2 / math32.Sqrt(8)
	assertVec(t, math.Vec3{X: k, Y: 1}.Normalize(), m.Normals[14])
	assertVec(t, math.Vec3{Y: 1}, m.Normals[12])
	assertUnit(t, m.Normals)
}

func TestReset(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	base := make([]math.Vec3, len(m.Points))
	fill(base, math.Vec3{Y: 1})
	fill(m.Normals, math.Vec3{X: 1})

	m.Selection[0] = 0.5
	assert.Equal(t, 1, e.Reset(m, base, true))
	assertVec(t, math.Vec3{X: 1, Y: 1}.Normalize(), m.Normals[0])
	assertVec(t, math.Vec3{X: 1}, m.Normals[1])

	assert.Equal(t, 9, e.Reset(m, base, false))
	assert.Equal(t, base, m.Normals)

	assert.Zero(t, e.Reset(m, base[:3], false))
}

func TestSmooth(t *testing.T) {
	e := New(Options{})
	m := gridModel(4)
	e.SelectAll(m)
	m.Normals[12] = math.Vec3{X: 1}

	assert.Equal(t, 25, e.Smooth(m, 1.01, 1, false))
	assertVec(t, math.Vec3{Y: 1}, m.Normals[0])
	assert.Positive(t, m.Normals[12].X)
	assert.Positive(t, m.Normals[12].Y)
	// Neighbours read the pre-smooth normal of vertex 12.
	assert.Positive(t, m.Normals[13].X)
	assertUnit(t, m.Normals)
}

func TestSmoothMasked(t *testing.T) {
	e := New(Options{})
	m := gridModel(4)
	m.Normals[12] = math.Vec3{X: 1}
	m.Selection[12] = 1
	m.Selection[13] = 1
	assert.Equal(t, 2, e.Smooth(m, 1.01, 1, true))
	assertVec(t, math.Vec3{Y: 1}, m.Normals[7])
}

func TestWeld(t *testing.T) {
	e := New(Options{})
	tests := []struct {
		name      string
		smoothing bool
		angle     float32
		groups    int
	}{
		{"smooth", true, 91, 8},
		{"copy", false, 91, 8},
		{"too sharp", true, 45, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := meshModel(meshgen.Cube(2, true))
			orig := append([]math.Vec3(nil), m.Normals...)
			require.Equal(t, tt.groups, e.Weld(m, tt.smoothing, tt.angle, false))
			for vi, p := range m.Points {
				switch {
				case tt.groups == 0:
					assert.Equal(t, orig[vi], m.Normals[vi])
				case tt.smoothing:
					assertVec(t, p.Normalize(), m.Normals[vi])
				default:
					assert.Equal(t, 1, axisCount(m.Normals[vi]), "vertex %d", vi)
				}
			}
		})
	}
}

func axisCount(n math.Vec3) int {
	c := 0
	for _, v := range n.Array() {
		if v != 0 {
			c++
		}
	}
	return c
}

func TestWeldMasked(t *testing.T) {
	e := New(Options{})
	m := meshModel(meshgen.Cube(2, true))
	m.Selection[0] = 1
	assert.Equal(t, 1, e.Weld(m, true, 91, true))
	assertVec(t, m.Points[0].Normalize(), m.Normals[0])
}

// seamPair returns two 2x2 grids whose shared edge coincides in world space:
// the second is translated by 2 along X.
func seamPair() (*Model, *Model) {
	a := gridModel(2)
	b := gridModel(2)
	b.Transform = math.Translate(2, 0, 0)
	fill(b.Normals, math.Vec3{X: 0.1, Y: 1}.Normalize())
	return a, b
}

func TestWeld2(t *testing.T) {
	e := New(Options{})
	tilted := math.Vec3{X: 0.1, Y: 1}.Normalize()
	up := math.Vec3{Y: 1}
	mid := up.Add(tilted).Normalize()

	tests := []struct {
		mode      WeldMode
		wantModel math.Vec3
		wantTgt   math.Vec3
	}{
		{WeldCopyToTargets, up, up},
		{WeldCopyFromTargets, tilted, tilted},
		{WeldSmooth, mid, mid},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			a, b := seamPair()
			require.Equal(t, 3, e.Weld2(a, []*Model{b}, tt.mode, 10, false))
			for _, vi := range []int{2, 5, 8} {
				assertVec(t, tt.wantModel, a.Normals[vi])
			}
			for _, vi := range []int{0, 3, 6} {
				assertVec(t, tt.wantTgt, b.Normals[vi])
			}
			assertVec(t, up, a.Normals[0])
			assertVec(t, tilted, b.Normals[2])
		})
	}
}

func TestWeld2NoMatch(t *testing.T) {
	e := New(Options{})
	a, b := seamPair()
	assert.Zero(t, e.Weld2(a, []*Model{b}, WeldSmooth, 1, false), "angle too tight")
	assert.Zero(t, e.Weld2(a, []*Model{b}, WeldMode(7), 10, false), "unknown mode")
	assert.Zero(t, e.Weld2(a, nil, WeldSmooth, 10, false))
}

func TestProject(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	target := gridModel(2)
	target.Transform = math.Translate(0, 1, 0)
	want := math.Vec3{X: 1, Y: 1}.Normalize()
	fill(target.Normals, want)

	dirs := make([]math.Vec3, len(m.Points))
	fill(dirs, math.Vec3{Y: 1})
	assert.Equal(t, 9, e.Project(m, target, dirs, false))
	for _, n := range m.Normals {
		assertVec(t, want, n)
	}

	// Masked with an empty selection hits but leaves normals alone.
	m = gridModel(2)
	assert.Equal(t, 9, e.Project(m, target, dirs, true))
	assertVec(t, math.Vec3{Y: 1}, m.Normals[4])

	fill(dirs, math.Vec3{Y: -1})
	assert.Zero(t, e.Project(m, target, dirs, false))
	assert.Zero(t, e.Project(m, target, dirs[:2], false))
}

func TestFalloff(t *testing.T) {
	assert.Equal(t, float32(1), Falloff(nil).Sample(0.5, 1))

	f := Falloff{0, 0.5, 1}
	assert.Equal(t, float32(1), f.Sample(0, 1))
	assert.Equal(t, float32(0.5), f.Sample(0.5, 1))
	assert.Equal(t, float32(0), f.Sample(1, 1))
	assert.Equal(t, float32(0), f.Sample(2, 1))

	assert.InDelta(t, 1, f.slope(0), eps)
	assert.InDelta(t, 1, f.slope(1), eps)
	assert.InDelta(t, 1, f.slope(2), eps)
	assert.Zero(t, Falloff{1}.slope(0))
}

func TestBrushReplace(t *testing.T) {
	e := New(Options{})
	m := gridModel(4)
	n := e.BrushReplace(m, Brush{Radius: 0.5, Strength: 1}, math.Vec3{X: 1})
	assert.Equal(t, 1, n)
	assertVec(t, math.Vec3{X: 1, Y: 1}.Normalize(), m.Normals[0])
	assertVec(t, math.Vec3{Y: 1}, m.Normals[1])

	// Pressure scales strength; masked with no selection changes nothing.
	m = gridModel(4)
	e.BrushReplace(m, Brush{Radius: 0.5, Strength: 1, Pressure: 0.5, Mask: true}, math.Vec3{X: 1})
	assertVec(t, math.Vec3{Y: 1}, m.Normals[0])

	assert.Zero(t, e.BrushReplace(m, Brush{}, math.Vec3{X: 1}))
}

func TestBrushPaint(t *testing.T) {
	e := New(Options{})
	m := gridModel(4)
	fill(m.Normals, math.Vec3{X: 1})
	n := e.BrushPaint(m, Brush{Position: math.Vec3{X: 2, Z: 2}, Radius: 0.5, Strength: 1}, math.Vec3{Y: 1})
	assert.Equal(t, 1, n)
	assertVec(t, math.Vec3{X: 1, Y: 1}.Normalize(), m.Normals[12])
}

func TestBrushPaintCurve(t *testing.T) {
	e := New(Options{})
	m := gridModel(4)
	b := Brush{Position: math.Vec3{X: 2, Z: 2}, Radius: 2.1, Strength: 0.5, Falloff: Falloff{0.5, 1}}
	assert.Equal(t, 13, e.BrushPaint(m, b, math.Vec3{Y: 1}))
	assertUnit(t, m.Normals)
	// A curve rising toward the centre bends rim normals outward.
	assert.Positive(t, m.Normals[14].X)
	assert.Negative(t, m.Normals[10].X)
}

func TestBrushLerp(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	base := make([]math.Vec3, len(m.Points))
	current := make([]math.Vec3, len(m.Points))
	fill(base, math.Vec3{Y: 1})
	fill(current, math.Vec3{X: 1})

	assert.Equal(t, 9, e.BrushLerp(m, Brush{Position: math.Vec3{X: 1, Z: 1}, Radius: 5, Strength: 1}, base, current))
	assert.Equal(t, base, m.Normals)

	// Negative strength extrapolates away from the flipped base.
	e.BrushLerp(m, Brush{Position: math.Vec3{X: 1, Z: 1}, Radius: 5, Strength: -1}, base, current)
	for _, n := range m.Normals {
		assertVec(t, math.Vec3{X: 2, Y: 1}.Normalize(), n)
	}
	assert.Zero(t, e.BrushLerp(m, Brush{Radius: 5, Strength: 1}, base[:1], current))
}

func TestBrushSmooth(t *testing.T) {
	e := New(Options{})
	m := gridModel(2)
	m.Normals[4] = math.Vec3{X: 1}
	assert.Equal(t, 5, e.BrushSmooth(m, Brush{Position: math.Vec3{X: 1, Z: 1}, Radius: 1.01, Strength: 1}))
	assert.Positive(t, m.Normals[4].Y)
	assert.Positive(t, m.Normals[1].X)
	assertUnit(t, m.Normals)
}

func TestMutationsRenormalize(t *testing.T) {
	e := New(Options{})
	pivot := math.Vec3{X: 0.5, Y: 0.2}
	rot := math.QuatFromAxisAngle(math.Vec3{X: 1, Y: 1}.Normalize(), 0.7)
	ops := []struct {
		name string
		run  func(m *Model) int
	}{
		{"assign", func(m *Model) int { return e.Assign(m, math.Vec3{X: 1, Z: 1}) }},
		{"move", func(m *Model) int { return e.Move(m, math.Vec3{X: 0.3, Y: -2}) }},
		{"rotate", func(m *Model) int { return e.Rotate(m, rot, math.QuatIdentity()) }},
		{"rotate pivot", func(m *Model) int { return e.RotatePivot(m, rot, pivot, rot) }},
		{"scale", func(m *Model) int { return e.Scale(m, math.Vec3{X: 1, Y: 2, Z: 3}, pivot, rot) }},
		{"smooth", func(m *Model) int { return e.Smooth(m, 0.6, 0.8, true) }},
		{"brush paint", func(m *Model) int {
			return e.BrushPaint(m, Brush{Position: math.Vec3{X: 2}, Radius: 1, Strength: 1, Falloff: Falloff{0, 1, 0.5}}, math.Vec3{Z: 1})
		}},
	}
	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			m := meshModel(meshgen.Torus(2, 0.5, 16, 12))
			m.Transform = math.Translate(0.5, 0, 0).Mul(math.RotateAxis(math.Vec3{Z: 1}, 0.3))
			for vi := range m.Selection {
				m.Selection[vi] = float32(vi%5) / 4
			}
			require.Positive(t, op.run(m))
			assertUnit(t, m.Normals)
		})
	}
}
