package editor

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/normalpainter/pkg/math"
)

// Assign blends selected normals toward the world-space direction value by
// their selection strength.
func (e *Editor) Assign(m *Model, value math.Vec3) int {
	if !m.editable() {
		return 0
	}
	value = m.trans().Inverse().TransformDirection(value)
	n := 0
	for vi, s := range m.Selection {
		if s == 0 {
			continue
		}
		m.Normals[vi] = m.Normals[vi].Lerp(value, s).Normalize()
		n++
	}
	return n
}

// Move offsets selected normals by the world-space vector value scaled by
// selection strength.
func (e *Editor) Move(m *Model, value math.Vec3) int {
	if !m.editable() {
		return 0
	}
	value = m.trans().Inverse().TransformDirection(value)
	n := 0
	for vi, s := range m.Selection {
		if s == 0 {
			continue
		}
		m.Normals[vi] = m.Normals[vi].Add(value.Scale(s)).Normalize()
		n++
	}
	return n
}

// rotationAngle returns the angle of q, and false for a rotation too small or
// malformed to apply.
func rotationAngle(q math.Quat) (float32, bool) {
	_, angle := q.AxisAngle()
	if math32.IsNaN(angle) || math32.Abs(angle) < 1e-4 {
		return 0, false
	}
	return angle, true
}

// Rotate rotates selected normals by value, expressed in the frame of
// pivotRot in world space, blended by selection strength.
func (e *Editor) Rotate(m *Model, value, pivotRot math.Quat) int {
	if !m.editable() {
		return 0
	}
	if _, ok := rotationAngle(value); !ok {
		return 0
	}
	t := m.trans()
	rot := pivotRot.Mul(value).Mul(pivotRot.Inverse()).ToMat4()
	toLocal := t.Inverse().Mul(rot).Mul(t)

	n := 0
	for vi, s := range m.Selection {
		if s == 0 {
			continue
		}
		nv := m.Normals[vi]
		r := toLocal.TransformDirection(nv).Normalize()
		m.Normals[vi] = nv.Lerp(r, s).Normalize()
		n++
	}
	return n
}

// furthestSelected returns the world distance from pos to the selected
// vertex furthest from it.
func furthestSelected(m *Model, pos math.Vec3) (float32, bool) {
	t := m.trans()
	lpos := t.Inverse().TransformPoint(pos)
	best, found := float32(0), -1
	for vi, s := range m.Selection {
		if s <= 0 {
			continue
		}
		if dsq := m.Points[vi].Sub(lpos).LengthSq(); dsq > best {
			best, found = dsq, vi
		}
	}
	if found < 0 {
		return 0, false
	}
	return t.TransformPoint(m.Points[found]).Distance(pos), true
}

// pivotSpaces returns the matrices from model space to pivot space and from
// pivot space back to model space.
func pivotSpaces(m *Model, pivotPos math.Vec3, pivotRot math.Quat) (toPivot, toLocal math.Mat4) {
	t := m.trans()
	pivot := math.TranslateVec(pivotPos).Mul(pivotRot.ToMat4())
	return pivot.Inverse().Mul(t), t.Inverse().Mul(pivot)
}

// RotatePivot bends selected normals toward where their vertices would move
// if rotated by value about the pivot. The further a vertex is from the pivot
// relative to the furthest selected vertex, the stronger the bend.
func (e *Editor) RotatePivot(m *Model, value math.Quat, pivotPos math.Vec3, pivotRot math.Quat) int {
	if !m.editable() {
		return 0
	}
	angle, ok := rotationAngle(value)
	if !ok {
		return 0
	}
	furthest, ok := furthestSelected(m, pivotPos)
	if !ok || furthest == 0 {
		return 0
	}
	toPivot, toLocal := pivotSpaces(m, pivotPos, pivotRot)

	n := 0
	for vi, s := range m.Selection {
		if s == 0 {
			continue
		}
		vpos := toPivot.TransformPoint(m.Points[vi])
		d := vpos.Length()
		v := vpos.Sub(value.Inverse().Rotate(vpos))
		if v.Length() < 1e-4 {
			continue
		}
		v = toLocal.TransformDirection(v).Normalize()
		m.Normals[vi] = m.Normals[vi].Add(v.Scale(d / furthest * angle * s)).Normalize()
		n++
	}
	return n
}

// Scale pushes selected normals along the pivot-space direction of their
// vertex, scaled per axis by value and by relative distance from the pivot.
func (e *Editor) Scale(m *Model, value, pivotPos math.Vec3, pivotRot math.Quat) int {
	if !m.editable() {
		return 0
	}
	furthest, ok := furthestSelected(m, pivotPos)
	if !ok || furthest == 0 {
		return 0
	}
	toPivot, toLocal := pivotSpaces(m, pivotPos, pivotRot)

	n := 0
	for vi, s := range m.Selection {
		if s == 0 {
			continue
		}
		vpos := toPivot.TransformPoint(m.Points[vi])
		d := vpos.Length()
		if d == 0 {
			continue
		}
		v := toLocal.TransformDirection(vpos.Scale(1 / d).Mul(value))
		m.Normals[vi] = m.Normals[vi].Add(v.Scale(d / furthest * s)).Normalize()
		n++
	}
	return n
}

// Reset restores normals from base. With mask set, each normal is blended
// toward base by its selection strength.
func (e *Editor) Reset(m *Model, base []math.Vec3, mask bool) int {
	if !m.editable() || len(base) != len(m.Points) {
		e.log.Warn("reset: base normals do not match model",
			zap.Int("base", len(base)), zap.Int("vertices", len(m.Points)))
		return 0
	}
	if !mask {
		copy(m.Normals, base)
		return len(base)
	}
	n := 0
	for vi, s := range m.Selection {
		if s == 0 {
			continue
		}
		m.Normals[vi] = m.Normals[vi].Lerp(base[vi], s).Normalize()
		n++
	}
	return n
}
