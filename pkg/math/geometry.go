package math

import "github.com/chewxy/math32"

// Angle conversion factors.
const (
	Deg2Rad = math32.Pi / 180
	Rad2Deg = 180 / math32.Pi
)

// Clamp01 clamps v to [0, 1].
func Clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// Clamp11 clamps v to [-1, 1].
func Clamp11(v float32) float32 {
	return math32.Max(-1, math32.Min(1, v))
}

// AngleBetween returns the angle in radians between two unit vectors.
func AngleBetween(a, b Vec3) float32 {
	return math32.Acos(Clamp11(a.Dot(b)))
}

// AngleAt returns the angle at center of the corner formed by p1 and p2.
// A degenerate corner (coincident points) yields 0.
func AngleAt(p1, p2, center Vec3) float32 {
	a := p1.Sub(center).Normalize()
	b := p2.Sub(center).Normalize()
	if a == (Vec3{}) || b == (Vec3{}) {
		return 0
	}
	return AngleBetween(a, b)
}

// PlaneDistance returns the signed distance of p from the plane through the
// origin with normal n.
func PlaneDistance(p, n Vec3) float32 {
	return p.Dot(n)
}

// PlaneMirror reflects p across the plane through the origin with normal n.
func PlaneMirror(p, n Vec3) Vec3 {
	return p.Sub(n.Scale(PlaneDistance(p, n) * 2))
}

// TriangleInterpolate blends x1..x3 at pos by barycentric area weights.
// pos must lie on the triangle; a zero-area triangle returns the zero vector.
func TriangleInterpolate(pos, p1, p2, p3, x1, x2, x3 Vec3) Vec3 {
	area := p1.Sub(p2).Cross(p1.Sub(p3)).Length()
	if area == 0 {
		return Vec3{}
	}
	f1 := p1.Sub(pos)
	f2 := p2.Sub(pos)
	f3 := p3.Sub(pos)
	a1 := f2.Cross(f3).Length() / area
	a2 := f3.Cross(f1).Length() / area
	a3 := f1.Cross(f2).Length() / area
	return x1.Scale(a1).Add(x2.Scale(a2)).Add(x3.Scale(a3))
}

// Tolerances of RayTriangle.
const (
	rayDetEpsilon  = 1e-10
	rayBaryEpsilon = 1e-4
)

// RayTriangle intersects a ray with triangle (p1, p2, p3) using the
// edge/determinant formulation. Barycentric bounds are widened by a small
// epsilon so rays through shared edges hit at least one triangle.
func RayTriangle(pos, dir, p1, p2, p3 Vec3) (distance float32, ok bool) {
	e1 := p2.Sub(p1)
	e2 := p3.Sub(p1)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < rayDetEpsilon {
		return 0, false
	}
	invDet := 1 / det
	t := pos.Sub(p1)
	u := t.Dot(p) * invDet
	if u < -rayBaryEpsilon || u > 1+rayBaryEpsilon {
		return 0, false
	}
	q := t.Cross(e1)
	v := dir.Dot(q) * invDet
	if v < -rayBaryEpsilon || u+v > 1+rayBaryEpsilon {
		return 0, false
	}
	distance = e2.Dot(q) * invDet
	return distance, distance >= 0
}

// PolyInside tests pos against a closed polygon with the even-odd rule.
// lo and hi are the polygon bounds and reject points early.
func PolyInside(poly []Vec2, lo, hi, pos Vec2) bool {
	if len(poly) < 3 {
		return false
	}
	if pos.X < lo.X || pos.X > hi.X || pos.Y < lo.Y || pos.Y > hi.Y {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > pos.Y) != (b.Y > pos.Y) {
			x := (b.X-a.X)*(pos.Y-a.Y)/(b.Y-a.Y) + a.X
			if pos.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
