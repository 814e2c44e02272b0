package raycast

import "github.com/Faultbox/normalpainter/pkg/math"

// Hit is the nearest intersection of a cast.
type Hit struct {
	Triangle int
	Distance float32
}

// Miss is the Hit reported when nothing is struck.
var Miss = Hit{Triangle: -1}

type nearest struct {
	hit   Hit
	count int
}

func (n *nearest) add(ti int, d float32) {
	if n.count == 0 || d < n.hit.Distance {
		n.hit = Hit{Triangle: ti, Distance: d}
	}
	n.count++
}

func (n *nearest) result() (Hit, int) {
	if n.count == 0 {
		return Miss, 0
	}
	return n.hit, n.count
}

// Indexed casts r against triangles given as index triples into points. It
// returns the nearest hit and the number of triangles struck.
func Indexed(r Ray, points []math.Vec3, indices []int) (Hit, int) {
	var n nearest
	for ti := 0; ti+2 < len(indices); ti += 3 {
		d, ok := math.RayTriangle(r.Origin, r.Direction,
			points[indices[ti]], points[indices[ti+1]], points[indices[ti+2]])
		if ok {
			n.add(ti/3, d)
		}
	}
	return n.result()
}

// Flattened casts r against a triangle soup stored as consecutive point
// triples.
func Flattened(r Ray, points []math.Vec3) (Hit, int) {
	var n nearest
	for ti := 0; ti+2 < len(points); ti += 3 {
		d, ok := math.RayTriangle(r.Origin, r.Direction, points[ti], points[ti+1], points[ti+2])
		if ok {
			n.add(ti/3, d)
		}
	}
	return n.result()
}

// SoA stores a flattened triangle soup as nine coordinate streams.
type SoA struct {
	X1, Y1, Z1 []float32
	X2, Y2, Z2 []float32
	X3, Y3, Z3 []float32
	bounds     AABB
}

// NewSoA flattens the indexed triangles, transforming every corner by m.
func NewSoA(points []math.Vec3, indices []int, m math.Mat4) *SoA {
	n := len(indices) / 3
	s := &SoA{}
	streams := []*[]float32{&s.X1, &s.Y1, &s.Z1, &s.X2, &s.Y2, &s.Z2, &s.X3, &s.Y3, &s.Z3}
	for _, st := range streams {
		*st = make([]float32, n)
	}
	corners := make([]math.Vec3, 0, n*3)
	for ti := 0; ti < n; ti++ {
		for c := 0; c < 3; c++ {
			p := m.TransformPoint(points[indices[ti*3+c]])
			(*streams[c*3])[ti] = p.X
			(*streams[c*3+1])[ti] = p.Y
			(*streams[c*3+2])[ti] = p.Z
			corners = append(corners, p)
		}
	}
	s.bounds = Bounds(corners)
	return s
}

// Len returns the number of triangles.
func (s *SoA) Len() int { return len(s.X1) }

// Triangle returns the corners of triangle ti.
func (s *SoA) Triangle(ti int) (p1, p2, p3 math.Vec3) {
	return math.Vec3{X: s.X1[ti], Y: s.Y1[ti], Z: s.Z1[ti]},
		math.Vec3{X: s.X2[ti], Y: s.Y2[ti], Z: s.Z2[ti]},
		math.Vec3{X: s.X3[ti], Y: s.Y3[ti], Z: s.Z3[ti]}
}

// Bounds returns the box around all triangles.
func (s *SoA) Bounds() AABB { return s.bounds }

// Cast returns the nearest hit and the number of triangles struck.
func (s *SoA) Cast(r Ray) (Hit, int) {
	var n nearest
	if s.Len() == 0 {
		return n.result()
	}
	if _, ok := r.IntersectAABB(s.bounds.Expand(boundsMargin(s.bounds))); !ok {
		return n.result()
	}
	for ti := range s.X1 {
		p1, p2, p3 := s.Triangle(ti)
		if d, ok := math.RayTriangle(r.Origin, r.Direction, p1, p2, p3); ok {
			n.add(ti, d)
		}
	}
	return n.result()
}

// boundsMargin covers hits accepted by the widened barycentric test.
func boundsMargin(b AABB) float32 {
	return b.Max.Sub(b.Min).Length()*1e-3 + 1e-4
}

// FrontFacing reports whether vertex is the first surface point seen from
// eye, within tol.
func FrontFacing(points []math.Vec3, indices []int, eye, vertex math.Vec3, tol float32) bool {
	r := NewRay(eye, vertex.Sub(eye))
	hit, n := Indexed(r, points, indices)
	if n == 0 {
		return false
	}
	return vertex.Distance(r.At(hit.Distance)) < tol
}
