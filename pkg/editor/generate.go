package editor

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/normalpainter/pkg/math"
	"github.com/Faultbox/normalpainter/pkg/topology"
)

// GenerateNormals returns area-weighted vertex normals for the faces. Each
// face contributes the cross product of its first two edges to every one of
// its corners. Faces with fewer than three corners are skipped.
func GenerateNormals(points []math.Vec3, faces topology.Faces) []math.Vec3 {
	normals := make([]math.Vec3, len(points))
	for fi := range faces.Len() {
		count, off := faces.Count(fi), faces.Offset(fi)
		if count < 3 {
			continue
		}
		i0, i1, i2 := faces.Index(off), faces.Index(off+1), faces.Index(off+2)
		p0 := points[i0]
		n := points[i1].Sub(p0).Cross(points[i2].Sub(p0))
		for c := range count {
			vi := faces.Index(off + c)
			normals[vi] = normals[vi].Add(n)
		}
	}
	for i, n := range normals {
		normals[i] = n.Normalize()
	}
	return normals
}

// tangentEpsilon is the UV area under which a triangle contributes no
// tangent.
const tangentEpsilon = 1e-8

// triangleTangent returns the UV tangent and binormal of a triangle, scaled
// by its UV area, or false for a degenerate UV mapping.
func triangleTangent(p [3]math.Vec3, uv [3]math.Vec2) (tangent, binormal math.Vec3, ok bool) {
	e1, e2 := p[1].Sub(p[0]), p[2].Sub(p[0])
	s := math.Vec2{X: uv[1].X - uv[0].X, Y: uv[2].X - uv[0].X}
	t := math.Vec2{X: uv[1].Y - uv[0].Y, Y: uv[2].Y - uv[0].Y}
	div := s.X*t.Y - s.Y*t.X
	area := math32.Abs(div)
	if area < tangentEpsilon {
		return math.Vec3{}, math.Vec3{}, false
	}
	s, t = s.Scale(1/div), t.Scale(1/div)
	tangent = e1.Scale(t.Y).Sub(e2.Scale(t.X)).Normalize().Scale(area)
	binormal = e2.Scale(s.X).Sub(e1.Scale(s.Y)).Normalize().Scale(area)
	return tangent, binormal, true
}

// fallbackAxes returns the two world axes least aligned with n.
func fallbackAxes(n math.Vec3) (math.Vec3, math.Vec3) {
	x, y, z := math32.Abs(n.X), math32.Abs(n.Y), math32.Abs(n.Z)
	ax, ay, az := math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}
	switch {
	case x <= y && x <= z:
		if y <= z {
			return ax, ay
		}
		return ax, az
	case y <= x && y <= z:
		if x <= z {
			return ay, ax
		}
		return ay, az
	default:
		if x <= y {
			return az, ax
		}
		return az, ay
	}
}

// orthogonalize makes tangent perpendicular to normal and returns it with
// the handedness of the (normal, tangent, binormal) frame in W.
func orthogonalize(tangent, binormal, normal math.Vec3) math.Vec4 {
	const eps = 1e-6
	tangent = tangent.Sub(normal.Scale(normal.Dot(tangent)))
	magT := tangent.Length()
	tangent = tangent.Normalize()

	binormal = binormal.Sub(normal.Scale(normal.Dot(binormal))).Sub(tangent.Scale(tangent.Dot(binormal)))
	magB := binormal.Length()
	binormal = binormal.Normalize()

	if magT <= eps || magB <= eps {
		a1, a2 := fallbackAxes(normal)
		tangent = a1.Sub(normal.Scale(normal.Dot(a1))).Normalize()
		binormal = a2.Sub(normal.Scale(normal.Dot(a2))).Sub(tangent.Scale(tangent.Dot(a2))).Normalize()
	}

	w := float32(-1)
	if normal.Cross(tangent).Dot(binormal) > 0 {
		w = 1
	}
	return math.Vec4{tangent.X, tangent.Y, tangent.Z, w}
}

// GenerateTangents returns per-vertex tangents for an indexed triangle mesh.
// Triangle tangents are weighted by UV area and corner angle before being
// orthogonalized against the vertex normal.
func GenerateTangents(points, normals []math.Vec3, uv []math.Vec2, indices []int) []math.Vec4 {
	if len(normals) != len(points) || len(uv) != len(points) {
		return nil
	}
	tangents := make([]math.Vec3, len(points))
	binormals := make([]math.Vec3, len(points))
	for ti := 0; ti+2 < len(indices); ti += 3 {
		idx := [3]int{indices[ti], indices[ti+1], indices[ti+2]}
		p := [3]math.Vec3{points[idx[0]], points[idx[1]], points[idx[2]]}
		u := [3]math.Vec2{uv[idx[0]], uv[idx[1]], uv[idx[2]]}
		t, b, ok := triangleTangent(p, u)
		if !ok {
			continue
		}
		for c := range 3 {
			w := math.AngleAt(p[(c+1)%3], p[(c+2)%3], p[c])
			tangents[idx[c]] = tangents[idx[c]].Add(t.Scale(w))
			binormals[idx[c]] = binormals[idx[c]].Add(b.Scale(w))
		}
	}
	out := make([]math.Vec4, len(points))
	for vi := range out {
		out[vi] = orthogonalize(tangents[vi], binormals[vi], normals[vi])
	}
	return out
}
