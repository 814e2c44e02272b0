// Package meshgen builds small procedural meshes: quad grids with excised
// cells, cubes with and without split seams, and tori.
package meshgen

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/normalpainter/pkg/math"
)

// Mesh is a polygon mesh with per-vertex attributes. Faces are stored as a
// flat index list with per-face vertex counts.
type Mesh struct {
	Points  []math.Vec3
	Normals []math.Vec3
	UV      []math.Vec2
	Indices []int
	Counts  []int
}

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int { return len(m.Counts) }

// Offsets returns the index offset of every face.
func (m *Mesh) Offsets() []int {
	out := make([]int, len(m.Counts))
	o := 0
	for i, c := range m.Counts {
		out[i] = o
		o += c
	}
	return out
}

func (m *Mesh) addFace(idx ...int) {
	m.Indices = append(m.Indices, idx...)
	m.Counts = append(m.Counts, len(idx))
}

// Grid returns an nx by nz cell quad grid on the XZ plane facing +Y. Vertex
// (x, z) has index z*(nx+1)+x. Cells for which skip returns true are left
// out.
func Grid(nx, nz int, spacing float32, skip func(x, z int) bool) *Mesh {
	m := &Mesh{}
	for z := 0; z <= nz; z++ {
		for x := 0; x <= nx; x++ {
			m.Points = append(m.Points, math.Vec3{X: float32(x) * spacing, Z: float32(z) * spacing})
			m.Normals = append(m.Normals, math.Vec3{Y: 1})
			m.UV = append(m.UV, math.Vec2{X: float32(x) / float32(nx), Y: float32(z) / float32(nz)})
		}
	}
	row := nx + 1
	for z := 0; z < nz; z++ {
		for x := 0; x < nx; x++ {
			if skip != nil && skip(x, z) {
				continue
			}
			i := z*row + x
			m.addFace(i, i+row, i+row+1, i+1)
		}
	}
	return m
}

// Triangulate fans every face into triangles.
func Triangulate(m *Mesh) *Mesh {
	out := &Mesh{Points: m.Points, Normals: m.Normals, UV: m.UV}
	off := 0
	for _, c := range m.Counts {
		for i := 1; i+1 < c; i++ {
			out.addFace(m.Indices[off], m.Indices[off+i], m.Indices[off+i+1])
		}
		off += c
	}
	return out
}

type cubeFace struct{ n, u, v math.Vec3 }

var cubeFaces = [6]cubeFace{
	{math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}},
	{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
	{math.Vec3{Y: 1}, math.Vec3{Z: 1}, math.Vec3{X: 1}},
	{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
	{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
	{math.Vec3{Z: -1}, math.Vec3{Y: 1}, math.Vec3{X: 1}},
}

var cubeCorners = [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// Cube returns an axis aligned cube centred on the origin with outward quads.
// A split cube gives every face its own four vertices with flat normals; a
// welded cube shares its eight corners.
func Cube(size float32, split bool) *Mesh {
	m := &Mesh{}
	h := size / 2
	shared := map[math.Vec3]int{}
	for _, f := range cubeFaces {
		var face [4]int
		for ci, c := range cubeCorners {
			p := f.n.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1])).Scale(h)
			if !split {
				if i, ok := shared[p]; ok {
					face[ci] = i
					continue
				}
				shared[p] = len(m.Points)
			}
			face[ci] = len(m.Points)
			m.Points = append(m.Points, p)
			if split {
				m.Normals = append(m.Normals, f.n)
			} else {
				m.Normals = append(m.Normals, p.Normalize())
			}
			m.UV = append(m.UV, math.Vec2{X: (c[0] + 1) / 2, Y: (c[1] + 1) / 2})
		}
		m.addFace(face[:]...)
	}
	return m
}

// Torus returns a closed quad torus around the Y axis.
func Torus(major, minor float32, segments, sides int) *Mesh {
	m := &Mesh{}
	for i := 0; i < segments; i++ {
		u := 2 * math32.Pi * float32(i) / float32(segments)
		for j := 0; j < sides; j++ {
			v := 2 * math32.Pi * float32(j) / float32(sides)
			n := math.Vec3{X: math32.Cos(v) * math32.Cos(u), Y: math32.Sin(v), Z: math32.Cos(v) * math32.Sin(u)}
			c := math.Vec3{X: major * math32.Cos(u), Z: major * math32.Sin(u)}
			m.Points = append(m.Points, c.Add(n.Scale(minor)))
			m.Normals = append(m.Normals, n)
			m.UV = append(m.UV, math.Vec2{X: float32(i) / float32(segments), Y: float32(j) / float32(sides)})
		}
	}
	at := func(i, j int) int { return (i%segments)*sides + j%sides }
	for i := 0; i < segments; i++ {
		for j := 0; j < sides; j++ {
			m.addFace(at(i, j), at(i, j+1), at(i+1, j+1), at(i+1, j))
		}
	}
	return m
}

// SplitSeam duplicates the vertices lying on the plane X == x for every face
// whose centroid lies beyond it, opening a seam of coincident vertices.
func SplitSeam(m *Mesh, x float32) *Mesh {
	out := &Mesh{
		Points:  append([]math.Vec3(nil), m.Points...),
		Normals: append([]math.Vec3(nil), m.Normals...),
		UV:      append([]math.Vec2(nil), m.UV...),
		Counts:  append([]int(nil), m.Counts...),
	}
	dup := map[int]int{}
	off := 0
	for _, c := range m.Counts {
		face := m.Indices[off : off+c]
		var cx float32
		for _, v := range face {
			cx += m.Points[v].X
		}
		beyond := cx/float32(c) > x
		for _, v := range face {
			if beyond && m.Points[v].X == x {
				d, ok := dup[v]
				if !ok {
					d = len(out.Points)
					dup[v] = d
					out.Points = append(out.Points, m.Points[v])
					out.Normals = append(out.Normals, m.Normals[v])
					out.UV = append(out.UV, m.UV[v])
				}
				v = d
			}
			out.Indices = append(out.Indices, v)
		}
		off += c
	}
	return out
}
