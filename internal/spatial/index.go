// Package spatial indexes vertex positions for radius and coincidence queries.
package spatial

import (
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/Faultbox/normalpainter/pkg/math"
)

// point is a kd-tree entry that remembers its vertex index.
type point struct {
	pos   [3]float64
	index int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	return p.pos[d] - q.pos[d]
}

func (p point) Dims() int { return 3 }

func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx := p.pos[0] - q.pos[0]
	dy := p.pos[1] - q.pos[1]
	dz := p.pos[2] - q.pos[2]
	return dx*dx + dy*dy + dz*dz
}

type points []point

func (p points) Index(i int) kdtree.Comparable { return p[i] }
func (p points) Len() int                      { return len(p) }
func (p points) Pivot(d kdtree.Dim) int        { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// plane sorts points along one axis for median partitioning.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool { return p.points[i].pos[p.Dim] < p.points[j].pos[p.Dim] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Swap(i, j int)      { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// Index is an immutable kd-tree over a point set. It is safe for concurrent
// queries.
type Index struct {
	tree *kdtree.Tree
	src  []math.Vec3
}

// New builds an index over pts. pts is retained and must not change while the
// index is in use.
func New(pts []math.Vec3) *Index {
	ix := &Index{src: pts}
	if len(pts) == 0 {
		return ix
	}
	entries := make(points, len(pts))
	for i, p := range pts {
		entries[i] = point{pos: [3]float64{float64(p.X), float64(p.Y), float64(p.Z)}, index: i}
	}
	ix.tree = kdtree.New(entries, false)
	return ix
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return len(ix.src) }

// Within returns the indices of all points whose squared distance to p is at
// most r*r, in ascending order.
func (ix *Index) Within(p math.Vec3, r float32) []int {
	if ix.tree == nil || r < 0 {
		return nil
	}
	rsq := r * r
	// Pad the float64 search so float32 boundary cases are decided below.
	keep := kdtree.NewDistKeeper(float64(rsq)*1.001 + 1e-12)
	ix.tree.NearestSet(keep, point{pos: [3]float64{float64(p.X), float64(p.Y), float64(p.Z)}})

	out := make([]int, 0, keep.Len())
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		i := c.Comparable.(point).index
		if ix.src[i].Sub(p).LengthSq() <= rsq {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}

// Nearest returns the index of the point closest to p and its distance, or
// -1 for an empty index.
func (ix *Index) Nearest(p math.Vec3) (int, float32) {
	if ix.tree == nil {
		return -1, 0
	}
	c, _ := ix.tree.Nearest(point{pos: [3]float64{float64(p.X), float64(p.Y), float64(p.Z)}})
	if c == nil {
		return -1, 0
	}
	i := c.(point).index
	return i, ix.src[i].Distance(p)
}
