package topology

import "github.com/Faultbox/normalpainter/pkg/math"

// Visitor receives each newly visited vertex.
type Visitor func(v int)

type edge struct{ i0, i1 int }

// Walker runs selection walks over a classifier. Vertices visited by one walk
// stay visited for later seeds, so a seed list never reports a vertex twice.
type Walker struct {
	c       *Classifier
	visited []bool
	edges   []edge
	stack   []int
}

// NewWalker returns a walker with no visited vertices.
func NewWalker(c *Classifier) *Walker {
	return &Walker{c: c, visited: make([]bool, c.Graph.NumVertices())}
}

// Visited reports whether v has been reported.
func (w *Walker) Visited(v int) bool { return w.visited[v] }

func (w *Walker) visit(v int, fn Visitor) {
	if !w.visited[v] {
		w.visited[v] = true
		fn(v)
	}
}

func (w *Walker) pushFlanking(v int) {
	faces, corners := w.c.Graph.Incident(v)
	for i, fi := range faces {
		prev, next := w.c.Faces.Neighbors(fi, corners[i])
		w.edges = append(w.edges, edge{v, prev}, edge{v, next})
	}
}

// Edge walks open edges outward from seed, reporting every vertex of the
// connected boundary it reaches.
func (w *Walker) Edge(seed int, fn Visitor) {
	if w.visited[seed] {
		return
	}
	w.pushFlanking(seed)
	for len(w.edges) > 0 {
		e := w.edges[len(w.edges)-1]
		w.edges = w.edges[:len(w.edges)-1]
		if w.visited[e.i0] && w.visited[e.i1] {
			continue
		}
		if !w.c.IsEdgeOpened(e.i0, e.i1) {
			continue
		}
		w.visit(e.i0, fn)
		w.visit(e.i1, fn)
		w.pushFlanking(e.i1)
	}
}

// Connected floods every vertex sharing a face with seed, transitively.
func (w *Walker) Connected(seed int, fn Visitor) {
	w.stack = append(w.stack, seed)
	for len(w.stack) > 0 {
		v := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		if w.visited[v] {
			continue
		}
		w.visited[v] = true
		fn(v)

		faces, corners := w.c.Graph.Incident(v)
		for i, fi := range faces {
			prev, next := w.c.Faces.Neighbors(fi, corners[i])
			w.stack = append(w.stack, prev, next)
		}
	}
}

// SelectEdge reports the open-boundary vertices reachable from seeds.
func SelectEdge(f Faces, points []math.Vec3, seeds []int, fn Visitor) {
	w := NewWalker(NewClassifier(f, points))
	for _, v := range seeds {
		w.Edge(v, fn)
	}
}

// SelectHole is SelectEdge over the welded topology, so seams split by
// duplicated vertices do not count as open. Seeds are resolved through weld
// and only representatives are reported.
func SelectHole(f Faces, points []math.Vec3, weld WeldMap, seeds []int, fn Visitor) {
	w := NewWalker(NewClassifier(f.Welded(weld), points))
	for _, v := range seeds {
		w.Edge(weld[v], fn)
	}
}

// SelectConnected reports every vertex in the components containing seeds.
func SelectConnected(f Faces, points []math.Vec3, seeds []int, fn Visitor) {
	w := NewWalker(NewClassifier(f, points))
	for _, v := range seeds {
		w.Connected(v, fn)
	}
}
