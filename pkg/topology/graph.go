package topology

// Graph lists, for every vertex, the (face, corner) pairs that reference it.
// It borrows nothing from the mesh once built.
type Graph struct {
	offsets []int
	counts  []int
	faces   []int
	corners []int
}

// Build constructs the graph with two counting passes over f. Corners whose
// index falls outside [0, numVertices) are ignored.
func Build(f Faces, numVertices int) *Graph {
	g := &Graph{
		offsets: make([]int, numVertices),
		counts:  make([]int, numVertices),
	}
	numFaces := f.Len()

	total := 0
	for fi := 0; fi < numFaces; fi++ {
		off, c := f.Offset(fi), f.Count(fi)
		for ci := 0; ci < c; ci++ {
			if v := f.Index(off + ci); v >= 0 && v < numVertices {
				g.counts[v]++
				total++
			}
		}
	}

	offset := 0
	for v := range g.offsets {
		g.offsets[v] = offset
		offset += g.counts[v]
	}
	g.faces = make([]int, total)
	g.corners = make([]int, total)

	// Reuse counts as per-vertex cursors.
	clear(g.counts)
	for fi := 0; fi < numFaces; fi++ {
		off, c := f.Offset(fi), f.Count(fi)
		for ci := 0; ci < c; ci++ {
			v := f.Index(off + ci)
			if v < 0 || v >= numVertices {
				continue
			}
			slot := g.offsets[v] + g.counts[v]
			g.counts[v]++
			g.faces[slot] = fi
			g.corners[slot] = off + ci
		}
	}
	return g
}

// NumVertices returns the vertex count the graph was built for.
func (g *Graph) NumVertices() int { return len(g.offsets) }

// NumCorners returns the total number of entries.
func (g *Graph) NumCorners() int { return len(g.faces) }

// Incident returns the faces and flat corner positions referencing v, in
// face traversal order. The slices alias the graph and must not be modified.
func (g *Graph) Incident(v int) (faces, corners []int) {
	lo, hi := g.offsets[v], g.offsets[v]+g.counts[v]
	return g.faces[lo:hi], g.corners[lo:hi]
}

// Degree returns the number of corners referencing v.
func (g *Graph) Degree(v int) int { return g.counts[v] }
