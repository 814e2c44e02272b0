package main

import (
	"github.com/Faultbox/normalpainter/pkg/editor"
	"github.com/Faultbox/normalpainter/pkg/meshgen"
	"github.com/Faultbox/normalpainter/pkg/topology"
)

// report summarizes the topology of a mesh.
type report struct {
	Vertices   int
	Faces      int
	Triangles  int
	Boundary   int // vertices on an open boundary
	Components int
	WeldGroups int
	Holes      [][]int // boundary loops of the welded mesh
}

// analyze builds the topology report for m.
func analyze(m *meshgen.Mesh, opts editor.Options) (*report, error) {
	faces := topology.Variable(m.Indices, m.Counts, m.Offsets())
	if err := faces.Validate(len(m.Points)); err != nil {
		return nil, err
	}
	r := &report{
		Vertices:  len(m.Points),
		Faces:     m.NumFaces(),
		Triangles: len(meshgen.Triangulate(m).Indices) / 3,
	}

	c := topology.NewClassifier(faces, m.Points)
	c.Threshold = opts.BoundaryAngle
	for v := range m.Points {
		if c.Graph.Degree(v) > 0 && c.OnEdge(v) {
			r.Boundary++
		}
	}

	w := topology.NewWalker(c)
	for v := range m.Points {
		if c.Graph.Degree(v) == 0 || w.Visited(v) {
			continue
		}
		r.Components++
		w.Connected(v, func(int) {})
	}

	weld := topology.BuildWeldMap(m.Points, opts.WeldEpsilon, opts.Workers)
	r.WeldGroups = weld.Groups()
	r.Holes = holeLoops(faces, m, weld, opts)
	return r, nil
}

// holeLoops returns the open boundary loops left after welding coincident
// vertices. Each loop lists representative vertices in visit order.
func holeLoops(faces topology.Faces, m *meshgen.Mesh, weld topology.WeldMap, opts editor.Options) [][]int {
	c := topology.NewClassifier(faces.Welded(weld), m.Points)
	c.Threshold = opts.BoundaryAngle
	w := topology.NewWalker(c)

	var loops [][]int
	for v := range m.Points {
		if !weld.IsRep(v) || c.Graph.Degree(v) == 0 || w.Visited(v) || !c.OnEdge(v) {
			continue
		}
		var loop []int
		w.Edge(v, func(vi int) { loop = append(loop, vi) })
		if len(loop) > 0 {
			loops = append(loops, loop)
		}
	}
	return loops
}
