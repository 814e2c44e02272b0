package topology

import "github.com/Faultbox/normalpainter/pkg/math"

// DefaultBoundaryAngle is the corner angle sum (radians) below which a vertex
// is on an open boundary. It sits under 2*pi to absorb float error on closed
// fans.
const DefaultBoundaryAngle = 357 * math.Deg2Rad

// Classifier answers boundary questions about one face set.
type Classifier struct {
	Faces     Faces
	Points    []math.Vec3
	Graph     *Graph
	Threshold float32
}

// NewClassifier builds the connectivity graph for f and classifies with the
// default threshold.
func NewClassifier(f Faces, points []math.Vec3) *Classifier {
	return &Classifier{
		Faces:     f,
		Points:    points,
		Graph:     Build(f, len(points)),
		Threshold: DefaultBoundaryAngle,
	}
}

// CornerAngleSum returns the sum of v's corner angles over incident faces with
// at least three vertices.
func (c *Classifier) CornerAngleSum(v int) float32 {
	faces, corners := c.Graph.Incident(v)
	var angle float32
	for i, fi := range faces {
		if c.Faces.Count(fi) < 3 {
			continue
		}
		prev, next := c.Faces.Neighbors(fi, corners[i])
		angle += math.AngleAt(c.Points[prev], c.Points[next], c.Points[v])
	}
	return angle
}

// OnEdge reports whether v lies on an open boundary. Vertices without faces
// are on an edge.
func (c *Classifier) OnEdge(v int) bool {
	threshold := c.Threshold
	if threshold == 0 {
		threshold = DefaultBoundaryAngle
	}
	return c.CornerAngleSum(v) < threshold
}

// EdgeFaces returns how many faces contain the edge (i0, i1) in either
// direction.
func (c *Classifier) EdgeFaces(i0, i1 int) int {
	faces, corners := c.Graph.Incident(i0)
	n := 0
	for i, fi := range faces {
		if c.Faces.Count(fi) < 3 {
			continue
		}
		prev, next := c.Faces.Neighbors(fi, corners[i])
		if prev == i1 || next == i1 {
			n++
		}
	}
	return n
}

// IsEdgeOpened reports whether exactly one face contains the edge (i0, i1).
func (c *Classifier) IsEdgeOpened(i0, i1 int) bool {
	return c.EdgeFaces(i0, i1) == 1
}
