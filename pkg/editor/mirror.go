package editor

import (
	"sync/atomic"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/normalpainter/internal/parallel"
	"github.com/Faultbox/normalpainter/internal/spatial"
	"github.com/Faultbox/normalpainter/pkg/math"
)

// MirrorMode names the source and destination side of a mirror edit.
type MirrorMode int

// Mirror modes.
const (
	MirrorNone MirrorMode = iota
	MirrorRightToLeft
	MirrorLeftToRight
	MirrorForwardToBack
	MirrorBackToForward
	MirrorUpToDown
	MirrorDownToUp
)

// MirrorPlane returns the normal of the mirror plane through the origin for
// mode. Vertices on the negative side of the plane are the source side.
func MirrorPlane(mode MirrorMode) math.Vec3 {
	switch mode {
	case MirrorRightToLeft:
		return math.Vec3{X: -1}
	case MirrorLeftToRight:
		return math.Vec3{X: 1}
	case MirrorForwardToBack:
		return math.Vec3{Z: -1}
	case MirrorBackToForward:
		return math.Vec3{Z: 1}
	case MirrorUpToDown:
		return math.Vec3{Y: -1}
	default:
		return math.Vec3{Y: 1}
	}
}

// BuildMirroringRelation relates every vertex strictly behind the plane to
// the lowest-index vertex in front of it that mirrors its position and
// normal. Unrelated vertices get -1. It returns the relation and the number
// of related vertices; 0 means the mesh is not symmetric about the plane.
func (e *Editor) BuildMirroringRelation(points, normals []math.Vec3, plane math.Vec3) ([]int, int) {
	if len(points) == 0 || len(normals) != len(points) {
		return nil, 0
	}
	dist := make([]float32, len(points))
	parallel.For(len(points), e.opts.Workers, func(vi int) {
		dist[vi] = math.PlaneDistance(points[vi], plane)
	})

	eps := e.opts.MirrorEpsilon
	ix := spatial.New(points)
	relation := make([]int, len(points))
	var n atomic.Int32
	parallel.For(len(points), e.opts.Workers, func(vi int) {
		relation[vi] = -1
		if dist[vi] >= 0 {
			return
		}
		mirrored := math.PlaneMirror(points[vi], plane)
		for _, i := range ix.Within(mirrored, eps*math32.Sqrt(3)) {
			d2 := dist[i]
			if d2 <= 0 || !points[vi].NearEqual(points[i].Sub(plane.Scale(d2*2)), eps) {
				continue
			}
			if normals[vi].Dot(math.PlaneMirror(normals[i], plane)) >= e.opts.MirrorNormalDot {
				relation[vi] = i
				n.Add(1)
				return
			}
		}
	})
	if n.Load() == 0 {
		e.log.Warn("mesh is not symmetric about the mirror plane",
			zap.Float32("x", plane.X), zap.Float32("y", plane.Y), zap.Float32("z", plane.Z))
	}
	return relation, int(n.Load())
}

// ApplyMirroring writes the reflection of every related normal onto its
// partner and returns the number written.
func ApplyMirroring(relation []int, plane math.Vec3, normals []math.Vec3) int {
	if len(relation) != len(normals) {
		return 0
	}
	n := 0
	for vi, rel := range relation {
		if rel < 0 || rel >= len(normals) {
			continue
		}
		normals[rel] = math.PlaneMirror(normals[vi], plane)
		n++
	}
	return n
}
