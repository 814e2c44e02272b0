package topology

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/normalpainter/internal/parallel"
	"github.com/Faultbox/normalpainter/internal/spatial"
	"github.com/Faultbox/normalpainter/pkg/math"
)

// DefaultWeldEpsilon is the squared distance below which two positions are
// treated as the same point.
const DefaultWeldEpsilon = 1e-4

// WeldMap maps each vertex to the representative of its coincident group.
type WeldMap []int

// BuildWeldMap assigns every vertex the lowest earlier vertex whose squared
// distance is below epsilon, then collapses chains so the map is idempotent.
// The representative of a vertex is the lowest index reachable by following
// those earliest matches.
func BuildWeldMap(points []math.Vec3, epsilon float32, workers int) WeldMap {
	w := make(WeldMap, len(points))
	if len(points) == 0 {
		return w
	}
	ix := spatial.New(points)
	r := math32.Sqrt(epsilon)
	parallel.For(len(points), workers, func(v int) {
		w[v] = v
		p := points[v]
		for _, i := range ix.Within(p, r) {
			if i >= v {
				break
			}
			if points[i].Sub(p).LengthSq() < epsilon {
				w[v] = i
				break
			}
		}
	})
	// w[v] <= v, so one ascending pass resolves every chain.
	for v := range w {
		w[v] = w[w[v]]
	}
	return w
}

// Rep returns the representative of v.
func (w WeldMap) Rep(v int) int { return w[v] }

// IsRep reports whether v represents its own group.
func (w WeldMap) IsRep(v int) bool { return w[v] == v }

// Apply returns indices resolved to their representatives.
func (w WeldMap) Apply(indices []int) []int {
	out := make([]int, len(indices))
	for i, v := range indices {
		out[i] = w[v]
	}
	return out
}

// Groups returns the number of distinct representatives.
func (w WeldMap) Groups() int {
	n := 0
	for v := range w {
		if w[v] == v {
			n++
		}
	}
	return n
}
