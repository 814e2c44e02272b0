// Package editor selects vertices and edits vertex normals of a mesh under a
// per-vertex selection mask. Every entry point works in place on caller-owned
// buffers and reports a count instead of failing: missing or mismatched
// buffers make the call a no-op.
package editor

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/normalpainter/pkg/math"
	"github.com/Faultbox/normalpainter/pkg/topology"
)

// Options tune tolerances and parallelism.
type Options struct {
	Logger *zap.Logger

	// Workers bounds per-vertex parallel loops (0 means GOMAXPROCS).
	Workers int
	// BoundaryAngle is the corner angle sum in radians under which a vertex
	// is on an open boundary.
	BoundaryAngle float32
	// WeldEpsilon is the squared distance under which positions coincide
	// for hole selection and cross-mesh welding.
	WeldEpsilon float32
	// FrontfaceTolerance is the distance between a vertex and the first
	// surface hit for the vertex to count as visible.
	FrontfaceTolerance float32
	// PickCandidateCap is the soft limit on single-pick candidates (0 means
	// unlimited).
	PickCandidateCap int
	// MirrorEpsilon is the per-component tolerance for mirror partners.
	MirrorEpsilon float32
	// MirrorNormalDot is the minimum agreement of mirrored normals.
	MirrorNormalDot float32
}

// DefaultOptions returns the stock tolerances.
func DefaultOptions() Options {
	return Options{
		BoundaryAngle:      topology.DefaultBoundaryAngle,
		WeldEpsilon:        topology.DefaultWeldEpsilon,
		FrontfaceTolerance: 0.01,
		PickCandidateCap:   64,
		MirrorEpsilon:      0.001,
		MirrorNormalDot:    0.99,
	}
}

// Editor runs selection and normal edits. It caches the connectivity of the
// last model it saw.
type Editor struct {
	opts Options
	log  *zap.Logger

	mu   sync.Mutex
	topo *meshTopology
}

// New returns an editor. Zero tolerances fall back to DefaultOptions.
func New(opts Options) *Editor {
	def := DefaultOptions()
	if opts.BoundaryAngle == 0 {
		opts.BoundaryAngle = def.BoundaryAngle
	}
	if opts.WeldEpsilon == 0 {
		opts.WeldEpsilon = def.WeldEpsilon
	}
	if opts.FrontfaceTolerance == 0 {
		opts.FrontfaceTolerance = def.FrontfaceTolerance
	}
	if opts.MirrorEpsilon == 0 {
		opts.MirrorEpsilon = def.MirrorEpsilon
	}
	if opts.MirrorNormalDot == 0 {
		opts.MirrorNormalDot = def.MirrorNormalDot
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{opts: opts, log: log.Named("editor")}
}

// Options returns the effective options.
func (e *Editor) Options() Options { return e.opts }

// Model is a triangle mesh view. All slices are owned by the caller; Points,
// Normals and Selection are indexed by vertex.
type Model struct {
	Indices   []int
	Points    []math.Vec3
	Normals   []math.Vec3
	Selection []float32
	Transform math.Mat4
}

// NewModel returns a model with an empty selection and identity transform.
func NewModel(points, normals []math.Vec3, indices []int) *Model {
	return &Model{
		Indices:   indices,
		Points:    points,
		Normals:   normals,
		Selection: make([]float32, len(points)),
		Transform: math.Identity(),
	}
}

// NumVertices returns the vertex count.
func (m *Model) NumVertices() int { return len(m.Points) }

// NumTriangles returns the triangle count.
func (m *Model) NumTriangles() int { return len(m.Indices) / 3 }

// trans returns the model-to-world matrix. A zero matrix is read as identity.
func (m *Model) trans() math.Mat4 {
	if m.Transform == (math.Mat4{}) {
		return math.Identity()
	}
	return m.Transform
}

func (m *Model) hasSelection() bool {
	return len(m.Points) > 0 && len(m.Selection) == len(m.Points)
}

func (m *Model) editable() bool {
	return m.hasSelection() && len(m.Normals) == len(m.Points)
}

// weight returns the selection strength of v, or 1 when mask is off.
func (m *Model) weight(v int, mask bool) float32 {
	if mask {
		return m.Selection[v]
	}
	return 1
}

func (m *Model) worldPoints() []math.Vec3 {
	t := m.trans()
	out := make([]math.Vec3, len(m.Points))
	for i, p := range m.Points {
		out[i] = t.TransformPoint(p)
	}
	return out
}

type topoKey struct {
	indices *int
	points  *math.Vec3
	numIdx  int
	numPts  int
}

func keyOf(m *Model) topoKey {
	k := topoKey{numIdx: len(m.Indices), numPts: len(m.Points)}
	if len(m.Indices) > 0 {
		k.indices = &m.Indices[0]
	}
	if len(m.Points) > 0 {
		k.points = &m.Points[0]
	}
	return k
}

type meshTopology struct {
	key    topoKey
	err    error // indices reference missing vertices
	faces  topology.Faces
	plain  *topology.Classifier
	weld   topology.WeldMap
	welded *topology.Classifier
}

// InvalidateTopology drops cached connectivity. Call it after editing
// indices or positions in place.
func (e *Editor) InvalidateTopology() {
	e.mu.Lock()
	e.topo = nil
	e.mu.Unlock()
}

func (e *Editor) topology(m *Model) *meshTopology {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := keyOf(m)
	if e.topo != nil && e.topo.key == k {
		return e.topo
	}
	f := topology.Triangles(m.Indices)
	t := &meshTopology{key: k, faces: f, err: f.Validate(len(m.Points))}
	if t.err != nil {
		e.log.Warn("invalid topology", zap.Error(t.err))
	}
	t.plain = e.classifier(f, m.Points)
	e.topo = t
	e.log.Debug("topology built",
		zap.Int("vertices", len(m.Points)),
		zap.Int("triangles", m.NumTriangles()))
	return t
}

func (e *Editor) classifier(f topology.Faces, points []math.Vec3) *topology.Classifier {
	c := topology.NewClassifier(f, points)
	c.Threshold = e.opts.BoundaryAngle
	return c
}

// validTopology returns the cached topology and whether m's indices are
// usable. Entry points that follow indices do nothing when they are not.
func (e *Editor) validTopology(m *Model) (*meshTopology, bool) {
	t := e.topology(m)
	return t, t.err == nil
}

// weldedTopology returns the cached topology with its weld map built.
func (e *Editor) weldedTopology(m *Model) *meshTopology {
	t := e.topology(m)
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.weld == nil {
		t.weld = topology.BuildWeldMap(m.Points, e.opts.WeldEpsilon, e.opts.Workers)
		t.welded = e.classifier(t.faces.Welded(t.weld), m.Points)
	}
	return t
}

// OnEdge reports whether vertex v of m lies on an open boundary.
func (e *Editor) OnEdge(m *Model, v int) bool {
	if v < 0 || v >= len(m.Points) {
		return false
	}
	t, ok := e.validTopology(m)
	return ok && t.plain.OnEdge(v)
}
