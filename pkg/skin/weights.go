package skin

import (
	"errors"
	"fmt"
	"sort"
)

// ErrLengthMismatch is returned when parallel input slices disagree in length.
var ErrLengthMismatch = errors.New("skin: length mismatch")

// Weights4 binds a vertex to up to four bones.
type Weights4 struct {
	Indices [4]int
	Weights [4]float32
}

// Len returns the influence count.
func (w Weights4) Len() int { return 4 }

// At returns influence i.
func (w Weights4) At(i int) (bone int, weight float32) { return w.Indices[i], w.Weights[i] }

// Weights8 binds a vertex to up to eight bones.
type Weights8 struct {
	Indices [8]int
	Weights [8]float32
}

// Len returns the influence count.
func (w Weights8) Len() int { return 8 }

// At returns influence i.
func (w Weights8) At(i int) (bone int, weight float32) { return w.Indices[i], w.Weights[i] }

// Binding is a fixed-width per-vertex set of bone influences.
type Binding interface {
	Weights4 | Weights8
	Len() int
	At(i int) (bone int, weight float32)
}

// GenerateWeights4 packs a flat list of bonesPerVertex influences per vertex
// into Weights4. Vertices with more than four influences keep their four
// heaviest, renormalized.
func GenerateWeights4(indices []int, weights []float32, bonesPerVertex int) ([]Weights4, error) {
	var out []Weights4
	err := generate(indices, weights, bonesPerVertex, 4, func(n int) {
		out = make([]Weights4, n)
	}, func(vi, slot, bone int, w float32) {
		out[vi].Indices[slot] = bone
		out[vi].Weights[slot] = w
	})
	return out, err
}

// GenerateWeights8 is GenerateWeights4 for eight influences.
func GenerateWeights8(indices []int, weights []float32, bonesPerVertex int) ([]Weights8, error) {
	var out []Weights8
	err := generate(indices, weights, bonesPerVertex, 8, func(n int) {
		out = make([]Weights8, n)
	}, func(vi, slot, bone int, w float32) {
		out[vi].Indices[slot] = bone
		out[vi].Weights[slot] = w
	})
	return out, err
}

// generate copies influences when they fit in width slots. Otherwise it
// keeps the width heaviest influences of each vertex and renormalizes them
// to sum to 1.
func generate(indices []int, weights []float32, bpv, width int, alloc func(n int), set func(vi, slot, bone int, w float32)) error {
	if len(indices) != len(weights) {
		return fmt.Errorf("%d bone indices, %d weights: %w", len(indices), len(weights), ErrLengthMismatch)
	}
	if bpv <= 0 {
		return fmt.Errorf("bones per vertex %d: %w", bpv, ErrLengthMismatch)
	}
	n := len(indices) / bpv
	alloc(n)

	if bpv <= width {
		for vi := range n {
			for i := range bpv {
				set(vi, i, indices[vi*bpv+i], weights[vi*bpv+i])
			}
		}
		return nil
	}

	order := make([]int, bpv)
	for vi := range n {
		bi := indices[vi*bpv : (vi+1)*bpv]
		bw := weights[vi*bpv : (vi+1)*bpv]
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return bw[order[a]] > bw[order[b]] })

		var total float32
		for _, o := range order[:width] {
			total += bw[o]
		}
		for slot, o := range order[:width] {
			w := bw[o]
			if total > 0 {
				w /= total
			}
			set(vi, slot, bi[o], w)
		}
	}
	return nil
}
