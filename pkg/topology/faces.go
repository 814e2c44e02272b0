// Package topology derives vertex adjacency from face index buffers and walks
// it to classify and select boundary, hole and connected regions.
package topology

import (
	"errors"
	"fmt"
)

// Validation errors returned by Faces.Validate.
var (
	ErrIndexOutOfRange = errors.New("topology: index out of range")
	ErrCountMismatch   = errors.New("topology: face counts do not cover indices")
	ErrBadDegree       = errors.New("topology: invalid face degree")
)

// Faces describes polygons over a flat index buffer, either with a fixed
// degree (Degree > 0) or with per-face Counts and Offsets.
type Faces struct {
	Indices []int
	Counts  []int
	Offsets []int
	Degree  int

	remap WeldMap
}

// Uniform describes len(indices)/degree faces of the same degree.
func Uniform(indices []int, degree int) Faces {
	return Faces{Indices: indices, Degree: degree}
}

// Triangles is Uniform(indices, 3).
func Triangles(indices []int) Faces {
	return Uniform(indices, 3)
}

// Variable describes faces with individual vertex counts. A nil offsets
// slice is derived from counts.
func Variable(indices, counts, offsets []int) Faces {
	if offsets == nil {
		offsets = make([]int, len(counts))
		o := 0
		for i, c := range counts {
			offsets[i] = o
			o += c
		}
	}
	return Faces{Indices: indices, Counts: counts, Offsets: offsets}
}

// Len returns the number of faces.
func (f Faces) Len() int {
	if f.Degree > 0 {
		return len(f.Indices) / f.Degree
	}
	return len(f.Counts)
}

// Count returns the vertex count of face fi.
func (f Faces) Count(fi int) int {
	if f.Degree > 0 {
		return f.Degree
	}
	return f.Counts[fi]
}

// Offset returns the position of face fi's first corner in Indices.
func (f Faces) Offset(fi int) int {
	if f.Degree > 0 {
		return f.Degree * fi
	}
	return f.Offsets[fi]
}

// Index returns the vertex referenced by a corner, resolved through the weld
// map when the view is welded.
func (f Faces) Index(corner int) int {
	v := f.Indices[corner]
	if f.remap != nil {
		return f.remap[v]
	}
	return v
}

// Neighbors returns the vertices before and after a corner of face fi.
func (f Faces) Neighbors(fi, corner int) (prev, next int) {
	off := f.Offset(fi)
	c := f.Count(fi)
	nth := corner - off
	return f.Index(off + (nth+c-1)%c), f.Index(off + (nth+1)%c)
}

// Welded returns a view of f whose indices resolve to weld representatives.
func (f Faces) Welded(w WeldMap) Faces {
	f.remap = w
	return f
}

// IsWelded reports whether f resolves indices through a weld map.
func (f Faces) IsWelded() bool {
	return f.remap != nil
}

// Validate checks that every face is well formed and every index is below
// numVertices.
func (f Faces) Validate(numVertices int) error {
	if f.Degree > 0 {
		if len(f.Indices)%f.Degree != 0 {
			return fmt.Errorf("%w: %d indices with degree %d", ErrCountMismatch, len(f.Indices), f.Degree)
		}
	} else {
		if f.Degree < 0 {
			return fmt.Errorf("%w: %d", ErrBadDegree, f.Degree)
		}
		if len(f.Counts) != len(f.Offsets) {
			return fmt.Errorf("%w: %d counts, %d offsets", ErrCountMismatch, len(f.Counts), len(f.Offsets))
		}
		total := 0
		for fi, c := range f.Counts {
			if c < 0 {
				return fmt.Errorf("%w: face %d has %d vertices", ErrBadDegree, fi, c)
			}
			if o := f.Offsets[fi]; o < 0 || o+c > len(f.Indices) {
				return fmt.Errorf("%w: face %d spans [%d, %d) of %d", ErrIndexOutOfRange, fi, o, o+c, len(f.Indices))
			}
			total += c
		}
		if total != len(f.Indices) {
			return fmt.Errorf("%w: counts sum to %d, have %d indices", ErrCountMismatch, total, len(f.Indices))
		}
	}
	for i, v := range f.Indices {
		if v < 0 || v >= numVertices {
			return fmt.Errorf("%w: index %d at %d (vertex count %d)", ErrIndexOutOfRange, v, i, numVertices)
		}
	}
	return nil
}
