// Package skin evaluates linear blend skinning over fixed-width bone
// bindings.
package skin

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/normalpainter/internal/parallel"
	"github.com/Faultbox/normalpainter/pkg/math"
)

// ErrBoneIndex is returned when a binding references a bone that does not
// exist.
var ErrBoneIndex = errors.New("skin: bone index out of range")

// Skin binds vertices to a skeleton. Bones are world matrices and BindPoses
// map model space into each bone's space at bind time.
type Skin[W Binding] struct {
	Weights   []W
	Bones     []math.Mat4
	BindPoses []math.Mat4
	Root      math.Mat4
}

// Streams are per-vertex attribute buffers. A nil stream is skipped.
type Streams struct {
	Points   []math.Vec3
	Normals  []math.Vec3
	Tangents []math.Vec4
}

// Poses returns the composite matrix of every bone: the bind pose, then the
// bone's world matrix, then the inverse root.
func (s *Skin[W]) Poses() ([]math.Mat4, error) {
	if len(s.Bones) != len(s.BindPoses) {
		return nil, fmt.Errorf("%d bones, %d bind poses: %w", len(s.Bones), len(s.BindPoses), ErrLengthMismatch)
	}
	root := s.Root
	if root == (math.Mat4{}) {
		root = math.Identity()
	}
	invRoot := root.Inverse()
	poses := make([]math.Mat4, len(s.Bones))
	for bi := range s.Bones {
		poses[bi] = invRoot.Mul(s.Bones[bi]).Mul(s.BindPoses[bi])
	}
	return poses, nil
}

// Apply deforms in by the skin and writes the result to out.
func (s *Skin[W]) Apply(ctx context.Context, in, out Streams) error {
	poses, err := s.Poses()
	if err != nil {
		return err
	}
	return s.run(ctx, poses, in, out)
}

// ApplyReverse undoes Apply: it maps skinned attributes back to bind space.
func (s *Skin[W]) ApplyReverse(ctx context.Context, in, out Streams) error {
	poses, err := s.Poses()
	if err != nil {
		return err
	}
	for i, p := range poses {
		poses[i] = p.Inverse()
	}
	return s.run(ctx, poses, in, out)
}

func (s *Skin[W]) check(poses []math.Mat4, in, out Streams) error {
	n := len(s.Weights)
	for _, l := range [][2]int{
		{len(in.Points), len(out.Points)},
		{len(in.Normals), len(out.Normals)},
		{len(in.Tangents), len(out.Tangents)},
	} {
		if l[0] == 0 || l[1] == 0 {
			continue
		}
		if l[0] != n || l[1] != n {
			return fmt.Errorf("stream of %d/%d for %d bindings: %w", l[0], l[1], n, ErrLengthMismatch)
		}
	}
	for vi, w := range s.Weights {
		for i := range w.Len() {
			if bone, _ := w.At(i); bone < 0 || bone >= len(poses) {
				return fmt.Errorf("vertex %d influence %d bone %d of %d: %w", vi, i, bone, len(poses), ErrBoneIndex)
			}
		}
	}
	return nil
}

// run evaluates the three streams concurrently. Each stream is written by
// one goroutine.
func (s *Skin[W]) run(ctx context.Context, poses []math.Mat4, in, out Streams) error {
	if err := s.check(poses, in, out); err != nil {
		return err
	}
	return parallel.Invoke(ctx,
		func(context.Context) error {
			if len(in.Points) == 0 || len(out.Points) == 0 {
				return nil
			}
			for vi, w := range s.Weights {
				var r math.Vec3
				for i := range w.Len() {
					bone, weight := w.At(i)
					r = r.Add(poses[bone].TransformPoint(in.Points[vi]).Scale(weight))
				}
				out.Points[vi] = r
			}
			return nil
		},
		func(context.Context) error {
			if len(in.Normals) == 0 || len(out.Normals) == 0 {
				return nil
			}
			for vi, w := range s.Weights {
				var r math.Vec3
				for i := range w.Len() {
					bone, weight := w.At(i)
					r = r.Add(poses[bone].TransformDirection(in.Normals[vi]).Scale(weight))
				}
				out.Normals[vi] = r.Normalize()
			}
			return nil
		},
		func(context.Context) error {
			if len(in.Tangents) == 0 || len(out.Tangents) == 0 {
				return nil
			}
			for vi, w := range s.Weights {
				var r math.Vec3
				for i := range w.Len() {
					bone, weight := w.At(i)
					r = r.Add(poses[bone].TransformTangent(in.Tangents[vi]).XYZ().Scale(weight))
				}
				out.Tangents[vi] = math.Vec4{r.X, r.Y, r.Z, in.Tangents[vi][3]}
			}
			return nil
		},
	)
}
