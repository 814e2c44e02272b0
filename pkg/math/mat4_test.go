package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint(Vec3{1, 1, 1})
	if !got.NearEqual(Vec3{12, 2, 2}, 1e-5) {
		t.Errorf("T*S applied to (1,1,1) = %v, want (12, 2, 2)", got)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformDirection(Vec3{0, 1, 0})
	if result != (Vec3{0, 1, 0}) {
		t.Errorf("TransformDirection: got %v, want (0, 1, 0)", result)
	}
}

func TestRotateAxisY90(t *testing.T) {
	m := RotateAxis(Vec3{0, 1, 0}, float32(math.Pi/2))
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if !result.NearEqual(Vec3{0, 0, -1}, 0.001) {
		t.Errorf("RotateAxis 90: got %v, want (0, 0, -1)", result)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	m := LookAt(Vec3{0, 0, 5}, Vec3{0, 0, 0}, Vec3{0, 1, 0})

	// The eye maps to the view-space origin.
	got := m.TransformPoint(Vec3{0, 0, 5})
	if !got.NearEqual(Vec3{}, 1e-5) {
		t.Errorf("LookAt eye -> %v, want origin", got)
	}
	// The target lies on -Z.
	got = m.TransformPoint(Vec3{0, 0, 0})
	if !got.NearEqual(Vec3{0, 0, -5}, 1e-5) {
		t.Errorf("LookAt center -> %v, want (0, 0, -5)", got)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateAxis(Vec3{0, 0, 1}, 0.7)).Mul(Scale(2, 3, 4))
	got := m.Mul(m.Inverse())
	if !got.NearEqual(Identity(), 1e-4) {
		t.Errorf("M * M^-1 = %v, want identity", got)
	}
}

func TestInverseSingular(t *testing.T) {
	if got := (Mat4{}).Inverse(); got != Identity() {
		t.Errorf("singular Inverse() = %v, want identity", got)
	}
}

func TestTransformTangentKeepsSign(t *testing.T) {
	m := RotateAxis(Vec3{0, 1, 0}, float32(math.Pi))
	got := m.TransformTangent(Vec4{1, 0, 0, -1})
	if got[3] != -1 {
		t.Errorf("tangent sign = %v, want -1", got[3])
	}
	if !got.XYZ().NearEqual(Vec3{-1, 0, 0}, 1e-5) {
		t.Errorf("tangent xyz = %v, want (-1, 0, 0)", got.XYZ())
	}
}
