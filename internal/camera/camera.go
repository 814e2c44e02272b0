// Package camera provides the orbit camera used to drive screen-space
// selection and picking.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/normalpainter/pkg/editor"
	"github.com/Faultbox/normalpainter/pkg/math"
	"github.com/Faultbox/normalpainter/pkg/raycast"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Projection
	FovY      float32 // Vertical field of view, radians
	Near, Far float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        10,
		Pitch:           0.5,
		FovY:            45 * math.Deg2Rad,
		Near:            0.01,
		Far:             1000,
		MinDistance:     0.1,
		MaxDistance:     1000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := math32.Cos(c.Pitch)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cp * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: c.Distance * cp * math32.Cos(c.Yaw),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// Projection returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProj returns projection * view.
func (c *OrbitCamera) ViewProj(aspect float32) math.Mat4 {
	return c.Projection(aspect).Mul(c.ViewMatrix())
}

// View returns the selection view of a model placed by modelToWorld.
func (c *OrbitCamera) View(aspect float32, modelToWorld math.Mat4, frontfaceOnly bool) editor.View {
	if modelToWorld == (math.Mat4{}) {
		modelToWorld = math.Identity()
	}
	return editor.View{
		MVP:           c.ViewProj(aspect).Mul(modelToWorld),
		Camera:        c.Position(),
		FrontfaceOnly: frontfaceOnly,
	}
}

// Ray returns the world-space ray through pixel (x, y) of a w by h viewport.
func (c *OrbitCamera) Ray(x, y, w, h float32) raycast.Ray {
	return raycast.ScreenToRay(x, y, w, h, c.ViewProj(w/h).Inverse())
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = min(max(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// FitToBounds centers the camera on box and backs off until the bounding
// sphere fits the vertical field of view.
func (c *OrbitCamera) FitToBounds(box raycast.AABB) {
	c.Center = box.Min.Add(box.Max).Scale(0.5)
	radius := box.Max.Sub(box.Min).Length() / 2
	if radius == 0 {
		radius = 1
	}
	c.Distance = min(max(radius/math32.Sin(c.FovY/2), c.MinDistance), c.MaxDistance)
	c.Far = max(c.Far, c.Distance+radius*2)
}
