package viewer

import (
	"github.com/solarlune/rainfall"
	"github.com/solarlune/rainfall/math32"
)

// minPolarAngle keeps the camera from looking straight up or down, where the look-at basis degenerates.
const minPolarAngle = 0.01

// MouseState is a snapshot of the mouse for a single tick.
type MouseState struct {
	X, Y        int
	Left, Right bool
	WheelY      float64 // Positive when scrolling away from the user
}

// OrbitControls orbits a Camera around a target point. Left-dragging rotates, right-dragging pans in screen space,
// and the mouse wheel dollies towards or away from the target. Changes are eased in over several ticks when
// DampingFactor is above 0.
type OrbitControls struct {
	Camera *rainfall.Camera
	Target rainfall.Vector3

	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	MinDistance   float32
	MaxDistance   float32

	thetaDelta float32
	phiDelta   float32
	panOffset  rainfall.Vector3
	scale      float32

	lastX, lastY int
	dragging     bool
}

// NewOrbitControls creates OrbitControls for the Camera given, orbiting the world origin.
func NewOrbitControls(camera *rainfall.Camera, dampingFactor float32) *OrbitControls {
	return &OrbitControls{
		Camera:        camera,
		DampingFactor: dampingFactor,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MinDistance:   0.001,
		MaxDistance:   math32.MaxFloat32,
		scale:         1,
	}
}

// Rotate queues a rotation for a drag of dx, dy pixels on a view viewHeight pixels tall; dragging the full height
// of the view turns the camera a full circle.
func (oc *OrbitControls) Rotate(dx, dy float32, viewHeight int) {
	h := float32(max(viewHeight, 1))
	oc.thetaDelta -= 2 * math32.Pi * dx / h * oc.RotateSpeed
	oc.phiDelta -= 2 * math32.Pi * dy / h * oc.RotateSpeed
}

// Pan queues a screen-space pan for a drag of dx, dy pixels on a view viewHeight pixels tall, so that the point under
// the cursor at the target's depth follows the cursor.
func (oc *OrbitControls) Pan(dx, dy float32, viewHeight int) {

	h := float32(max(viewHeight, 1))

	distance := oc.Camera.WorldPosition().Sub(oc.Target).Magnitude()
	distance *= math32.Tan(math32.ToRadians(oc.Camera.FieldOfView() / 2))

	rotation := oc.Camera.LocalRotation()

	oc.panOffset = oc.panOffset.
		Add(rotation.Right().Scale(-2 * dx * distance / h)).
		Add(rotation.Up().Scale(2 * dy * distance / h))

}

// Dolly queues a move towards (positive steps) or away from (negative steps) the target.
func (oc *OrbitControls) Dolly(steps float32) {
	oc.scale *= math32.Pow(0.95, oc.ZoomSpeed*steps)
}

// HandleMouse turns the mouse state into rotations, pans and dollies. viewHeight is the height of the view in the
// same units as the mouse position.
func (oc *OrbitControls) HandleMouse(state MouseState, viewHeight int) {

	if state.Left || state.Right {
		if oc.dragging {
			dx := float32(state.X - oc.lastX)
			dy := float32(state.Y - oc.lastY)
			if state.Left {
				oc.Rotate(dx, dy, viewHeight)
			} else {
				oc.Pan(dx, dy, viewHeight)
			}
		}
		oc.dragging = true
		oc.lastX, oc.lastY = state.X, state.Y
	} else {
		oc.dragging = false
	}

	if state.WheelY != 0 {
		oc.Dolly(float32(state.WheelY))
	}

}

// Update moves the Camera by the queued rotation, pan and dolly and points it at the target. It returns true if the
// Camera moved.
func (oc *OrbitControls) Update() bool {

	position := oc.Camera.LocalPosition()
	offset := position.Sub(oc.Target)

	radius := offset.Magnitude()
	theta := math32.Atan2(offset.X, offset.Z)
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(math32.Clamp(offset.Y/radius, -1, 1))
	}

	amount := float32(1)
	if oc.DampingFactor > 0 {
		amount = oc.DampingFactor
	}

	theta += oc.thetaDelta * amount
	phi += oc.phiDelta * amount
	phi = math32.Clamp(phi, minPolarAngle, math32.Pi-minPolarAngle)

	radius = math32.Clamp(radius*oc.scale, oc.MinDistance, oc.MaxDistance)

	oc.Target = oc.Target.Add(oc.panOffset.Scale(amount))

	sinPhi := math32.Sin(phi)
	offset = rainfall.Vector3{
		X: radius * sinPhi * math32.Sin(theta),
		Y: radius * math32.Cos(phi),
		Z: radius * sinPhi * math32.Cos(theta),
	}

	oc.Camera.SetLocalPositionVec(oc.Target.Add(offset))
	oc.Camera.LookAt(oc.Target)

	if oc.DampingFactor > 0 {
		oc.thetaDelta *= 1 - oc.DampingFactor
		oc.phiDelta *= 1 - oc.DampingFactor
		oc.panOffset = oc.panOffset.Scale(1 - oc.DampingFactor)
	} else {
		oc.thetaDelta, oc.phiDelta = 0, 0
		oc.panOffset = rainfall.Vector3{}
	}

	oc.scale = 1

	return !oc.Camera.LocalPosition().Equals(position)

}

// Sync discards any queued motion and re-aims the Camera at target from wherever it currently is. Call this after
// moving the Camera directly.
func (oc *OrbitControls) Sync(target rainfall.Vector3) {
	oc.Target = target
	oc.thetaDelta, oc.phiDelta = 0, 0
	oc.panOffset = rainfall.Vector3{}
	oc.scale = 1
	oc.Update()
}
