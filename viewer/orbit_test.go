package viewer

import (
	"testing"

	"github.com/solarlune/rainfall"
	"github.com/solarlune/rainfall/math32"
	"github.com/stretchr/testify/assert"
)

func newTestControls(damping float32) (*OrbitControls, *rainfall.Camera) {
	camera := rainfall.NewCamera(800, 600)
	camera.SetLocalPosition(0, 0, 5)
	controls := NewOrbitControls(camera, damping)
	controls.Sync(rainfall.Vector3{})
	return controls, camera
}

func azimuth(camera *rainfall.Camera) float32 {
	pos := camera.LocalPosition()
	return math32.Atan2(pos.X, pos.Z)
}

func TestOrbitRotateWithoutDamping(t *testing.T) {

	controls, camera := newTestControls(0)

	// Dragging a quarter of the view's height turns the camera a quarter circle.
	controls.Rotate(-150, 0, 600)
	assert.True(t, controls.Update())

	assert.InDelta(t, math32.Pi/2, azimuth(camera), 1e-4)
	assert.InDelta(t, 5, camera.LocalPosition().Magnitude(), 1e-4)

	assert.False(t, controls.Update(), "nothing is left to apply")

}

func TestOrbitDampingConverges(t *testing.T) {

	controls, camera := newTestControls(0.05)

	controls.Rotate(-150, 0, 600)

	controls.Update()
	first := azimuth(camera)
	assert.InDelta(t, math32.Pi/2*0.05, first, 1e-4, "damping applies a fraction of the motion per tick")

	for i := 0; i < 500; i++ {
		controls.Update()
	}

	assert.InDelta(t, math32.Pi/2, azimuth(camera), 1e-3)
	assert.InDelta(t, 5, camera.LocalPosition().Magnitude(), 1e-3)

}

func TestOrbitPolarAngleIsClamped(t *testing.T) {

	controls, camera := newTestControls(0)

	controls.Rotate(0, 10000, 600)
	controls.Update()

	pos := camera.LocalPosition()
	assert.Greater(t, pos.Y, float32(4.9))
	assert.Less(t, pos.Y, float32(5))
	assert.False(t, math32.IsNaN(pos.X))

}

func TestOrbitDolly(t *testing.T) {

	controls, camera := newTestControls(0)

	controls.Dolly(1)
	controls.Update()
	assert.InDelta(t, 5*0.95, camera.LocalPosition().Z, 1e-4)

	controls.Dolly(-1)
	controls.Update()
	assert.InDelta(t, 5, camera.LocalPosition().Z, 1e-4)

}

func TestOrbitPan(t *testing.T) {

	controls, camera := newTestControls(0)

	// Dragging right moves the target (and camera) left.
	controls.Pan(100, 0, 600)
	controls.Update()

	assert.Less(t, controls.Target.X, float32(0))
	assert.InDelta(t, controls.Target.X, camera.LocalPosition().X, 1e-4)
	assert.InDelta(t, 5, camera.LocalPosition().Z, 1e-4)

}

func TestOrbitHandleMouse(t *testing.T) {

	controls, camera := newTestControls(0)

	// The first tick of a drag only records where it started.
	controls.HandleMouse(MouseState{X: 400, Y: 300, Left: true}, 600)
	controls.Update()
	assert.InDelta(t, 0, azimuth(camera), 1e-4)

	controls.HandleMouse(MouseState{X: 250, Y: 300, Left: true}, 600)
	controls.Update()
	assert.InDelta(t, math32.Pi/2, azimuth(camera), 1e-4)

	// Releasing and pressing elsewhere doesn't jump.
	controls.HandleMouse(MouseState{X: 250, Y: 300}, 600)
	controls.HandleMouse(MouseState{X: 0, Y: 0, Left: true}, 600)
	controls.Update()
	assert.InDelta(t, math32.Pi/2, azimuth(camera), 1e-4)

	controls.HandleMouse(MouseState{WheelY: 1}, 600)
	controls.Update()
	assert.InDelta(t, 5*0.95, camera.LocalPosition().Magnitude(), 1e-4)

}

func TestOrbitSync(t *testing.T) {

	controls, camera := newTestControls(0.05)

	controls.Rotate(300, 0, 600)
	camera.SetLocalPosition(0, 0, 9)
	controls.Sync(rainfall.Vector3{})

	pos := camera.LocalPosition()
	assert.InDelta(t, 0, pos.X, 1e-4)
	assert.InDelta(t, 9, pos.Z, 1e-4)

	assert.False(t, controls.Update(), "queued motion was discarded")

}
