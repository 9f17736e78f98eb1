package rainfall

import (
	"testing"

	"github.com/solarlune/rainfall/math32"
	"github.com/stretchr/testify/assert"
)

func TestCameraDefaults(t *testing.T) {

	camera := NewCamera(1280, 720)

	assert.Equal(t, float32(75), camera.FieldOfView())
	assert.Equal(t, float32(0.1), camera.Near())
	assert.Equal(t, float32(1000), camera.Far())
	assert.InDelta(t, 16.0/9.0, camera.AspectRatio(), 1e-6)

}

func TestCameraResize(t *testing.T) {

	camera := NewCamera(800, 600)
	camera.Resize(1600, 900, 2)

	assert.InDelta(t, 16.0/9.0, camera.AspectRatio(), 1e-6)

	w, h := camera.Size()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 900, h)

	w, h = camera.TextureSize()
	assert.Equal(t, 3200, w)
	assert.Equal(t, 1800, h)

	// Degenerate sizes are clamped rather than producing an infinite aspect ratio.
	camera.Resize(0, 0, 0)
	assert.Equal(t, float32(1), camera.AspectRatio())
	assert.Equal(t, float32(1), camera.PixelRatio())

}

func TestCameraProjection(t *testing.T) {

	camera := NewCamera(800, 600)
	camera.SetLocalPosition(0, 0, 5)
	camera.LookAt(Vector3{})

	x, y, ok := camera.WorldToScreen(Vector3{})
	assert.True(t, ok)
	assert.InDelta(t, 400, x, 1e-3)
	assert.InDelta(t, 300, y, 1e-3)

	// Up in the world is up on screen (a smaller Y coordinate).
	_, y, ok = camera.WorldToScreen(Vector3{0, 1, 0})
	assert.True(t, ok)
	assert.Less(t, y, float32(300))

	_, _, ok = camera.WorldToScreen(Vector3{0, 0, 10})
	assert.False(t, ok, "points behind the camera don't project")

	assert.InDelta(t, 5, camera.Depth(Vector3{}), 1e-5)

	camera.Move(0, 0, -0.3)
	assert.InDelta(t, 4.7, camera.Depth(Vector3{}), 1e-5)

}

func TestCameraViewMatrixWithParent(t *testing.T) {

	rig := NewNode("rig")
	rig.SetLocalPosition(1, 2, 3)

	camera := NewCamera(800, 600)
	camera.SetLocalPosition(0, 0, 2)
	rig.AddChildren(camera)

	assert.True(t, camera.ViewMatrix().MultVec(camera.WorldPosition()).Equals(Vector3{}))
	assert.InDelta(t, 5, camera.Depth(Vector3{1, 2, 0}), 1e-5)

	// Turning the rig turns the camera with it.
	rig.SetLocalRotation(NewMatrix4Rotate(0, 1, 0, math32.Pi/2))
	ahead := camera.WorldPosition().Add(camera.Transform().Forward().Invert().Unit().Scale(4))
	assert.InDelta(t, 4, camera.Depth(ahead), 1e-4)

}
