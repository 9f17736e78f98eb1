package rainfall

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/rainfall/math32"
)

// Camera represents a perspective camera (where you look from). Like other Nodes, it has a position and rotation;
// it looks down its local -Z axis.
type Camera struct {
	*Node

	fieldOfView float32 // Vertical field of view, in degrees
	aspectRatio float32
	near, far   float32

	width, height int     // Logical size of the view, in pixels
	pixelRatio    float32 // Physical pixels per logical pixel

	colorTexture *ebiten.Image
}

// NewCamera creates a new Camera with a logical view size of w by h, a vertical field of view of 75 degrees, and
// near and far clipping planes of 0.1 and 1000.
func NewCamera(w, h int) *Camera {

	cam := &Camera{
		Node:        NewNode("Camera"),
		fieldOfView: 75,
		near:        0.1,
		far:         1000,
		pixelRatio:  1,
	}

	cam.Resize(w, h, 1)

	return cam

}

// Resize sets the logical size of the Camera's view, along with the pixel ratio (physical pixels per logical pixel).
// The aspect ratio is updated to match, and the color texture is reallocated at the physical size on next use.
func (camera *Camera) Resize(w, h int, pixelRatio float32) {

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}

	camera.width = w
	camera.height = h
	camera.pixelRatio = pixelRatio
	camera.aspectRatio = float32(w) / float32(h)

	if camera.colorTexture != nil {
		tw, th := camera.TextureSize()
		if b := camera.colorTexture.Bounds(); b.Dx() != tw || b.Dy() != th {
			camera.colorTexture.Deallocate()
			camera.colorTexture = nil
		}
	}

}

// Size returns the logical width and height of the Camera's view.
func (camera *Camera) Size() (w, h int) {
	return camera.width, camera.height
}

// TextureSize returns the physical width and height of the Camera's color texture (the logical size times the pixel ratio).
func (camera *Camera) TextureSize() (w, h int) {
	w = int(math32.Floor(float32(camera.width)*camera.pixelRatio + 0.5))
	h = int(math32.Floor(float32(camera.height)*camera.pixelRatio + 0.5))
	return math32.Max(w, 1), math32.Max(h, 1)
}

// PixelRatio returns the Camera's pixel ratio.
func (camera *Camera) PixelRatio() float32 {
	return camera.pixelRatio
}

// AspectRatio returns the Camera's aspect ratio (width divided by height).
func (camera *Camera) AspectRatio() float32 {
	return camera.aspectRatio
}

// FieldOfView returns the vertical field of view in degrees.
func (camera *Camera) FieldOfView() float32 {
	return camera.fieldOfView
}

// SetFieldOfView sets the vertical field of view in degrees.
func (camera *Camera) SetFieldOfView(fovY float32) {
	camera.fieldOfView = fovY
}

// Near returns the near clipping plane.
func (camera *Camera) Near() float32 {
	return camera.near
}

// Far returns the far clipping plane.
func (camera *Camera) Far() float32 {
	return camera.far
}

// SetClipPlanes sets the near and far clipping planes.
func (camera *Camera) SetClipPlanes(near, far float32) {
	camera.near = near
	camera.far = far
}

// Projection returns the Camera's perspective projection matrix.
func (camera *Camera) Projection() Matrix4 {
	return NewProjectionPerspective(camera.fieldOfView, camera.aspectRatio, camera.near, camera.far)
}

// ViewMatrix returns the Camera's view matrix (the inverse of its world transform).
func (camera *Camera) ViewMatrix() Matrix4 {
	if camera.parent != nil {
		return camera.Transform().Inverted()
	}
	return NewMatrix4Translate(-camera.position.X, -camera.position.Y, -camera.position.Z).Mult(camera.rotation.Transposed())
}

// ViewProjection returns the view matrix combined with the projection matrix; points multiplied by it land in clip space.
func (camera *Camera) ViewProjection() Matrix4 {
	return camera.ViewMatrix().Mult(camera.Projection())
}

// LookAt rotates the Camera so that it faces the target position given, with +Y as up.
func (camera *Camera) LookAt(target Vector3) {
	camera.SetLocalRotation(NewLookAtMatrix(camera.WorldPosition(), target, WorldUp))
}

// Depth returns the distance from the Camera to the point given along the Camera's view axis. Points in front
// of the Camera have a positive depth.
func (camera *Camera) Depth(point Vector3) float32 {
	return -camera.ViewMatrix().MultVec(point).Z
}

// WorldToScreen projects a world position into pixel coordinates on the Camera's color texture. ok is false if the
// point lies behind the Camera.
func (camera *Camera) WorldToScreen(point Vector3) (x, y float32, ok bool) {
	return camera.clipToScreen(camera.ViewProjection().MultVecW(point))
}

func (camera *Camera) clipToScreen(clip Vector4) (x, y float32, ok bool) {
	if clip.W <= 0 {
		return 0, 0, false
	}
	w, h := camera.TextureSize()
	x = (clip.X/clip.W*0.5 + 0.5) * float32(w)
	y = (0.5 - clip.Y/clip.W*0.5) * float32(h)
	return x, y, true
}

// ColorTexture returns the Camera's color render target, allocating it at the Camera's physical size if necessary.
func (camera *Camera) ColorTexture() *ebiten.Image {
	if camera.colorTexture == nil {
		w, h := camera.TextureSize()
		camera.colorTexture = ebiten.NewImage(w, h)
	}
	return camera.colorTexture
}
