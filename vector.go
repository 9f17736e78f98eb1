package rainfall

import (
	"strconv"

	"github.com/solarlune/rainfall/math32"
)

// WorldRight, WorldUp and WorldBackward are unit vectors along the global axes of the right-handed
// coordinate system the renderer uses (+X right, +Y up, +Z towards the viewer).
var (
	WorldRight    = Vector3{X: 1}
	WorldUp       = Vector3{Y: 1}
	WorldBackward = Vector3{Z: 1}
)

// Vector3 represents a 3D Vector, used for positions, directions, and sizes.
// Any Vector3 functions that modify the calling Vector3 return copies of the modified Vector3, meaning you can do method-chaining easily.
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

// NewVector3 creates a new Vector3 with the specified x, y, and z components.
func NewVector3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns a copy of the calling vector, added together with the other Vector3 provided.
func (vec Vector3) Add(other Vector3) Vector3 {
	vec.X += other.X
	vec.Y += other.Y
	vec.Z += other.Z
	return vec
}

// Sub returns a copy of the calling Vector3, with the other Vector3 subtracted from it.
func (vec Vector3) Sub(other Vector3) Vector3 {
	vec.X -= other.X
	vec.Y -= other.Y
	vec.Z -= other.Z
	return vec
}

// Scale returns a copy of the Vector3 with each component multiplied by the scalar given.
func (vec Vector3) Scale(scalar float32) Vector3 {
	vec.X *= scalar
	vec.Y *= scalar
	vec.Z *= scalar
	return vec
}

// Cross returns a new Vector3, indicating the cross product of the calling Vector3 and the provided Other Vector3.
func (vec Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: vec.Y*other.Z - other.Y*vec.Z,
		Y: vec.Z*other.X - other.Z*vec.X,
		Z: vec.X*other.Y - other.X*vec.Y,
	}
}

// Dot returns the dot product of the calling Vector3 and the other Vector3.
func (vec Vector3) Dot(other Vector3) float32 {
	return vec.X*other.X + vec.Y*other.Y + vec.Z*other.Z
}

// Invert returns a copy of the Vector3 pointing in the opposite direction.
func (vec Vector3) Invert() Vector3 {
	vec.X = -vec.X
	vec.Y = -vec.Y
	vec.Z = -vec.Z
	return vec
}

// Magnitude returns the length of the Vector3.
func (vec Vector3) Magnitude() float32 {
	return math32.Sqrt(vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z)
}

// MagnitudeSquared returns the squared length of the Vector3; this is faster than Magnitude() as it avoids a square root.
func (vec Vector3) MagnitudeSquared() float32 {
	return vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z
}

// Distance returns the distance between the calling Vector3 and the other one.
func (vec Vector3) Distance(other Vector3) float32 {
	return vec.Sub(other).Magnitude()
}

// Unit returns a copy of the Vector3, normalized (set to be of unit length).
// A zero-length Vector3 is returned unchanged.
func (vec Vector3) Unit() Vector3 {
	l := vec.Magnitude()
	if l < 1e-8 {
		return vec
	}
	vec.X, vec.Y, vec.Z = vec.X/l, vec.Y/l, vec.Z/l
	return vec
}

// Reflect returns the Vector3 reflected about the provided (unit-length) normal.
func (vec Vector3) Reflect(normal Vector3) Vector3 {
	return vec.Sub(normal.Scale(2 * vec.Dot(normal)))
}

// MaxComponent returns the largest of the X, Y, and Z components.
func (vec Vector3) MaxComponent() float32 {
	return math32.Max(vec.X, math32.Max(vec.Y, vec.Z))
}

// Equals returns true if the two Vector3s are close enough in all values (within 1e-5).
func (vec Vector3) Equals(other Vector3) bool {
	eps := float32(1e-5)
	return math32.Abs(vec.X-other.X) <= eps &&
		math32.Abs(vec.Y-other.Y) <= eps &&
		math32.Abs(vec.Z-other.Z) <= eps
}

// IsZero returns true if all components of the Vector3 are zero.
func (vec Vector3) IsZero() bool {
	return vec.X == 0 && vec.Y == 0 && vec.Z == 0
}

func (vec Vector3) String() string {
	return "{" + strconv.FormatFloat(float64(vec.X), 'f', -1, 32) + ", " +
		strconv.FormatFloat(float64(vec.Y), 'f', -1, 32) + ", " +
		strconv.FormatFloat(float64(vec.Z), 'f', -1, 32) + "}"
}

// Vector4 represents a 4D vector; the renderer uses it for homogeneous clip-space coordinates.
type Vector4 struct {
	X, Y, Z, W float32
}
