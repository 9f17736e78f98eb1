package rainfall

import "github.com/solarlune/rainfall/math32"

// BoundingAABB represents an axis-aligned bounding box in world space.
type BoundingAABB struct {
	Min, Max Vector3
}

// Center returns the center point of the AABB.
func (box BoundingAABB) Center() Vector3 {
	return box.Min.Add(box.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB on each axis.
func (box BoundingAABB) Size() Vector3 {
	return box.Max.Sub(box.Min)
}

// IsEmpty returns true if the AABB encloses nothing (its minimum exceeds its maximum on any axis).
func (box BoundingAABB) IsEmpty() bool {
	return box.Max.X < box.Min.X || box.Max.Y < box.Min.Y || box.Max.Z < box.Min.Z
}

// NewEmptyAABB returns an AABB that encloses nothing; expanding it by a point results in a zero-size box at that point.
func NewEmptyAABB() BoundingAABB {
	return BoundingAABB{
		Min: Vector3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: Vector3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// ExpandByPoint returns a copy of the AABB grown to contain the point given.
func (box BoundingAABB) ExpandByPoint(point Vector3) BoundingAABB {
	box.Min, box.Max = expandBounds(box.Min, box.Max, point)
	return box
}

func expandBounds(min, max, point Vector3) (Vector3, Vector3) {
	min.X = math32.Min(min.X, point.X)
	min.Y = math32.Min(min.Y, point.Y)
	min.Z = math32.Min(min.Z, point.Z)
	max.X = math32.Max(max.X, point.X)
	max.Y = math32.Max(max.Y, point.Y)
	max.Z = math32.Max(max.Z, point.Z)
	return min, max
}

// NewAABBFromNode computes the world-space AABB enclosing every vertex of every visible Model under root (including root itself).
// If there are no vertices, the returned AABB is empty.
func NewAABBFromNode(root INode) BoundingAABB {

	box := NewEmptyAABB()

	Walk(root, func(node INode) bool {

		if !node.Visible() {
			return false
		}

		model, ok := node.(*Model)
		if !ok || model.Mesh == nil {
			return true
		}

		transform := model.Transform()
		for _, v := range model.Mesh.Vertices {
			box = box.ExpandByPoint(transform.MultVec(v.Position))
		}

		return true

	})

	return box

}
