package rainfall

// FitResult describes how FitModel placed a model.
type FitResult struct {
	Bounds         BoundingAABB // World-space bounds of the model before fitting
	Scale          float32      // Uniform scale applied to the model
	MaxDimension   float32      // Largest dimension of the model after scaling
	CameraDistance float32      // Distance from the origin the camera was placed at along +Z
}

// FitModel centers the model hierarchy given on the world origin, and shrinks it uniformly so that its largest
// dimension is at most maxSize (models that already fit are left at their original scale). Every Model in the
// hierarchy reflects env (if it's not nil) with the intensity given. Finally, the camera (if it's not nil) is placed
// on +Z at distanceFactor times the fitted size, looking at the origin.
func FitModel(model INode, maxSize float32, env *EnvironmentMap, intensity float32, camera *Camera, distanceFactor float32) FitResult {

	base := model.base()

	box := NewAABBFromNode(model)

	result := FitResult{Bounds: box, Scale: 1}

	if box.IsEmpty() {
		return result
	}

	size := box.Size()
	maxDim := size.MaxComponent()

	if maxDim > maxSize {
		result.Scale = maxSize / maxDim
	}

	// The bounds were measured with the model's existing transform, so the new transform composes on top of it.
	scale := base.LocalScale()
	base.SetLocalScale(scale.X*result.Scale, scale.Y*result.Scale, scale.Z*result.Scale)
	base.SetLocalPositionVec(base.LocalPosition().Sub(box.Center()).Scale(result.Scale))

	result.MaxDimension = maxDim * result.Scale

	for _, m := range Models(model) {
		if !m.WorldVisible() || env == nil {
			continue
		}
		m.SetEnvironmentMap(env, intensity)
	}

	if camera != nil {
		result.CameraDistance = result.MaxDimension * distanceFactor
		camera.SetLocalPosition(0, 0, result.CameraDistance)
		camera.LookAt(Vector3{})
	}

	return result

}
