package rainfall

// Scene is the root of everything the Renderer draws: a root Node carrying the Scene's rotation, the loaded model (if
// any), the rain, the environment map used as the background and for reflections, and an ambient light.
type Scene struct {
	Name string
	Root *Node

	// Environment is drawn behind everything and reflected by Materials that reference it. If it's nil,
	// the background is cleared to BackgroundColor instead.
	Environment     *EnvironmentMap
	BackgroundColor Color

	AmbientColor  Color
	AmbientEnergy float32

	Rain  *RainField
	Model INode

	rotation Vector3
}

// NewScene creates a new, empty Scene with the name given, lit by a white ambient light with an energy of 1.
func NewScene(name string) *Scene {
	return &Scene{
		Name:            name,
		Root:            NewNode("root"),
		BackgroundColor: NewColor(0, 0, 0, 1),
		AmbientColor:    NewColor(1, 1, 1, 1),
		AmbientEnergy:   1,
	}
}

// Rotation returns the Euler rotation (in radians) applied to the Scene's root.
func (scene *Scene) Rotation() Vector3 {
	return scene.rotation
}

// SetRotation sets the Euler rotation (in radians, applied in X, Y, Z order) of the Scene's root. The rotation
// is unbounded; it isn't wrapped.
func (scene *Scene) SetRotation(rotation Vector3) {
	scene.rotation = rotation
	scene.Root.SetLocalRotation(NewMatrix4RotateFromEuler(rotation))
}

// Rotate adds the given Euler angles to the Scene's rotation.
func (scene *Scene) Rotate(x, y, z float32) {
	scene.SetRotation(scene.rotation.Add(Vector3{x, y, z}))
}

// SetEnvironment sets the environment map used as the Scene's background and reflection source.
func (scene *Scene) SetEnvironment(env *EnvironmentMap) {
	scene.Environment = env
}

// SetRain adds the RainField to the Scene, replacing any previous one.
func (scene *Scene) SetRain(rain *RainField) {
	if scene.Rain != nil {
		scene.Root.RemoveChildren(scene.Rain.Node)
	}
	scene.Rain = rain
	if rain != nil {
		scene.Root.AddChildren(rain.Node)
	}
}

// AddModel adds the loaded model hierarchy to the Scene, replacing any previous one.
func (scene *Scene) AddModel(model INode) {
	if scene.Model != nil {
		scene.Root.RemoveChildren(scene.Model)
	}
	scene.Model = model
	if model != nil {
		scene.Root.AddChildren(model)
	}
}

// Models returns every Model currently in the Scene.
func (scene *Scene) Models() []*Model {
	return Models(scene.Root)
}
