package rainfall

// Model represents a singular visual instantiation of a Mesh. A Mesh contains the vertex information (what to draw);
// a Model references the Mesh to draw it with a specific Position, Rotation, and/or Scale (where and how to draw).
type Model struct {
	*Node
	Mesh *Mesh
}

// NewModel creates a new Model (or instance) of the Mesh and Name provided.
func NewModel(mesh *Mesh, name string) *Model {
	return &Model{
		Node: NewNode(name),
		Mesh: mesh,
	}
}

// SetEnvironmentMap attaches the environment map given to every Material used by the Model's Mesh, with the intensity provided.
func (model *Model) SetEnvironmentMap(env *EnvironmentMap, intensity float32) {
	if model.Mesh == nil {
		return
	}
	for _, part := range model.Mesh.Parts {
		part.Material.EnvMap = env
		part.Material.EnvMapIntensity = intensity
	}
}
