package rainfall

// Material describes how a MeshPart is shaded. The renderer lights surfaces with the Scene's ambient light and
// adds reflections sampled from an environment map.
type Material struct {
	Name  string
	Color Color // The overall (base) color of the Material.

	// Metalness and Roughness follow the glTF metallic-roughness model; they control how much of the
	// environment map is reflected.
	Metalness float32
	Roughness float32

	// EnvMap is the environment map reflected on surfaces using this Material. If nil, no reflections are drawn.
	EnvMap *EnvironmentMap
	// EnvMapIntensity scales the reflected environment color.
	EnvMapIntensity float32

	BackfaceCulling bool // If backface culling is enabled (which it is by default), faces turned away from the camera aren't rendered.
}

// NewMaterial creates a new Material with the name given.
func NewMaterial(name string) *Material {
	return &Material{
		Name:            name,
		Color:           NewColor(1, 1, 1, 1),
		Metalness:       0,
		Roughness:       1,
		EnvMapIntensity: 1,
		BackfaceCulling: true,
	}
}

// Reflectivity returns how much of the environment map a surface with this Material reflects, from 0 to 1.
// Dielectrics reflect a small, constant amount; metals reflect nearly everything; rough surfaces reflect less.
func (material *Material) Reflectivity() float32 {
	const dielectric = 0.04
	r := dielectric + (1-dielectric)*material.Metalness
	return r * (1 - material.Roughness*0.5)
}
