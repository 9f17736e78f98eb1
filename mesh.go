package rainfall

// Vertex holds the per-vertex data the renderer uses: a position and a normal in the Mesh's local space, and a UV pair.
type Vertex struct {
	Position Vector3
	Normal   Vector3
	U, V     float32
}

// MeshPart represents a collection of triangles in a Mesh that share a Material.
type MeshPart struct {
	Mesh     *Mesh
	Material *Material
	Indices  []int // Every three indices forms one triangle
}

// TriangleCount returns the number of triangles in the MeshPart.
func (part *MeshPart) TriangleCount() int {
	return len(part.Indices) / 3
}

// Mesh represents a mesh that can be drawn through a Model. A Mesh contains the vertex information (what to draw);
// a Model references the Mesh to draw it at a specific position, rotation, and scale (where and how to draw).
type Mesh struct {
	Name     string
	Vertices []Vertex
	Parts    []*MeshPart
}

// NewMesh creates a new, empty Mesh with the name given.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertices appends the vertices given to the Mesh.
func (mesh *Mesh) AddVertices(verts ...Vertex) {
	mesh.Vertices = append(mesh.Vertices, verts...)
}

// AddMeshPart adds a new MeshPart using the Material and vertex indices given. The indices are offset by
// vertexOffset, so that parts loaded one primitive at a time can index into the shared vertex list.
func (mesh *Mesh) AddMeshPart(material *Material, vertexOffset int, indices ...int) *MeshPart {
	if material == nil {
		material = NewMaterial("default")
	}
	part := &MeshPart{
		Mesh:     mesh,
		Material: material,
		Indices:  make([]int, len(indices)),
	}
	for i, index := range indices {
		part.Indices[i] = index + vertexOffset
	}
	mesh.Parts = append(mesh.Parts, part)
	return part
}

// TriangleCount returns the total number of triangles across all of the Mesh's parts.
func (mesh *Mesh) TriangleCount() int {
	count := 0
	for _, part := range mesh.Parts {
		count += part.TriangleCount()
	}
	return count
}
