package rainfall

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	_ "image/jpeg"
	_ "image/png"
)

// ErrNoScene is returned when a glTF document has no scene to instantiate.
var ErrNoScene = errors.New("gltf document has no scenes")

// ErrAttributeCount is returned when a primitive's vertex attributes don't all have the same number of elements.
var ErrAttributeCount = errors.New("gltf vertex attribute counts differ")

// LoadGLTFData loads a .gltf or .glb file from the byte data given and instantiates its default scene (or the first
// scene, if no default is set). The returned Node is the root of the loaded hierarchy; every glTF node with a mesh
// becomes a Model.
//
// Materials load their metallic-roughness factors. A base color texture isn't mapped onto the surface; instead, the
// Material's color is tinted by the texture's average color.
func LoadGLTFData(data []byte) (*Node, error) {

	decoder := gltf.NewDecoder(bytes.NewReader(data))

	doc := gltf.NewDocument()

	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding gltf: %w", err)
	}

	if len(doc.Scenes) == 0 {
		return nil, ErrNoScene
	}

	materials := make([]*Material, len(doc.Materials))

	for i, gltfMat := range doc.Materials {

		newMat := NewMaterial(gltfMat.Name)
		newMat.BackfaceCulling = !gltfMat.DoubleSided

		if pbr := gltfMat.PBRMetallicRoughness; pbr != nil {

			color := pbr.BaseColorFactorOrDefault()
			newMat.Color = NewColor(float32(color[0]), float32(color[1]), float32(color[2]), float32(color[3]))
			newMat.Metalness = float32(pbr.MetallicFactorOrDefault())
			newMat.Roughness = float32(pbr.RoughnessFactorOrDefault())

			if texture := pbr.BaseColorTexture; texture != nil {
				if tint, ok := averageTextureColor(doc, texture.Index); ok {
					newMat.Color.R *= tint.R
					newMat.Color.G *= tint.G
					newMat.Color.B *= tint.B
				}
			}

		}

		materials[i] = newMat

	}

	meshes := make([]*Mesh, len(doc.Meshes))

	for i, mesh := range doc.Meshes {
		newMesh, err := loadGLTFMesh(doc, mesh, materials)
		if err != nil {
			return nil, fmt.Errorf("loading mesh %q: %w", mesh.Name, err)
		}
		meshes[i] = newMesh
	}

	sceneIndex := 0
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		sceneIndex = *doc.Scene
	}

	gltfScene := doc.Scenes[sceneIndex]

	root := NewNode(gltfScene.Name)

	var instantiate func(index int, visited map[int]bool) (INode, error)

	instantiate = func(index int, visited map[int]bool) (INode, error) {

		if index < 0 || index >= len(doc.Nodes) {
			return nil, fmt.Errorf("node index %d out of range", index)
		}

		if visited[index] {
			return nil, fmt.Errorf("node %d is its own ancestor", index)
		}
		visited[index] = true
		defer delete(visited, index)

		node := doc.Nodes[index]

		var obj INode
		var base *Node

		if node.Mesh != nil && *node.Mesh < len(meshes) {
			model := NewModel(meshes[*node.Mesh], node.Name)
			obj, base = model, model.Node
		} else {
			n := NewNode(node.Name)
			obj, base = n, n
		}

		setGLTFNodeTransform(base, node)

		for _, childIndex := range node.Children {
			child, err := instantiate(childIndex, visited)
			if err != nil {
				return nil, err
			}
			obj.AddChildren(child)
		}

		return obj, nil

	}

	for _, nodeIndex := range gltfScene.Nodes {
		obj, err := instantiate(nodeIndex, map[int]bool{})
		if err != nil {
			return nil, err
		}
		root.AddChildren(obj)
	}

	return root, nil

}

func loadGLTFMesh(doc *gltf.Document, mesh *gltf.Mesh, materials []*Material) (*Mesh, error) {

	newMesh := NewMesh(mesh.Name)

	for _, v := range mesh.Primitives {

		if v.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posAccessor, exists := v.Attributes[gltf.POSITION]
		if !exists {
			continue
		}

		posAcc, err := accessor(doc, posAccessor)
		if err != nil {
			return nil, err
		}

		posBuffer := [][3]float32{}
		vertPos, err := modeler.ReadPosition(doc, posAcc, posBuffer)

		if err != nil {
			return nil, err
		}

		vertexData := make([]Vertex, len(vertPos))

		for i, p := range vertPos {
			vertexData[i].Position = Vector3{p[0], p[1], p[2]}
		}

		if normalAccessor, normalExists := v.Attributes[gltf.NORMAL]; normalExists {

			normalAcc, err := accessor(doc, normalAccessor)
			if err != nil {
				return nil, err
			}

			normalBuffer := [][3]float32{}

			normals, err := modeler.ReadNormal(doc, normalAcc, normalBuffer)

			if err != nil {
				return nil, err
			}

			if len(normals) != len(vertexData) {
				return nil, fmt.Errorf("%w: %d normals for %d positions", ErrAttributeCount, len(normals), len(vertexData))
			}

			for i, n := range normals {
				vertexData[i].Normal = Vector3{n[0], n[1], n[2]}
			}

		}

		if texCoordAccessor, texCoordExists := v.Attributes[gltf.TEXCOORD_0]; texCoordExists {

			uvAcc, err := accessor(doc, texCoordAccessor)
			if err != nil {
				return nil, err
			}

			uvBuffer := [][2]float32{}

			texCoords, err := modeler.ReadTextureCoord(doc, uvAcc, uvBuffer)

			if err != nil {
				return nil, err
			}

			if len(texCoords) != len(vertexData) {
				return nil, fmt.Errorf("%w: %d texture coordinates for %d positions", ErrAttributeCount, len(texCoords), len(vertexData))
			}

			for i, uv := range texCoords {
				vertexData[i].U = uv[0]
				vertexData[i].V = -(uv[1] - 1)
			}

		}

		var indices []int

		if v.Indices != nil {

			indexAcc, err := accessor(doc, *v.Indices)
			if err != nil {
				return nil, err
			}

			indexBuffer := []uint32{}

			read, err := modeler.ReadIndices(doc, indexAcc, indexBuffer)

			if err != nil {
				return nil, err
			}

			indices = make([]int, len(read))
			for i, j := range read {
				if int(j) >= len(vertexData) {
					return nil, fmt.Errorf("index %d out of range of %d vertices", j, len(vertexData))
				}
				indices[i] = int(j)
			}

		} else {

			indices = make([]int, len(vertexData))
			for i := range indices {
				indices[i] = i
			}

		}

		indices = indices[:len(indices)-len(indices)%3]

		if _, normalExists := v.Attributes[gltf.NORMAL]; !normalExists {
			flatNormals(vertexData, indices)
		}

		var mat *Material

		if v.Material != nil && *v.Material < len(materials) {
			mat = materials[*v.Material]
		}

		offset := len(newMesh.Vertices)
		newMesh.AddVertices(vertexData...)
		newMesh.AddMeshPart(mat, offset, indices...)

	}

	return newMesh, nil

}

func accessor(doc *gltf.Document, index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range of %d accessors", index, len(doc.Accessors))
	}
	return doc.Accessors[index], nil
}

// flatNormals assigns each vertex the (unweighted) sum of the face normals of the triangles that use it.
func flatNormals(vertices []Vertex, indices []int) {
	for i := 0; i < len(indices); i += 3 {
		a, b, c := &vertices[indices[i]], &vertices[indices[i+1]], &vertices[indices[i+2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position)).Unit()
		a.Normal = a.Normal.Add(n)
		b.Normal = b.Normal.Add(n)
		c.Normal = c.Normal.Add(n)
	}
	for i := range vertices {
		vertices[i].Normal = vertices[i].Normal.Unit()
	}
}

func setGLTFNodeTransform(obj *Node, node *gltf.Node) {

	mtData := node.MatrixOrDefault()

	var matrix Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			matrix[row][col] = float32(mtData[row*4+col])
		}
	}

	if !matrix.IsIdentity() {

		p, s, r := matrix.Decompose()

		obj.SetLocalPositionVec(p)
		obj.SetLocalScale(s.X, s.Y, s.Z)
		obj.SetLocalRotation(r)

		return

	}

	t := node.TranslationOrDefault()
	s := node.ScaleOrDefault()
	r := node.RotationOrDefault()

	obj.SetLocalPosition(float32(t[0]), float32(t[1]), float32(t[2]))
	obj.SetLocalScale(float32(s[0]), float32(s[1]), float32(s[2]))
	obj.SetLocalRotation(NewMatrix4FromQuaternion(float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])))

}

// averageTextureColor decodes the embedded image a texture points to and returns its mean color, in linear space.
// Only images stored in buffer views (as in .glb files) are supported.
func averageTextureColor(doc *gltf.Document, textureIndex int) (Color, bool) {

	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return Color{}, false
	}

	source := doc.Textures[textureIndex].Source
	if source == nil || *source >= len(doc.Images) {
		return Color{}, false
	}

	gltfImage := doc.Images[*source]
	if gltfImage.BufferView == nil {
		return Color{}, false
	}

	imageData, err := modeler.ReadBufferView(doc, doc.BufferViews[*gltfImage.BufferView])
	if err != nil {
		return Color{}, false
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return Color{}, false
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return Color{}, false
	}

	// Sample on a coarse grid; large textures don't need every texel read for an average.
	step := max(1, max(bounds.Dx(), bounds.Dy())/64)

	var sum Color
	count := float32(0)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			sum.R += sRGBToLinear(float32(r) / 0xffff)
			sum.G += sRGBToLinear(float32(g) / 0xffff)
			sum.B += sRGBToLinear(float32(b) / 0xffff)
			count++
		}
	}

	return NewColor(sum.R/count, sum.G/count, sum.B/count, 1), true

}
