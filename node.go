package rainfall

// INode represents an object that exists in 3D space and can be positioned relative to an origin point.
// By default, this origin point is {0, 0, 0} (or world origin), but Nodes can be parented
// to other Nodes to change this origin (making their movements relative and their transforms
// successive). Models and Cameras fully implement the INode interface by means of embedding Node.
type INode interface {
	// Name returns the object's name.
	Name() string
	// Parent returns the Node's parent. If the Node has no parent, this will return nil.
	Parent() *Node
	// Children returns the Node's direct children.
	Children() []INode
	// AddChildren parents the provided children Nodes to the calling Node. Children that are already parented elsewhere are
	// unparented first.
	AddChildren(children ...INode)
	// RemoveChildren removes the provided children from this object.
	RemoveChildren(children ...INode)
	// Transform returns the Node's world transform.
	Transform() Matrix4
	// Visible returns whether the Node (and its children) should render.
	Visible() bool

	base() *Node
}

// Node is the basic transform-carrying element of the scene tree.
type Node struct {
	name     string
	position Vector3
	scale    Vector3
	rotation Matrix4
	visible  bool
	parent   *Node
	children []INode
}

// NewNode returns a new Node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		name:     name,
		scale:    Vector3{1, 1, 1},
		rotation: NewMatrix4(),
		visible:  true,
	}
}

func (node *Node) base() *Node { return node }

// Name returns the object's name.
func (node *Node) Name() string { return node.name }

// Parent returns the Node's parent. If the Node has no parent, this will return nil.
func (node *Node) Parent() *Node { return node.parent }

// Children returns the Node's direct children.
func (node *Node) Children() []INode { return node.children }

// AddChildren parents the provided children Nodes to the calling Node.
func (node *Node) AddChildren(children ...INode) {
	for _, child := range children {
		b := child.base()
		if b.parent != nil {
			b.parent.RemoveChildren(child)
		}
		b.parent = node
		node.children = append(node.children, child)
	}
}

// RemoveChildren removes the provided children from this object.
func (node *Node) RemoveChildren(children ...INode) {
	for _, child := range children {
		for i, c := range node.children {
			if c.base() == child.base() {
				child.base().parent = nil
				node.children = append(node.children[:i], node.children[i+1:]...)
				break
			}
		}
	}
}

// LocalPosition returns the object's local position relative to its parent.
func (node *Node) LocalPosition() Vector3 { return node.position }

// SetLocalPosition sets the object's local position (position relative to its parent).
func (node *Node) SetLocalPosition(x, y, z float32) {
	node.position = Vector3{x, y, z}
}

// SetLocalPositionVec sets the object's local position using a Vector3.
func (node *Node) SetLocalPositionVec(position Vector3) {
	node.position = position
}

// Move moves a Node in local space by the x, y, and z values provided.
func (node *Node) Move(x, y, z float32) {
	node.position = node.position.Add(Vector3{x, y, z})
}

// LocalScale returns the object's local scale.
func (node *Node) LocalScale() Vector3 { return node.scale }

// SetLocalScale sets the object's local scale.
func (node *Node) SetLocalScale(x, y, z float32) {
	node.scale = Vector3{x, y, z}
}

// LocalRotation returns the object's local rotation Matrix4.
func (node *Node) LocalRotation() Matrix4 { return node.rotation }

// SetLocalRotation sets the object's local rotation Matrix4 (relative to any parent).
func (node *Node) SetLocalRotation(rotation Matrix4) {
	node.rotation = rotation
}

// Visible returns whether the Node is visible.
func (node *Node) Visible() bool { return node.visible }

// SetVisible sets the object's visibility.
func (node *Node) SetVisible(visible bool) { node.visible = visible }

// LocalTransform returns the Node's transform relative to its parent.
func (node *Node) LocalTransform() Matrix4 {
	// S * R * T
	transform := NewMatrix4Scale(node.scale.X, node.scale.Y, node.scale.Z)
	transform = transform.Mult(node.rotation)
	return transform.Mult(NewMatrix4Translate(node.position.X, node.position.Y, node.position.Z))
}

// Transform returns the Node's world transform, combining its local transform with its parents'.
func (node *Node) Transform() Matrix4 {
	transform := node.LocalTransform()
	if node.parent != nil {
		transform = transform.Mult(node.parent.Transform())
	}
	return transform
}

// WorldPosition returns the Node's position in world space.
func (node *Node) WorldPosition() Vector3 {
	return node.Transform().Translation()
}

// WorldVisible returns true if the Node and every one of its parents is visible.
func (node *Node) WorldVisible() bool {
	for n := node; n != nil; n = n.parent {
		if !n.visible {
			return false
		}
	}
	return true
}

// Walk calls forEach on the Node and every recursive child, depth-first. If forEach returns false for a Node,
// that Node's children are skipped.
func Walk(root INode, forEach func(node INode) bool) {
	if !forEach(root) {
		return
	}
	for _, child := range root.Children() {
		Walk(child, forEach)
	}
}

// Models returns every Model in the tree under (and including) root.
func Models(root INode) []*Model {
	models := []*Model{}
	Walk(root, func(node INode) bool {
		if model, ok := node.(*Model); ok {
			models = append(models, model)
		}
		return true
	})
	return models
}
