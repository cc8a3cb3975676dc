package scene

import "github.com/pcallahan/gridstage/grid"

// Geometry is a handle to mesh geometry owned by the rendering backend.
// Dispose is idempotent.
type Geometry struct {
	Name     string
	disposed bool
}

func (g *Geometry) Dispose() {
	if g != nil {
		g.disposed = true
	}
}

func (g *Geometry) Disposed() bool {
	return g != nil && g.disposed
}

// Material is a handle to a material owned by the rendering backend.
type Material struct {
	Name     string
	disposed bool
}

func (m *Material) Dispose() {
	if m != nil {
		m.disposed = true
	}
}

func (m *Material) Disposed() bool {
	return m != nil && m.disposed
}

// Node is one transform in the scene graph. Position is local to the parent;
// only translation composes through the hierarchy, which is all the token
// layer needs.
type Node struct {
	Name     string
	Position grid.Vec3
	Yaw      float64
	Scale    grid.Vec3

	Geometry *Geometry
	Material *Material

	parent   *Node
	children []*Node
}

// NewNode creates a detached node with unit scale.
func NewNode(name string) *Node {
	return &Node{
		Name:  name,
		Scale: grid.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// AddChild attaches a child node, detaching it from any previous parent.
func (n *Node) AddChild(child *Node) {
	if n == nil || child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches a child if present.
func (n *Node) RemoveChild(child *Node) {
	if n == nil || child == nil {
		return
	}
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the parent node, if attached.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns the attached children.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// WorldPosition composes translations up the parent chain.
func (n *Node) WorldPosition() grid.Vec3 {
	if n == nil {
		return grid.Vec3{}
	}
	pos := n.Position
	for p := n.parent; p != nil; p = p.parent {
		pos = pos.Add(p.Position)
	}
	return pos
}

// ParentWorldOrigin is the world position local coordinates are relative to.
func (n *Node) ParentWorldOrigin() grid.Vec3 {
	if n == nil || n.parent == nil {
		return grid.Vec3{}
	}
	return n.parent.WorldPosition()
}

// SetWorldPosition moves the node so its composed world position equals p.
func (n *Node) SetWorldPosition(p grid.Vec3) {
	if n == nil {
		return
	}
	n.Position = p.Sub(n.ParentWorldOrigin())
}

// Dispose releases geometry and material and detaches all children.
func (n *Node) Dispose() {
	if n == nil {
		return
	}
	n.Geometry.Dispose()
	n.Material.Dispose()
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}
