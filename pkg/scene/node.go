package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies what a node carries
type Kind int

const (
	KindGroup Kind = iota // Transform-only node
	KindMesh              // Node carrying a Mesh
	KindLight             // Node carrying a HemisphereLight
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a single element of the scene graph. A node has a local transform
// relative to its parent and owns its children.
type Node struct {
	Name      string
	Kind      Kind
	Transform mgl32.Mat4 // Local transform
	Mesh      *Mesh
	Light     *HemisphereLight
	Children  []*Node
}

// NewGroup creates an empty group node with an identity transform
func NewGroup(name string) *Node {
	return &Node{Name: name, Kind: KindGroup, Transform: mgl32.Ident4()}
}

// NewMeshNode creates a node carrying a mesh
func NewMeshNode(name string, mesh *Mesh) *Node {
	return &Node{Name: name, Kind: KindMesh, Transform: mgl32.Ident4(), Mesh: mesh}
}

// NewLightNode creates a node carrying a hemisphere light
func NewLightNode(name string, light *HemisphereLight) *Node {
	return &Node{Name: name, Kind: KindLight, Transform: mgl32.Ident4(), Light: light}
}

// Add appends child to the node's children
func (n *Node) Add(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

// Walk visits n and its descendants depth-first. parent is the world matrix
// of n's parent.
func (n *Node) Walk(parent mgl32.Mat4, fn func(n *Node, world mgl32.Mat4) bool) {
	world := parent.Mul4(n.Transform)
	if !fn(n, world) {
		return
	}
	for _, child := range n.Children {
		child.Walk(world, fn)
	}
}

// Count returns the number of nodes of the given kind in the subtree rooted at n
func (n *Node) Count(kind Kind) int {
	count := 0
	if n.Kind == kind {
		count++
	}
	for _, child := range n.Children {
		count += child.Count(kind)
	}
	return count
}

// Triangles returns the number of mesh triangles in the subtree rooted at n
func (n *Node) Triangles() int {
	total := 0
	if n.Mesh != nil {
		total += n.Mesh.TriangleCount()
	}
	for _, child := range n.Children {
		total += child.Triangles()
	}
	return total
}
