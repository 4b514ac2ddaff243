package scene

import (
	"image/color"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the ordered collection of top-level nodes composed for display.
// It is created once and lives as long as the application. Writers are
// expected to be the render loop goroutine; readers may run concurrently
// (for example the web API), so every access goes through the lock.
type Scene struct {
	mu         sync.RWMutex
	children   []*Node
	Background color.RGBA // Clear color used by renderers
}

// New creates an empty scene with a black background
func New() *Scene {
	return &Scene{Background: color.RGBA{A: 0xff}}
}

// Add appends a node to the scene. Nil nodes are ignored.
func (s *Scene) Add(n *Node) {
	if n == nil {
		return
	}
	s.mu.Lock()
	s.children = append(s.children, n)
	s.mu.Unlock()
}

// Len returns the number of top-level nodes
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.children)
}

// Children returns a snapshot of the top-level nodes in insertion order
func (s *Scene) Children() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, len(s.children))
	copy(out, s.children)
	return out
}

// Walk visits every node depth-first, in insertion order, together with its
// world matrix. Returning false from fn skips the node's descendants.
func (s *Scene) Walk(fn func(n *Node, world mgl32.Mat4) bool) {
	for _, child := range s.Children() {
		child.Walk(mgl32.Ident4(), fn)
	}
}

// Count returns the number of nodes of the given kind, at any depth
func (s *Scene) Count(kind Kind) int {
	count := 0
	for _, child := range s.Children() {
		count += child.Count(kind)
	}
	return count
}

// Triangles returns the total number of mesh triangles in the scene
func (s *Scene) Triangles() int {
	total := 0
	for _, child := range s.Children() {
		total += child.Triangles()
	}
	return total
}

// WorldLight pairs a light with its direction in world space
type WorldLight struct {
	Light     *HemisphereLight
	Direction mgl32.Vec3
}

// Lights returns every light in the scene with its world-space direction
func (s *Scene) Lights() []WorldLight {
	var lights []WorldLight
	s.Walk(func(n *Node, world mgl32.Mat4) bool {
		if n.Light != nil {
			dir := world.Mul4x1(n.Light.Direction.Vec4(0)).Vec3()
			if dir.Len() == 0 {
				dir = mgl32.Vec3{0, 1, 0}
			}
			lights = append(lights, WorldLight{Light: n.Light, Direction: dir.Normalize()})
		}
		return true
	})
	return lights
}
