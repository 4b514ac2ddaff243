package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with a single flat base color
type Mesh struct {
	Positions   []mgl32.Vec3
	Indices     []uint32   // Three per triangle
	Color       mgl32.Vec4 // Linear RGBA base color
	DoubleSided bool
}

// NewMesh creates a mesh with a white base color. A nil indices slice means
// the positions are already laid out as consecutive triangles.
func NewMesh(positions []mgl32.Vec3, indices []uint32) *Mesh {
	if indices == nil {
		indices = make([]uint32, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return &Mesh{
		Positions: positions,
		Indices:   indices,
		Color:     mgl32.Vec4{1, 1, 1, 1},
	}
}

// TriangleCount returns the number of complete triangles
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the object-space vertices of triangle i. ok is false if
// any index is out of range.
func (m *Mesh) Triangle(i int) (a, b, c mgl32.Vec3, ok bool) {
	i0, i1, i2 := m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	n := uint32(len(m.Positions))
	if i0 >= n || i1 >= n || i2 >= n {
		return a, b, c, false
	}
	return m.Positions[i0], m.Positions[i1], m.Positions[i2], true
}

// Bounds returns the object-space axis-aligned bounding box of the mesh
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return min, max
	}
	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range m.Positions {
		for k := 0; k < 3; k++ {
			min[k] = float32(math.Min(float64(min[k]), float64(p[k])))
			max[k] = float32(math.Max(float64(max[k]), float64(p[k])))
		}
	}
	return min, max
}
