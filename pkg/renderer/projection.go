package renderer

import (
	"context"
	"image/color"
	"math"
	"runtime"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-scene-viewer/pkg/scene"
)

// ScreenTriangle is a shaded triangle in pixel coordinates
type ScreenTriangle struct {
	Points [3]mgl32.Vec2 // Pixel coordinates, origin top-left
	Depth  float32       // Mean view-space distance, used for ordering
	Color  color.RGBA    // Shaded, alpha-premultiplied
	Node   string        // Name of the mesh node the triangle belongs to
}

// instance is a mesh placed in the world
type instance struct {
	name  string
	mesh  *scene.Mesh
	world mgl32.Mat4
}

// Projection is the output of Project
type Projection struct {
	Triangles []ScreenTriangle // Sorted far to near
	Stats     FrameStats
}

// Project transforms, shades and culls every mesh triangle in the scene and
// returns the visible ones in painter's order. Mesh instances are processed
// in parallel by up to workers goroutines (0 = CPU count).
func Project(ctx context.Context, s *scene.Scene, cam *scene.PerspectiveCamera, width, height, workers int) (Projection, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var instances []instance
	nodes := 0
	s.Walk(func(n *scene.Node, world mgl32.Mat4) bool {
		nodes++
		if n.Mesh != nil {
			instances = append(instances, instance{name: n.Name, mesh: n.Mesh, world: world})
		}
		return true
	})
	lights := s.Lights()

	stats := FrameStats{Nodes: nodes, Lights: len(lights)}
	viewProj := cam.ViewProjection()

	parts := make([][]ScreenTriangle, len(instances))
	culled := make([]int, len(instances))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range instances {
		i := i
		inst := instances[i]
		stats.Triangles += inst.mesh.TriangleCount()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i], culled[i] = projectInstance(inst, lights, cam.Position, viewProj, cam.Near, float32(width), float32(height))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Projection{}, err
	}

	total := 0
	for i := range parts {
		total += len(parts[i])
		stats.Culled += culled[i]
	}
	tris := make([]ScreenTriangle, 0, total)
	for _, p := range parts {
		tris = append(tris, p...)
	}
	sort.SliceStable(tris, func(a, b int) bool {
		return tris[a].Depth > tris[b].Depth
	})
	stats.Drawn = len(tris)

	return Projection{Triangles: tris, Stats: stats}, nil
}

// Pick returns the nearest triangle covering pixel (x, y)
func (p *Projection) Pick(x, y float32) (ScreenTriangle, bool) {
	pt := mgl32.Vec2{x, y}
	for i := len(p.Triangles) - 1; i >= 0; i-- {
		if p.Triangles[i].Contains(pt) {
			return p.Triangles[i], true
		}
	}
	return ScreenTriangle{}, false
}

// Contains reports whether p lies inside the triangle, edges included.
// Winding is ignored since double-sided faces may arrive either way.
func (t *ScreenTriangle) Contains(p mgl32.Vec2) bool {
	edge := func(a, b mgl32.Vec2) float32 {
		return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
	}
	d0 := edge(t.Points[0], t.Points[1])
	d1 := edge(t.Points[1], t.Points[2])
	d2 := edge(t.Points[2], t.Points[0])
	neg := d0 < 0 || d1 < 0 || d2 < 0
	pos := d0 > 0 || d1 > 0 || d2 > 0
	return !(neg && pos)
}

// projectInstance handles one mesh instance and returns its visible
// triangles and the number it culled
func projectInstance(inst instance, lights []scene.WorldLight, eye mgl32.Vec3, viewProj mgl32.Mat4, near, width, height float32) ([]ScreenTriangle, int) {
	mesh := inst.mesh
	out := make([]ScreenTriangle, 0, mesh.TriangleCount())
	culled := 0

	for t := 0; t < mesh.TriangleCount(); t++ {
		a, b, c, ok := mesh.Triangle(t)
		if !ok {
			culled++
			continue
		}
		world := [3]mgl32.Vec3{
			inst.world.Mul4x1(a.Vec4(1)).Vec3(),
			inst.world.Mul4x1(b.Vec4(1)).Vec3(),
			inst.world.Mul4x1(c.Vec4(1)).Vec3(),
		}

		normal := world[1].Sub(world[0]).Cross(world[2].Sub(world[0]))
		if normal.Len() == 0 {
			culled++
			continue
		}
		normal = normal.Normalize()

		// Back faces point away from the eye
		centroid := world[0].Add(world[1]).Add(world[2]).Mul(1.0 / 3)
		if normal.Dot(centroid.Sub(eye)) > 0 {
			if !mesh.DoubleSided {
				culled++
				continue
			}
			normal = normal.Mul(-1)
		}

		tri, visible := toScreen(world, viewProj, near, width, height)
		if !visible {
			culled++
			continue
		}
		tri.Color = shade(mesh.Color, normal, lights)
		tri.Node = inst.name
		out = append(out, tri)
	}
	return out, culled
}

// toScreen projects world-space vertices to pixel coordinates. Triangles
// touching the near plane or entirely outside one side of the frustum are
// rejected.
func toScreen(world [3]mgl32.Vec3, viewProj mgl32.Mat4, near, width, height float32) (ScreenTriangle, bool) {
	var tri ScreenTriangle
	var ndc [3]mgl32.Vec3

	for i, p := range world {
		clip := viewProj.Mul4x1(p.Vec4(1))
		if clip.W() < near {
			return tri, false
		}
		ndc[i] = clip.Vec3().Mul(1 / clip.W())
		tri.Depth += clip.W() / 3
	}

	for axis := 0; axis < 3; axis++ {
		if ndc[0][axis] > 1 && ndc[1][axis] > 1 && ndc[2][axis] > 1 {
			return tri, false
		}
		if ndc[0][axis] < -1 && ndc[1][axis] < -1 && ndc[2][axis] < -1 {
			return tri, false
		}
	}

	for i, p := range ndc {
		tri.Points[i] = mgl32.Vec2{
			(p.X() + 1) / 2 * width,
			(1 - p.Y()) / 2 * height,
		}
	}
	return tri, true
}

// shade applies every hemisphere light to a flat-shaded surface
func shade(base mgl32.Vec4, normal mgl32.Vec3, lights []scene.WorldLight) color.RGBA {
	var irradiance mgl32.Vec3
	for _, l := range lights {
		irradiance = irradiance.Add(l.Light.IrradianceDir(normal, l.Direction))
	}
	// color.RGBA is alpha-premultiplied
	alpha := mgl32.Clamp(base.W(), 0, 1)
	return color.RGBA{
		R: toByte(base.X() * irradiance.X() * alpha),
		G: toByte(base.Y() * irradiance.Y() * alpha),
		B: toByte(base.Z() * irradiance.Z() * alpha),
		A: toByte(alpha),
	}
}

func toByte(v float32) uint8 {
	return uint8(math.Round(float64(mgl32.Clamp(v, 0, 1)) * 255))
}
