package renderer

import (
	"context"
	"image"
	"image/draw"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/vector"

	"github.com/df07/go-scene-viewer/pkg/scene"
)

// Software renders frames on the CPU into an in-memory image. It keeps two
// buffers so Snapshot can be called from other goroutines while a frame is
// being drawn.
type Software struct {
	mu      sync.Mutex
	width   int
	height  int
	workers int
	front   *image.RGBA // Last completed frame
	back    *image.RGBA // Frame being drawn
	frame   uint64
	last    Projection // Triangles of the front buffer
	raster  *vector.Rasterizer
}

// NewSoftware creates a software renderer of the given size. workers bounds
// the projection parallelism (0 = CPU count).
func NewSoftware(width, height, workers int) *Software {
	sw := &Software{workers: workers, raster: vector.NewRasterizer(1, 1)}
	sw.SetSize(width, height)
	return sw
}

// SetSize resizes both buffers. The current frame is discarded.
func (sw *Software) SetSize(width, height int) {
	width, height = max(width, 1), max(height, 1)

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.front != nil && sw.width == width && sw.height == height {
		return
	}
	sw.width, sw.height = width, height
	sw.front = image.NewRGBA(image.Rect(0, 0, width, height))
	sw.back = image.NewRGBA(image.Rect(0, 0, width, height))
	sw.last = Projection{}
}

// Size returns the output size in pixels
func (sw *Software) Size() (int, int) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.width, sw.height
}

// Render draws the scene into the back buffer and swaps it to the front. It
// must not be called concurrently with itself.
func (sw *Software) Render(ctx context.Context, s *scene.Scene, cam *scene.PerspectiveCamera) (FrameStats, error) {
	start := time.Now()

	sw.mu.Lock()
	back, width, height := sw.back, sw.width, sw.height
	sw.mu.Unlock()

	proj, err := Project(ctx, s, cam, width, height, sw.workers)
	if err != nil {
		return FrameStats{}, err
	}

	draw.Draw(back, back.Bounds(), image.NewUniform(s.Background), image.Point{}, draw.Src)
	for i := range proj.Triangles {
		sw.fill(back, &proj.Triangles[i])
	}

	sw.mu.Lock()
	// A concurrent SetSize replaced the buffers; drop this frame
	if sw.back != back {
		sw.mu.Unlock()
		return proj.Stats, nil
	}
	sw.front, sw.back = sw.back, sw.front
	sw.last = proj
	sw.frame++
	stats := proj.Stats
	stats.Frame = sw.frame
	sw.mu.Unlock()

	stats.Duration = time.Since(start)
	return stats, nil
}

// fill rasterizes one triangle. The triangle is clipped to the frame and the
// rasterizer sized to the clipped bounding box, so cost scales with the
// visible part of the triangle rather than the frame.
func (sw *Software) fill(dst *image.RGBA, tri *ScreenTriangle) {
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, p := range tri.Points {
		minX, maxX = min(minX, p.X()), max(maxX, p.X())
		minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
	}

	r := image.Rect(int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY)))).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	poly := clipPolygon(tri.Points[:], float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y))
	if len(poly) < 3 {
		return
	}

	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	sw.raster.Reset(r.Dx(), r.Dy())
	sw.raster.DrawOp = draw.Over
	sw.raster.MoveTo(poly[0].X()-ox, poly[0].Y()-oy)
	for _, p := range poly[1:] {
		sw.raster.LineTo(p.X()-ox, p.Y()-oy)
	}
	sw.raster.ClosePath()
	sw.raster.Draw(dst, r, image.NewUniform(tri.Color), image.Point{})
}

// clipPolygon clips a convex polygon to an axis-aligned rectangle
// (Sutherland-Hodgman)
func clipPolygon(in []mgl32.Vec2, minX, minY, maxX, maxY float32) []mgl32.Vec2 {
	edges := []struct {
		axis  int
		bound float32
		keep  func(v, bound float32) bool
	}{
		{0, minX, func(v, b float32) bool { return v >= b }},
		{0, maxX, func(v, b float32) bool { return v <= b }},
		{1, minY, func(v, b float32) bool { return v >= b }},
		{1, maxY, func(v, b float32) bool { return v <= b }},
	}

	poly := in
	for _, e := range edges {
		if len(poly) == 0 {
			break
		}
		out := make([]mgl32.Vec2, 0, len(poly)+2)
		prev := poly[len(poly)-1]
		for _, cur := range poly {
			curIn, prevIn := e.keep(cur[e.axis], e.bound), e.keep(prev[e.axis], e.bound)
			if curIn != prevIn {
				t := (e.bound - prev[e.axis]) / (cur[e.axis] - prev[e.axis])
				p := prev.Add(cur.Sub(prev).Mul(t))
				p[e.axis] = e.bound
				out = append(out, p)
			}
			if curIn {
				out = append(out, cur)
			}
			prev = cur
		}
		poly = out
	}
	return poly
}

// Snapshot returns a copy of the last completed frame and its number. Frame
// 0 means nothing has been rendered yet.
func (sw *Software) Snapshot() (*image.RGBA, uint64) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	img := image.NewRGBA(sw.front.Bounds())
	copy(img.Pix, sw.front.Pix)
	return img, sw.frame
}

// Frame returns the number of completed frames
func (sw *Software) Frame() uint64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.frame
}

// Pick returns the front-most triangle drawn at pixel (x, y) in the last
// completed frame
func (sw *Software) Pick(x, y int) (ScreenTriangle, bool) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	// Sample the pixel center
	return sw.last.Pick(float32(x)+0.5, float32(y)+0.5)
}
