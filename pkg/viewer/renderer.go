package viewer

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/df07/go-scene-viewer/pkg/renderer"
	"github.com/df07/go-scene-viewer/pkg/scene"
)

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

// whiteTexture returns a one pixel white source image. Sampling the center of
// a larger image avoids bleeding at the edges.
func whiteTexture() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// Renderer submits projected triangles to ebiten. The target image is the
// screen handed to Game.Draw.
type Renderer struct {
	width   int
	height  int
	workers int
	target  *ebiten.Image
	frame   uint64

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewRenderer creates a renderer projecting with up to workers goroutines
func NewRenderer(workers int) *Renderer {
	return &Renderer{width: 1, height: 1, workers: workers}
}

// SetTarget sets the image the next Render draws into
func (r *Renderer) SetTarget(img *ebiten.Image) {
	r.target = img
}

// SetSize sets the projection size in pixels
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = max(width, 1), max(height, 1)
}

// Size returns the projection size in pixels
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Render clears the target and draws the scene's triangles back to front
func (r *Renderer) Render(ctx context.Context, s *scene.Scene, cam *scene.PerspectiveCamera) (renderer.FrameStats, error) {
	start := time.Now()
	if r.target == nil {
		return renderer.FrameStats{}, errNoTarget
	}

	proj, err := renderer.Project(ctx, s, cam, r.width, r.height, r.workers)
	if err != nil {
		return renderer.FrameStats{}, err
	}

	r.target.Fill(s.Background)
	r.vertices, r.indices = r.vertices[:0], r.indices[:0]
	for _, tri := range proj.Triangles {
		// Indices are 16 bit; flush before they overflow
		if len(r.vertices)+3 > math.MaxUint16 {
			r.flush()
		}
		cr, cg, cb, ca := float32(tri.Color.R)/0xff, float32(tri.Color.G)/0xff, float32(tri.Color.B)/0xff, float32(tri.Color.A)/0xff
		base := uint16(len(r.vertices))
		for _, p := range tri.Points {
			r.vertices = append(r.vertices, ebiten.Vertex{
				DstX: p.X(), DstY: p.Y(),
				SrcX: 1, SrcY: 1,
				ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
			})
		}
		r.indices = append(r.indices, base, base+1, base+2)
	}
	r.flush()

	r.frame++
	stats := proj.Stats
	stats.Frame = r.frame
	stats.Duration = time.Since(start)
	return stats, nil
}

func (r *Renderer) flush() {
	if len(r.indices) == 0 {
		return
	}
	r.target.DrawTriangles(r.vertices, r.indices, whiteTexture(), &ebiten.DrawTrianglesOptions{})
	r.vertices, r.indices = r.vertices[:0], r.indices[:0]
}
