package renderer

import (
	"context"

	"github.com/df07/go-scene-viewer/pkg/scene"
)

// Renderer draws a scene as seen through a camera into its own output
// surface
type Renderer interface {
	// Render draws one frame of the scene's current state
	Render(ctx context.Context, s *scene.Scene, cam *scene.PerspectiveCamera) (FrameStats, error)
	// SetSize resizes the output surface
	SetSize(width, height int)
	// Size returns the output surface size in pixels
	Size() (width, height int)
}
