// Package viewer shows the scene in a desktop window. ebiten drives the
// frame cadence: it calls Update and Draw once per frame.
package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-scene-viewer/pkg/app"
	"github.com/df07/go-scene-viewer/pkg/renderer"
)

var errNoTarget = errors.New("no render target")

// Game adapts an App to ebiten's game loop. Pointer drags orbit the camera,
// the wheel zooms, R resets the view and Escape quits.
type Game struct {
	app      *app.App
	renderer *Renderer
	ctx      context.Context
	stats    renderer.FrameStats

	dragging     bool
	lastX, lastY int
	width        int
	height       int
}

// NewGame wraps an App whose renderer is r
func NewGame(ctx context.Context, a *app.App, r *Renderer) *Game {
	cfg := a.Config()
	return &Game{app: a, renderer: r, ctx: ctx, width: cfg.Width, height: cfg.Height}
}

// Run opens the window and blocks until it is closed or ctx is cancelled
func Run(ctx context.Context, a *app.App, r *Renderer, title string) error {
	cfg := a.Config()
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FPS)

	err := ebiten.RunGame(NewGame(ctx, a, r))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update handles input, applies completed loads and advances the controls
func (g *Game) Update() error {
	if err := g.ctx.Err(); err != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.dragging {
			g.app.Controls.RotatePixels(float64(x-g.lastX), float64(y-g.lastY), g.height)
		}
		g.dragging = true
	} else {
		g.dragging = false
	}
	g.lastX, g.lastY = x, y

	if _, wheel := ebiten.Wheel(); wheel != 0 {
		g.app.Controls.Zoom(wheel)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.app.Controls.Reset()
	}

	g.app.Update()
	return nil
}

// Draw renders the current scene onto the screen
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.SetTarget(screen)
	g.stats = g.app.Render(g.ctx)

	ok, failed := g.app.Loaded()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS %.0f  triangles %d/%d  assets %d loaded, %d failed, %d pending",
		ebiten.ActualFPS(), g.stats.Drawn, g.stats.Triangles, ok, failed, g.app.Pending()))
}

// Layout keeps the renderer and camera sized to the window
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.app.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
