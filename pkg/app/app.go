// Package app wires the scene, camera, controls, renderer and asset loading
// into one application context and drives the render loop.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-scene-viewer/pkg/controls"
	"github.com/df07/go-scene-viewer/pkg/loaders"
	"github.com/df07/go-scene-viewer/pkg/log"
	"github.com/df07/go-scene-viewer/pkg/renderer"
	"github.com/df07/go-scene-viewer/pkg/scene"
)

// App owns every piece of viewer state for its whole lifetime. Scene
// mutation, control updates and rendering all happen on the goroutine that
// calls Update, Render, Frame or Run; only the asset loads run elsewhere and
// they hand their results back over a channel.
type App struct {
	Scene    *scene.Scene
	Camera   *scene.PerspectiveCamera
	Controls *controls.Orbit
	Renderer renderer.Renderer

	config  Config
	logger  log.Logger
	pool    *loaders.Pool
	ctx     context.Context
	cancel  context.CancelFunc
	onFrame func(renderer.FrameStats)

	pending atomic.Int64  // Loads submitted but not yet applied
	frames  atomic.Uint64 // Frames rendered
	loaded  atomic.Int64  // Loads applied successfully
	failed  atomic.Int64  // Loads that failed

	closeOnce sync.Once
}

// Option customizes an App
type Option func(*App)

// WithLogger replaces the default "app" logger
func WithLogger(l log.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithFrameHook registers a callback invoked after every rendered frame
func WithFrameHook(fn func(renderer.FrameStats)) Option {
	return func(a *App) { a.onFrame = fn }
}

// New builds the scene described by cfg: a camera sized to the viewport,
// orbit controls bound to it and one hemisphere light. Assets are not loaded
// until Load is called.
func New(cfg Config, source loaders.Source, r renderer.Renderer, opts ...Option) *App {
	cam := scene.NewPerspectiveCamera(cfg.FOV, 1, cfg.Near, cfg.Far)
	cam.SetAspect(cfg.Width, cfg.Height)
	cam.Position = cfg.CameraPosition
	cam.Target = scene.Origin

	r.SetSize(cfg.Width, cfg.Height)

	workers := cfg.LoadWorkers
	if workers <= 0 {
		workers = max(len(cfg.Assets), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Scene:    scene.New(),
		Camera:   cam,
		Controls: controls.NewOrbit(cam),
		Renderer: r,
		config:   cfg,
		logger:   log.New("app"),
		pool:     loaders.NewPool(source, workers, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(a)
	}

	light := scene.NewHemisphereLight(scene.HexColor(cfg.SkyColor), scene.HexColor(cfg.GroundColor), cfg.LightIntensity)
	a.Scene.Add(scene.NewLightNode("hemisphere", light))

	a.pool.Start(ctx)
	a.logger.Debugf("loader pool started with %d workers", a.pool.NumWorkers())
	return a
}

// Config returns the configuration the app was built with
func (a *App) Config() Config {
	return a.config
}

// Load requests an asset without waiting for it. The result is applied to
// the scene by a later Update, ApplyPending or WaitLoaded.
func (a *App) Load(name string) {
	a.pending.Add(1)
	if _, err := a.pool.Submit(name); err != nil {
		a.pending.Add(-1)
		a.failed.Add(1)
		a.logger.Errorf("failed to load %s: %v", name, err)
	}
}

// LoadAll requests every configured asset
func (a *App) LoadAll() {
	for _, name := range a.config.Assets {
		a.Load(name)
	}
}

// ApplyPending applies every load that has completed since the last call,
// without blocking. A successful load adds exactly one node to the scene; a
// failed load is reported and otherwise ignored. It returns the number of
// results applied.
func (a *App) ApplyPending() int {
	applied := 0
	for {
		select {
		case res, ok := <-a.pool.Results():
			if !ok {
				return applied
			}
			a.apply(res)
			applied++
		default:
			return applied
		}
	}
}

// WaitLoaded blocks, applying results as they arrive, until no load is
// pending or ctx is done
func (a *App) WaitLoaded(ctx context.Context) error {
	for a.pending.Load() > 0 {
		select {
		case res, ok := <-a.pool.Results():
			if !ok {
				return loaders.ErrPoolStopped
			}
			a.apply(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (a *App) apply(res loaders.LoadResult) {
	a.pending.Add(-1)
	if res.Err != nil {
		a.failed.Add(1)
		a.logger.Errorf("failed to load %s: %v", res.Asset, res.Err)
		return
	}
	a.Scene.Add(res.Node)
	a.loaded.Add(1)
	a.logger.Infof("loaded %s in %v", res.Asset, res.Elapsed.Round(time.Millisecond))
}

// Pending returns the number of loads not yet applied to the scene
func (a *App) Pending() int {
	return int(a.pending.Load())
}

// Loaded returns the number of loads applied successfully and the number
// that failed
func (a *App) Loaded() (ok, failed int) {
	return int(a.loaded.Load()), int(a.failed.Load())
}

// Frames returns the number of frames rendered
func (a *App) Frames() uint64 {
	return a.frames.Load()
}

// Update applies completed loads and advances the controls
func (a *App) Update() {
	a.ApplyPending()
	a.Controls.Update()
}

// Render draws the current scene through the controlled camera. Render
// errors are logged and do not stop subsequent frames.
func (a *App) Render(ctx context.Context) renderer.FrameStats {
	stats, err := a.Renderer.Render(ctx, a.Scene, a.Controls.Camera())
	a.frames.Add(1)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warningf("frame %d: %v", a.frames.Load(), err)
		}
		return stats
	}
	if a.onFrame != nil {
		a.onFrame(stats)
	}
	return stats
}

// Frame runs one iteration of the render loop
func (a *App) Frame(ctx context.Context) renderer.FrameStats {
	a.Update()
	return a.Render(ctx)
}

// Resize resizes the renderer and keeps the camera's aspect in step
func (a *App) Resize(width, height int) {
	a.Renderer.SetSize(width, height)
	a.Camera.SetAspect(width, height)
}

// Close cancels in-flight loads and stops the loader pool. Results that
// arrive after Close are discarded.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.cancel()
		a.pool.Stop()
	})
}
