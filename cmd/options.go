package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"

	"github.com/df07/go-scene-viewer/pkg/app"
	"github.com/df07/go-scene-viewer/pkg/loaders"
)

// SceneFlags configure the scene and are shared by every command
var SceneFlags = []cli.Flag{
	cli.IntFlag{
		Name:   "width",
		Value:  800,
		Usage:  "viewport width",
		EnvVar: "SCENE_VIEWER_WIDTH",
	},
	cli.IntFlag{
		Name:   "height",
		Value:  600,
		Usage:  "viewport height",
		EnvVar: "SCENE_VIEWER_HEIGHT",
	},
	cli.Float64Flag{
		Name:   "fov",
		Value:  75,
		Usage:  "vertical field of view in degrees",
		EnvVar: "SCENE_VIEWER_FOV",
	},
	cli.Float64Flag{
		Name:   "distance",
		Value:  5,
		Usage:  "initial camera distance along +Z",
		EnvVar: "SCENE_VIEWER_DISTANCE",
	},
	cli.StringFlag{
		Name:   "base, b",
		Value:  ".",
		Usage:  "directory or http(s) URL that assets are resolved against",
		EnvVar: "SCENE_VIEWER_BASE",
	},
	cli.StringFlag{
		Name:   "sky",
		Value:  "ffffbb",
		Usage:  "hemisphere light sky color (hex RRGGBB)",
		EnvVar: "SCENE_VIEWER_SKY",
	},
	cli.StringFlag{
		Name:   "ground",
		Value:  "080820",
		Usage:  "hemisphere light ground color (hex RRGGBB)",
		EnvVar: "SCENE_VIEWER_GROUND",
	},
	cli.Float64Flag{
		Name:   "intensity",
		Value:  1,
		Usage:  "hemisphere light intensity",
		EnvVar: "SCENE_VIEWER_INTENSITY",
	},
	cli.IntFlag{
		Name:   "fps",
		Value:  60,
		Usage:  "frames per second",
		EnvVar: "SCENE_VIEWER_FPS",
	},
	cli.IntFlag{
		Name:   "load-workers",
		Usage:  "concurrent asset loads (0 = one per asset)",
		EnvVar: "SCENE_VIEWER_LOAD_WORKERS",
	},
	cli.IntFlag{
		Name:   "render-jobs",
		Usage:  "goroutines projecting meshes (0 = number of CPUs)",
		EnvVar: "SCENE_VIEWER_RENDER_JOBS",
	},
}

// configFromContext builds the app configuration from the defaults, the
// command flags and the positional asset arguments
func configFromContext(ctx *cli.Context) (app.Config, error) {
	cfg := app.DefaultConfig()

	cfg.Width = ctx.Int("width")
	cfg.Height = ctx.Int("height")
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("invalid viewport size %dx%d", cfg.Width, cfg.Height)
	}
	cfg.FOV = float32(ctx.Float64("fov"))
	if cfg.FOV <= 0 || cfg.FOV >= 180 {
		return cfg, fmt.Errorf("fov must be between 0 and 180, got %g", cfg.FOV)
	}
	cfg.CameraPosition = mgl32.Vec3{0, 0, float32(ctx.Float64("distance"))}
	cfg.AssetBase = ctx.String("base")
	cfg.LightIntensity = float32(ctx.Float64("intensity"))
	cfg.FPS = ctx.Int("fps")
	cfg.LoadWorkers = ctx.Int("load-workers")
	cfg.RenderJobs = ctx.Int("render-jobs")

	var err error
	if cfg.SkyColor, err = parseHexColor(ctx.String("sky")); err != nil {
		return cfg, err
	}
	if cfg.GroundColor, err = parseHexColor(ctx.String("ground")); err != nil {
		return cfg, err
	}

	if ctx.NArg() > 0 {
		cfg.Assets = append([]string(nil), ctx.Args()...)
	}
	return cfg, nil
}

// parseHexColor accepts RRGGBB with an optional # or 0x prefix
func parseHexColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q: expected RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}

func newLoader(cfg app.Config) loaders.Source {
	return loaders.NewGLTFLoader(cfg.AssetBase)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
