package cmd

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/df07/go-scene-viewer/pkg/app"
	"github.com/df07/go-scene-viewer/pkg/renderer"
)

// Render runs the render loop headless for a number of frames and saves the
// last one.
func Render(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	frames := ctx.Int("frames")
	if frames <= 0 {
		return errors.New("frames must be positive")
	}

	var stats []renderer.FrameStats
	sw := renderer.NewSoftware(cfg.Width, cfg.Height, cfg.RenderJobs)
	a := app.New(cfg, newLoader(cfg), sw, app.WithFrameHook(func(s renderer.FrameStats) {
		stats = append(stats, s)
	}))
	defer a.Close()

	runCtx, stop := signalContext()
	defer stop()

	a.LoadAll()
	if ctx.Bool("wait") {
		if err := a.WaitLoaded(runCtx); err != nil {
			return err
		}
	}

	sched := app.NewTickerScheduler(cfg.FPS)
	defer sched.Stop()
	if err := a.Run(runCtx, app.NewFrameLimit(sched, frames)); err != nil {
		return err
	}

	img, frame := sw.Snapshot()
	if frame == 0 {
		return errors.New("no frame was rendered")
	}

	out := ctx.String("out")
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}

	displayFrameStats(stats)
	loaded, failed := a.Loaded()
	logger.Noticef("saved frame %d to %s (%d assets loaded, %d failed, %d pending, average luminance %.3f)",
		frame, out, loaded, failed, a.Pending(), renderer.AverageLuminance(img))
	return nil
}

func displayFrameStats(stats []renderer.FrameStats) {
	var buf bytes.Buffer
	renderer.WriteStatsTable(&buf, stats)
	logger.Noticef("frame statistics\n%s", buf.String())
}
