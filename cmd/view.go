package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-scene-viewer/pkg/app"
	"github.com/df07/go-scene-viewer/pkg/viewer"
)

// View opens an interactive window showing the scene.
func View(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}

	r := viewer.NewRenderer(cfg.RenderJobs)
	a := app.New(cfg, newLoader(cfg), r)
	defer a.Close()

	runCtx, stop := signalContext()
	defer stop()

	a.LoadAll()
	logger.Noticef("loading %d assets from %s", len(cfg.Assets), cfg.AssetBase)
	return viewer.Run(runCtx, a, r, "go-scene-viewer")
}
