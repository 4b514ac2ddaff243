package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-scene-viewer/web/server"
)

// Serve streams the scene to browsers.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signalContext()
	defer stop()

	port := ctx.Int("port")
	logger.Noticef("visit http://localhost:%d to view the scene", port)
	return server.NewServer(port, cfg, newLoader(cfg)).Start(runCtx)
}
