package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/df07/go-scene-viewer/pkg/app"
	"github.com/df07/go-scene-viewer/pkg/loaders"
	"github.com/df07/go-scene-viewer/pkg/log"
	"github.com/df07/go-scene-viewer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	base := flag.String("base", ".", "Directory or http(s) URL assets are resolved against")
	assets := flag.String("assets", "", "Comma separated assets to load at startup (default teddy_bear.glb,tree_road.glb)")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	logger := log.New("web")
	if *verbose {
		log.SetLevel(log.Debug)
	}

	cfg := app.DefaultConfig()
	cfg.AssetBase = *base
	if *assets != "" {
		cfg.Assets = strings.Split(*assets, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("Scene Viewer Web Server")
	logger.Noticef("Visit http://localhost:%d to view the scene", *port)

	if err := server.NewServer(*port, cfg, loaders.NewGLTFLoader(cfg.AssetBase)).Start(ctx); err != nil {
		logger.Errorf("Error starting server: %v", err)
		os.Exit(1)
	}
}
