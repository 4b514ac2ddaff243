package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-scene-viewer/cmd"
	"github.com/df07/go-scene-viewer/pkg/log"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "go-scene-viewer"
	app.Usage = "view glTF models lit by a hemisphere light"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "view",
			Usage: "open the scene in a window",
			Description: `
Load the assets in the background and show the scene in a window while they
arrive. Drag with the left mouse button to orbit, scroll to zoom, press R to
reset the camera and Escape to quit.

Without arguments teddy_bear.glb and tree_road.glb are loaded.`,
			ArgsUsage: "asset1.glb asset2.glb ...",
			Flags:     cmd.SceneFlags,
			Action:    cmd.View,
		},
		{
			Name:        "render",
			Usage:       "render frames headless and save the last one",
			Description: `Run the render loop without a window for a fixed number of frames.`,
			ArgsUsage:   "asset1.glb asset2.glb ...",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames, n",
					Value: 1,
					Usage: "number of frames to render",
				},
				cli.BoolFlag{
					Name:  "wait",
					Usage: "wait for every asset to finish loading before the first frame",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "output/frame.png",
					Usage: "image filename for the last frame",
				},
			}, cmd.SceneFlags...),
			Action: cmd.Render,
		},
		{
			Name:        "serve",
			Usage:       "stream the scene to a browser",
			Description: `Serve a web page showing the scene with orbit controls and a log console.`,
			ArgsUsage:   "asset1.glb asset2.glb ...",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:   "port, p",
					Value:  8080,
					Usage:  "port to serve on",
					EnvVar: "SCENE_VIEWER_PORT",
				},
			}, cmd.SceneFlags...),
			Action: cmd.Serve,
		},
		{
			Name:      "inspect",
			Usage:     "load assets and print a summary",
			ArgsUsage: "asset1.glb asset2.glb ...",
			Flags:     cmd.SceneFlags,
			Action:    cmd.Inspect,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.New("scene-viewer").Errorf("%v", err)
		os.Exit(1)
	}
}
