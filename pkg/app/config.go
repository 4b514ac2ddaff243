package app

import "github.com/go-gl/mathgl/mgl32"

// Config contains everything needed to assemble the viewer
type Config struct {
	Width  int // Viewport width in pixels
	Height int // Viewport height in pixels

	FOV            float32 // Vertical field of view in degrees
	Near           float32
	Far            float32
	CameraPosition mgl32.Vec3

	Assets    []string // Assets loaded at startup
	AssetBase string   // Directory or http(s) URL assets are resolved against

	SkyColor       uint32 // 0xRRGGBB
	GroundColor    uint32 // 0xRRGGBB
	LightIntensity float32

	FPS         int // Frames per second for ticker-driven loops
	LoadWorkers int // Concurrent asset loads (0 = one per asset)
	RenderJobs  int // Projection parallelism (0 = CPU count)
}

// DefaultConfig returns the stock scene: two models, a hemisphere light and
// a camera five units back from the origin
func DefaultConfig() Config {
	return Config{
		Width:          800,
		Height:         600,
		FOV:            75,
		Near:           0.1,
		Far:            1000,
		CameraPosition: mgl32.Vec3{0, 0, 5},
		Assets:         []string{"teddy_bear.glb", "tree_road.glb"},
		AssetBase:      ".",
		SkyColor:       0xffffbb,
		GroundColor:    0x080820,
		LightIntensity: 1,
		FPS:            60,
		LoadWorkers:    0,
		RenderJobs:     0,
	}
}
