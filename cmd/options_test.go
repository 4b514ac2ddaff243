package cmd

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"

	"github.com/df07/go-scene-viewer/pkg/app"
)

// parseArgs runs a cli app with SceneFlags and returns the resulting config
func parseArgs(t *testing.T, args ...string) (app.Config, error) {
	t.Helper()
	var cfg app.Config
	var cfgErr error

	cliApp := cli.NewApp()
	cliApp.Flags = SceneFlags
	cliApp.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = configFromContext(ctx)
		return nil
	}
	if err := cliApp.Run(append([]string{"test"}, args...)); err != nil {
		t.Fatalf("cli run failed: %v", err)
	}
	return cfg, cfgErr
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := parseArgs(t)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := app.DefaultConfig()
	if cfg.Width != want.Width || cfg.Height != want.Height || cfg.FOV != want.FOV {
		t.Errorf("Unexpected viewport %dx%d fov %f", cfg.Width, cfg.Height, cfg.FOV)
	}
	if cfg.SkyColor != 0xffffbb || cfg.GroundColor != 0x080820 || cfg.LightIntensity != 1 {
		t.Errorf("Unexpected light %06x %06x %f", cfg.SkyColor, cfg.GroundColor, cfg.LightIntensity)
	}
	if cfg.CameraPosition != (mgl32.Vec3{0, 0, 5}) {
		t.Errorf("Unexpected camera position %v", cfg.CameraPosition)
	}
	if len(cfg.Assets) != 2 || cfg.Assets[0] != "teddy_bear.glb" || cfg.Assets[1] != "tree_road.glb" {
		t.Errorf("Unexpected default assets %v", cfg.Assets)
	}
}

func TestConfigOverrides(t *testing.T) {
	cfg, err := parseArgs(t, "--width", "320", "--height", "240", "--sky", "#ff0000",
		"--distance", "10", "--base", "https://example.com/models", "a.glb", "b.gltf", "c.glb")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("Unexpected size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.SkyColor != 0xff0000 {
		t.Errorf("Unexpected sky color %06x", cfg.SkyColor)
	}
	if cfg.CameraPosition != (mgl32.Vec3{0, 0, 10}) {
		t.Errorf("Unexpected camera position %v", cfg.CameraPosition)
	}
	if cfg.AssetBase != "https://example.com/models" {
		t.Errorf("Unexpected base %q", cfg.AssetBase)
	}
	if len(cfg.Assets) != 3 || cfg.Assets[2] != "c.glb" {
		t.Errorf("Unexpected assets %v", cfg.Assets)
	}
}

func TestConfigEnvironment(t *testing.T) {
	t.Setenv("SCENE_VIEWER_WIDTH", "1024")
	t.Setenv("SCENE_VIEWER_FPS", "30")

	cfg, err := parseArgs(t)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Width != 1024 || cfg.FPS != 30 {
		t.Errorf("Expected environment overrides, got width %d fps %d", cfg.Width, cfg.FPS)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero width", []string{"--width", "0"}},
		{"negative height", []string{"--height", "-1"}},
		{"fov too wide", []string{"--fov", "180"}},
		{"bad sky", []string{"--sky", "yellow"}},
		{"short ground", []string{"--ground", "fff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(t, tt.args...); err == nil {
				t.Errorf("Expected an error for %v", tt.args)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"ffffbb", 0xffffbb, false},
		{"#080820", 0x080820, false},
		{"0xFF00FF", 0xff00ff, false},
		{"12345", 0, true},
		{"gggggg", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseHexColor(%q) = %06x, want %06x", tt.in, got, tt.want)
			}
		})
	}
}
