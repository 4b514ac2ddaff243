package main

import (
	"testing"
)

func TestCommands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"view", "render", "serve", "inspect"} {
		if app.Command(name) == nil {
			t.Errorf("Missing command %q", name)
		}
	}
}

func TestInspectMissingAsset(t *testing.T) {
	err := newApp().Run([]string{"go-scene-viewer", "inspect", "--base", t.TempDir(), "missing.glb"})
	if err == nil {
		t.Error("Expected an error for a missing asset")
	}
}

func TestRenderRejectsInvalidSize(t *testing.T) {
	err := newApp().Run([]string{"go-scene-viewer", "render", "--width", "0", "--out", t.TempDir() + "/frame.png"})
	if err == nil {
		t.Error("Expected an error for a zero width")
	}
}
