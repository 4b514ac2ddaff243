package loaders

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"teddy_bear", "Teddy Bear"},
		{"tree-road", "Tree Road"},
		{"my-custom_model", "My Custom Model"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListAssets(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"tree_road.glb":  "glb data",
		"teddy_bear.glb": "glb",
		"box.gltf":       "{}",
		"notes.txt":      "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Directories are skipped even with a matching name
	if err := os.Mkdir(filepath.Join(dir, "folder.glb"), 0755); err != nil {
		t.Fatal(err)
	}

	assets, err := ListAssets(dir)
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}

	want := []AssetInfo{
		{Name: "box.gltf", DisplayName: "Box", Format: "gltf", Size: 2},
		{Name: "teddy_bear.glb", DisplayName: "Teddy Bear", Format: "glb", Size: 3},
		{Name: "tree_road.glb", DisplayName: "Tree Road", Format: "glb", Size: 8},
	}
	if len(assets) != len(want) {
		t.Fatalf("Expected %d assets, got %+v", len(want), assets)
	}
	for i := range want {
		if assets[i] != want[i] {
			t.Errorf("Asset %d: expected %+v, got %+v", i, want[i], assets[i])
		}
	}
}

func TestListAssetsMissingDirectory(t *testing.T) {
	assets, err := ListAssets(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("Expected no assets, got %+v", assets)
	}
}
