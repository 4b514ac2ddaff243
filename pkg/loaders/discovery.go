package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AssetInfo represents a discovered asset file
type AssetInfo struct {
	Name        string `json:"name"`        // File name, as passed to Load
	DisplayName string `json:"displayName"` // UI display name
	Format      string `json:"format"`      // "glb" or "gltf"
	Size        int64  `json:"size"`        // Bytes
}

// ListAssets scans dir for glTF assets. A missing directory or an http(s)
// base yields an empty list.
func ListAssets(dir string) ([]AssetInfo, error) {
	if isURL(dir) {
		return []AssetInfo{}, nil
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return []AssetInfo{}, nil
		}
		return nil, err
	}

	var files []string
	for _, pattern := range []string{"*.glb", "*.gltf"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset directory: %w", err)
		}
		files = append(files, matches...)
	}

	assets := make([]AssetInfo, 0, len(files))
	for _, path := range files {
		fi, err := os.Stat(path)
		if err != nil || fi.IsDir() {
			continue
		}
		name := filepath.Base(path)
		ext := filepath.Ext(name)
		assets = append(assets, AssetInfo{
			Name:        name,
			DisplayName: titleCase(strings.TrimSuffix(name, ext)),
			Format:      strings.TrimPrefix(ext, "."),
			Size:        fi.Size(),
		})
	}

	// Sort assets by display name
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].DisplayName != assets[j].DisplayName {
			return assets[i].DisplayName < assets[j].DisplayName
		}
		return assets[i].Name < assets[j].Name
	})
	return assets, nil
}

// titleCase converts a filename-style string to title case
// e.g., "teddy_bear" -> "Teddy Bear"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
