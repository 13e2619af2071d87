// Package discover finds keystores and signing properties files in a project.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	keystorePattern   = "**/*.{jks,keystore,p12,pfx}"
	propertiesPattern = "**/key.properties"
)

// Directories that only contain generated or third-party files.
var ignoredDirs = []string{"build", ".gradle", ".dart_tool", "node_modules", ".git", "Pods"}

type Candidates struct {
	// Keystores relative to the root.
	Keystores []string
	// PropertiesFiles relative to the root.
	PropertiesFiles []string
}

// Find candidate keystores and key.properties files under root.
func Find(root string) (Candidates, error) {
	fsys := os.DirFS(root)
	keystores, err := glob(fsys, keystorePattern)
	if err != nil {
		return Candidates{}, err
	}
	props, err := glob(fsys, propertiesPattern)
	if err != nil {
		return Candidates{}, err
	}
	return Candidates{Keystores: keystores, PropertiesFiles: props}, nil
}

func glob(fsys fs.FS, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pattern, err)
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		if !ignored(match) {
			out = append(out, filepath.FromSlash(match))
		}
	}
	sort.Strings(out)
	return out, nil
}

func ignored(path string) bool {
	for _, part := range strings.Split(path, "/") {
		for _, dir := range ignoredDirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}
