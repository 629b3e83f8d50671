// Package manifest handles squib.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultCachePath is where the image cache database lives when the
// manifest does not say otherwise, relative to the manifest directory.
const DefaultCachePath = ".squib/cache.db"

// Manifest represents a squib.toml project configuration.
type Manifest struct {
	Project Project          `toml:"project"`
	Cache   Cache            `toml:"cache"`
	Images  map[string]Image `toml:"images"`

	// Dir is the directory containing the squib.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Cache configures the image cache database.
type Cache struct {
	Path string `toml:"path"`
}

// Image is a named compiled-image artifact the project produces or
// consumes.
type Image struct {
	Path string `toml:"path"`
}

// Load parses a squib.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "squib.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Cache.Path == "" {
		m.Cache.Path = DefaultCachePath
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a squib.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "squib.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// CachePath returns the absolute path of the image cache database.
func (m *Manifest) CachePath() string {
	if filepath.IsAbs(m.Cache.Path) {
		return m.Cache.Path
	}
	return filepath.Join(m.Dir, m.Cache.Path)
}

// ImagePath returns the absolute path of a named image, or "" if the
// manifest does not declare it.
func (m *Manifest) ImagePath(name string) string {
	img, ok := m.Images[name]
	if !ok {
		return ""
	}
	if filepath.IsAbs(img.Path) {
		return img.Path
	}
	return filepath.Join(m.Dir, img.Path)
}
