// Package manifest indexes the 3D model assets available to a
// deployment. The index is a JSON document the import codec checks model
// path references against; the check is pure path matching, never file
// content inspection.
package manifest

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// IndexName is the manifest file written next to the scanned models.
const IndexName = "index.json"

// Manifest lists every usable model asset as an absolute path with a
// leading slash, relative to the public root.
type Manifest struct {
	UpdatedAt string   `json:"updatedAt"`
	Files     []string `json:"files"`
}

// modelExts are the 3D formats the scanner recognizes.
var modelExts = map[string]bool{
	".glb":  true,
	".gltf": true,
	".fbx":  true,
	".obj":  true,
	".dae":  true,
	".skp":  true,
}

// Scan walks publicDir/models recursively and returns a manifest of every
// model file found, paths sorted for a stable index.
func Scan(publicDir string, now time.Time) (Manifest, error) {
	m := Manifest{UpdatedAt: now.UTC().Format(time.RFC3339), Files: []string{}}
	modelsDir := filepath.Join(publicDir, "models")
	err := filepath.WalkDir(modelsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !modelExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		rel, err := filepath.Rel(publicDir, path)
		if err != nil {
			return err
		}
		m.Files = append(m.Files, "/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return m, err
	}
	sort.Strings(m.Files)
	return m, nil
}

// Write stores the manifest as publicDir/models/index.json.
func Write(publicDir string, m Manifest) error {
	path := filepath.Join(publicDir, "models", IndexName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a previously written manifest.
func Load(publicDir string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(filepath.Join(publicDir, "models", IndexName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, err
	}
	return m, nil
}

// Set returns the files as a membership set.
func (m Manifest) Set() map[string]struct{} {
	out := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		out[f] = struct{}{}
	}
	return out
}

// Source supplies the known asset paths to import validation. The fetch
// may be remote, so it takes a context.
type Source interface {
	Files(ctx context.Context) (map[string]struct{}, error)
}

// DirSource reads the manifest from disk on every call, falling back to a
// fresh scan when no index has been written yet.
type DirSource struct {
	PublicDir string
}

func (s DirSource) Files(ctx context.Context) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := Load(s.PublicDir)
	if err != nil {
		if os.IsNotExist(err) {
			m, err = Scan(s.PublicDir, time.Now())
			if err != nil {
				return nil, err
			}
			return m.Set(), nil
		}
		return nil, err
	}
	return m.Set(), nil
}

// StaticSource serves a fixed path set. Used by tests and by imports that
// already hold a manifest.
type StaticSource map[string]struct{}

func (s StaticSource) Files(context.Context) (map[string]struct{}, error) {
	return s, nil
}
