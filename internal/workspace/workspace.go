// Package workspace discovers requirements manifests in a project tree.
package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxDepth bounds how deep Discover descends below the root.
const MaxDepth = 3

// PythonMarker represents a file or directory that indicates a Python project.
type PythonMarker struct {
	// Name is the file or directory name to look for.
	Name string
	// IsDir indicates whether this is a directory marker.
	IsDir bool
}

// DefaultPythonMarkers are the markers checked by IsPythonProject.
var DefaultPythonMarkers = []PythonMarker{
	{Name: "pyproject.toml"},
	{Name: "setup.py"},
	{Name: "setup.cfg"},
	{Name: "requirements.txt"},
	{Name: "Pipfile"},
	{Name: "tox.ini"},
	{Name: ".venv", IsDir: true},
}

// skipDirs are directory names Discover never descends into.
var skipDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"node_modules":  true,
	"__pycache__":   true,
	".tox":          true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	"site-packages": true,
	".mypy_cache":   true,
	".pytest_cache": true,
}

// Manifest is one requirements file found in the workspace.
type Manifest struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`
	// Rel is the path relative to the discovery root.
	Rel string `json:"rel"`
}

// Discover finds requirements manifests under root, at most MaxDepth
// levels deep. It recognizes requirements.txt, requirements-*.txt,
// constraints.txt, and any .txt file inside a requirements/ directory.
// Results are sorted by relative path.
func Discover(root string) ([]Manifest, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrNotExist
	}

	var manifests []Manifest
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if path == absRoot {
				return err
			}
			return fs.SkipDir
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if path != absRoot && skipDirs[d.Name()] {
				return fs.SkipDir
			}
			if depth(rel) > MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if isManifestName(d.Name(), filepath.Base(filepath.Dir(path))) {
			manifests = append(manifests, Manifest{Path: path, Rel: filepath.ToSlash(rel)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Rel < manifests[j].Rel
	})
	return manifests, nil
}

// depth counts path separators in a relative path; "." is depth 0.
func depth(rel string) int {
	if rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// isManifestName reports whether a file name is a requirements
// manifest, given the name of its parent directory.
func isManifestName(name, parent string) bool {
	switch {
	case name == "requirements.txt" || name == "constraints.txt":
		return true
	case strings.HasPrefix(name, "requirements-") && strings.HasSuffix(name, ".txt"):
		return true
	case parent == "requirements" && strings.HasSuffix(name, ".txt"):
		return true
	default:
		return false
	}
}

// IsPythonProject reports whether a directory looks like a Python
// project, based on DefaultPythonMarkers.
func IsPythonProject(dir string) bool {
	for _, marker := range DefaultPythonMarkers {
		info, err := os.Stat(filepath.Join(dir, marker.Name))
		if err != nil {
			continue
		}
		if info.IsDir() == marker.IsDir {
			return true
		}
	}
	return false
}

// DefaultManifest returns the conventional manifest path for a
// directory, whether or not the file exists.
func DefaultManifest(dir string) string {
	return filepath.Join(dir, "requirements.txt")
}
