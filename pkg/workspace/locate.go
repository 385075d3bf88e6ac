// Package workspace locates project descriptors and selects the package to
// build
package workspace

import (
	"os"
	"path/filepath"

	"github.com/cratekit/cratekit/pkg/manifest"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
)

// FindManifest returns the nearest Cargo.toml in searchDir or any of its
// ancestors
func FindManifest(searchDir string) (manifest.Located, error) {
	for dir := range utils.Ancestors(searchDir) {
		path := filepath.Join(dir, manifest.FileName)
		if !utils.FileExists(path) {
			continue
		}
		m, err := manifest.ParseFromTOML(path)
		if err != nil {
			return manifest.Located{}, err
		}
		return manifest.Located{Path: path, Manifest: m}, nil
	}
	return manifest.Located{}, types.ManifestNotFound(searchDir)
}

// FindWorkspace returns the nearest Cargo.toml declaring `[workspace]` in
// searchDir or any of its ancestors. The boolean is false when there is none.
func FindWorkspace(searchDir string) (manifest.Located, bool, error) {
	for dir := range utils.Ancestors(searchDir) {
		path := filepath.Join(dir, manifest.FileName)
		if !utils.FileExists(path) {
			continue
		}
		m, err := manifest.ParseFromTOML(path)
		if err != nil {
			return manifest.Located{}, false, err
		}
		if m.Workspace != nil {
			return manifest.Located{Path: path, Manifest: m}, true, nil
		}
	}
	return manifest.Located{}, false, nil
}

// Location is the outcome of the descriptor search
type Location struct {
	// Potential is the descriptor named by the caller or nearest to the
	// working directory
	Potential manifest.Located
	// Workspace is the nearest enclosing workspace root, if HasWorkspace
	Workspace    manifest.Located
	HasWorkspace bool
}

// Locate finds the potential descriptor and the enclosing workspace root.
// A non-empty manifestPath must name an existing Cargo.toml; a relative one is
// taken from workDir. Otherwise the search starts at workDir.
func Locate(manifestPath, workDir string) (Location, error) {
	var (
		loc       Location
		searchDir string
	)

	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Location{}, types.IOError(".", err)
		}
		workDir = wd
	}

	if manifestPath != "" {
		manifestPath = utils.AbsFrom(workDir, manifestPath)
		if filepath.Base(manifestPath) != manifest.FileName || !utils.FileExists(manifestPath) {
			return Location{}, types.ManifestPathNotFound(manifestPath)
		}
		dir, err := utils.Canonicalize(filepath.Dir(manifestPath))
		if err != nil {
			return Location{}, types.IOError(manifestPath, err)
		}
		path := filepath.Join(dir, manifest.FileName)
		m, err := manifest.ParseFromTOML(path)
		if err != nil {
			return Location{}, err
		}
		loc.Potential = manifest.Located{Path: path, Manifest: m}
		searchDir = dir
	} else {
		dir, err := utils.Canonicalize(workDir)
		if err != nil {
			return Location{}, types.IOError(workDir, err)
		}
		potential, err := FindManifest(dir)
		if err != nil {
			return Location{}, err
		}
		loc.Potential = potential
		searchDir = dir
	}

	ws, ok, err := FindWorkspace(searchDir)
	if err != nil {
		return Location{}, err
	}
	loc.Workspace = ws
	loc.HasWorkspace = ok
	return loc, nil
}
