// Package artifact discovers the libraries, binaries and examples of a
// package
package artifact

import (
	"path/filepath"

	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/manifest"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
)

// Convention paths, relative to the package root
const (
	MainBinPath = "src/main.rs"
	MainLibPath = "src/lib.rs"
	BinDir      = "src/bin"
	ExampleDir  = "examples"
)

// Discover builds the artifact set of the package rooted at root. Declared
// targets come first in declaration order and always win over discovered
// files of the same name.
func Discover(root string, m *manifest.Manifest, packageName string, log logger.Logger) (Set, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if err := checkDuplicates(m.Bins, types.DuplicateBin); err != nil {
		return Set{}, err
	}
	if err := checkDuplicates(m.Examples, types.DuplicateExample); err != nil {
		return Set{}, err
	}

	bins := newCollector(types.ArtifactKindBin, log)
	for _, bin := range m.Bins {
		path, ok := declaredPath(root, BinDir, bin)
		if !ok {
			return Set{}, types.BinNotFound(bin.Name)
		}
		bins.declare(bin.Name, path)
	}

	examples := newCollector(types.ArtifactKindExample, log)
	for _, example := range m.Examples {
		path, ok := declaredPath(root, ExampleDir, example)
		if !ok {
			return Set{}, types.ExampleNotFound(example.Name)
		}
		examples.declare(example.Name, path)
	}

	if m.AutoBins() {
		if utils.FileExists(filepath.Join(root, MainBinPath)) {
			bins.discover(packageName, MainBinPath)
		}
		if err := bins.discoverDir(root, BinDir); err != nil {
			return Set{}, err
		}
	}

	if m.AutoExamples() {
		if err := examples.discoverDir(root, ExampleDir); err != nil {
			return Set{}, err
		}
	}

	return Set{
		Lib:      discoverLib(root, m, packageName),
		Bins:     bins.items,
		Examples: examples.items,
	}, nil
}

func checkDuplicates(targets []manifest.Target, conflict func(string) error) error {
	seen := make(map[string]bool, len(targets))
	for _, target := range targets {
		if seen[target.Name] {
			return conflict(target.Name)
		}
		seen[target.Name] = true
	}
	return nil
}

// declaredPath returns the source of a declared target relative to root:
// the explicit path, else `<dir>/<name>.rs`, else `<dir>/<name>/main.rs`
func declaredPath(root, dir string, target manifest.Target) (string, bool) {
	if target.Path != "" {
		return utils.RelativeTo(root, target.Path), true
	}

	candidates := []string{
		filepath.Join(dir, target.Name+utils.SourceExtension),
		filepath.Join(dir, target.Name, "main"+utils.SourceExtension),
	}
	for _, candidate := range candidates {
		if utils.FileExists(filepath.Join(root, candidate)) {
			return candidate, true
		}
	}
	return "", false
}

func discoverLib(root string, m *manifest.Manifest, packageName string) *types.Artifact {
	if lib := m.Lib; lib != nil {
		artifact := &types.Artifact{
			Name: lib.Name,
			Path: lib.Path,
			Kind: types.ArtifactKindLib,
		}
		if artifact.Name == "" {
			artifact.Name = packageName
		}
		if artifact.Path == "" {
			artifact.Path = filepath.FromSlash(MainLibPath)
		} else {
			artifact.Path = utils.RelativeTo(root, artifact.Path)
		}
		return artifact
	}

	if utils.FileExists(filepath.Join(root, MainLibPath)) {
		return &types.Artifact{
			Name: packageName,
			Path: filepath.FromSlash(MainLibPath),
			Kind: types.ArtifactKindLib,
		}
	}
	return nil
}

// collector accumulates the artifacts of one kind, tracking the names and
// source paths already taken
type collector struct {
	kind  types.ArtifactKind
	log   logger.Logger
	items []types.Artifact
	names map[string]bool
	paths map[string]bool
}

func newCollector(kind types.ArtifactKind, log logger.Logger) *collector {
	return &collector{
		kind:  kind,
		log:   log,
		names: make(map[string]bool),
		paths: make(map[string]bool),
	}
}

func (c *collector) declare(name, path string) {
	path = filepath.Clean(filepath.FromSlash(path))
	c.items = append(c.items, types.Artifact{Name: name, Path: path, Kind: c.kind})
	c.names[name] = true
	c.paths[path] = true
	c.log.Debug("Declared artifact",
		logger.WithField("kind", c.kind),
		logger.WithField("name", name),
		logger.WithField("path", path))
}

func (c *collector) discover(name, path string) {
	path = filepath.Clean(filepath.FromSlash(path))
	if c.paths[path] {
		c.log.Debug("Source already claimed by a declared target",
			logger.WithField("kind", c.kind),
			logger.WithField("path", path))
		return
	}
	if c.names[name] {
		c.log.Debug("Skipping discovered source, name already taken",
			logger.WithField("kind", c.kind),
			logger.WithField("name", name),
			logger.WithField("path", path))
		return
	}

	c.items = append(c.items, types.Artifact{Name: name, Path: path, Kind: c.kind})
	c.names[name] = true
	c.paths[path] = true
	c.log.Debug("Discovered artifact",
		logger.WithField("kind", c.kind),
		logger.WithField("name", name),
		logger.WithField("path", path))
}

func (c *collector) discoverDir(root, dir string) error {
	abs := filepath.Join(root, dir)
	files, err := utils.ListSourceFiles(abs)
	if err != nil {
		return types.IOError(abs, err)
	}
	for _, file := range files {
		c.discover(file.Name, utils.RelativeTo(root, file.Path))
	}
	return nil
}
