// Package manifest parses Cargo.toml project descriptors
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
	"github.com/pelletier/go-toml"
)

// FileName is the name of a project descriptor
const FileName = "Cargo.toml"

// Manifest is a parsed project descriptor
type Manifest struct {
	Workspace *Workspace `toml:"workspace"`
	Package   *Package   `toml:"package"`
	Lib       *Lib       `toml:"lib"`
	Bins      []Target   `toml:"bin"`
	Examples  []Target   `toml:"example"`
}

// Workspace is the `[workspace]` section
type Workspace struct {
	Members        []string `toml:"members"`
	DefaultMembers []string `toml:"default-members"`
}

// Package is the `[package]` section
type Package struct {
	Name         string `toml:"name"`
	AutoBins     bool   `toml:"autobins"`
	AutoExamples bool   `toml:"autoexamples"`
}

// Lib is the `[lib]` section
type Lib struct {
	Name      string   `toml:"name"`
	Path      string   `toml:"path"`
	CrateType []string `toml:"crate-type"`
}

// Target is a `[[bin]]` or `[[example]]` declaration
type Target struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// ParseFromTOML reads and decodes the descriptor at path
func ParseFromTOML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.IOError(path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, types.ParseError(path, err)
	}
	return m, nil
}

// Parse decodes descriptor contents
func Parse(data []byte) (*Manifest, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	if err := tree.Unmarshal(m); err != nil {
		return nil, err
	}

	// Sections are present exactly when their table is, even when empty
	if !tree.Has("workspace") {
		m.Workspace = nil
	} else if m.Workspace == nil {
		m.Workspace = &Workspace{}
	}
	if !tree.Has("package") {
		m.Package = nil
	}
	if !tree.Has("lib") {
		m.Lib = nil
	} else if m.Lib == nil {
		m.Lib = &Lib{}
	}

	// autobins and autoexamples default to true
	if m.Package != nil {
		if !tree.Has("package.autobins") {
			m.Package.AutoBins = true
		}
		if !tree.Has("package.autoexamples") {
			m.Package.AutoExamples = true
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if m.Package != nil && m.Package.Name == "" {
		return errors.New("missing field `name` in `[package]`")
	}
	for i, bin := range m.Bins {
		if bin.Name == "" {
			return fmt.Errorf("binary target %d: missing field `name`", i)
		}
	}
	for i, example := range m.Examples {
		if example.Name == "" {
			return fmt.Errorf("example target %d: missing field `name`", i)
		}
	}
	return nil
}

// IsVirtual reports whether the descriptor declares a workspace but no package
func (m *Manifest) IsVirtual() bool {
	return m.Workspace != nil && m.Package == nil
}

// AutoBins reports whether binaries are discovered by convention
func (m *Manifest) AutoBins() bool {
	return m.Package == nil || m.Package.AutoBins
}

// AutoExamples reports whether examples are discovered by convention
func (m *Manifest) AutoExamples() bool {
	return m.Package == nil || m.Package.AutoExamples
}

// Located is a descriptor together with the path it was read from
type Located struct {
	Path     string
	Manifest *Manifest
}

// Dir returns the directory containing the descriptor
func (l Located) Dir() string {
	return filepath.Dir(l.Path)
}

// Member is a workspace member package
type Member struct {
	Dir string
	Located
}

// Members expands the workspace member patterns under workspaceRoot. Every
// match must hold a descriptor with a package and without a nested workspace.
func (m *Manifest) Members(workspaceRoot string, globber utils.Globber) ([]Member, error) {
	if m.Workspace == nil {
		return nil, nil
	}
	return expandMembers(workspaceRoot, m.Workspace.Members, globber)
}

// DefaultMembers expands the workspace `default-members` patterns
func (m *Manifest) DefaultMembers(workspaceRoot string, globber utils.Globber) ([]Member, error) {
	if m.Workspace == nil {
		return nil, nil
	}
	return expandMembers(workspaceRoot, m.Workspace.DefaultMembers, globber)
}

func expandMembers(workspaceRoot string, patterns []string, globber utils.Globber) ([]Member, error) {
	root, err := utils.Canonicalize(workspaceRoot)
	if err != nil {
		return nil, types.IOError(workspaceRoot, err)
	}

	seen := make(map[string]bool)
	var members []Member
	for _, pattern := range patterns {
		dirs, err := globber.Glob(root, pattern)
		if err != nil {
			return nil, types.GlobPatternError(pattern, err)
		}

		for _, dir := range dirs {
			if seen[dir] {
				continue
			}
			seen[dir] = true

			path := filepath.Join(dir, FileName)
			if !utils.FileExists(path) {
				return nil, types.MissingWorkspaceMember(dir)
			}
			member, err := ParseFromTOML(path)
			if err != nil {
				return nil, err
			}
			// Members cannot contain a workspace of their own, and so cannot
			// be virtual either
			if member.Workspace != nil {
				return nil, types.UnexpectedWorkspace(path)
			}
			if member.Package == nil {
				return nil, types.NoPackageInManifest(path)
			}
			members = append(members, Member{Dir: dir, Located: Located{Path: path, Manifest: member}})
		}
	}

	sort.Slice(members, func(i, j int) bool { return members[i].Dir < members[j].Dir })
	return members, nil
}

// MapNonvirtualPackage selects the descriptor's own package when it stands
// outside any workspace. A non-empty name must match the package name.
func (m *Manifest) MapNonvirtualPackage(path, name string) (Located, error) {
	if m.Workspace != nil {
		return Located{}, types.UnexpectedWorkspace(path)
	}
	if m.Package == nil {
		return Located{}, types.NoPackageInManifest(path)
	}
	if name != "" && m.Package.Name != name {
		return Located{}, types.PackageNotFound(path, name)
	}
	return Located{Path: path, Manifest: m}, nil
}
