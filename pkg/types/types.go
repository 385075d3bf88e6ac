// Package types provides the core types shared by the cratekit resolver
package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ArtifactKind represents the kind of a build artifact
type ArtifactKind string

const (
	ArtifactKindLib     ArtifactKind = "lib"
	ArtifactKindBin     ArtifactKind = "bin"
	ArtifactKindExample ArtifactKind = "example"
)

// CrateType represents the output format requested for an artifact
type CrateType string

const (
	CrateTypeBin       CrateType = "bin"
	CrateTypeLib       CrateType = "lib"
	CrateTypeStaticlib CrateType = "staticlib"
	CrateTypeCdylib    CrateType = "cdylib"
)

// ParseCrateType parses a crate type name
func ParseCrateType(s string) (CrateType, error) {
	switch CrateType(s) {
	case CrateTypeBin, CrateTypeLib, CrateTypeStaticlib, CrateTypeCdylib:
		return CrateType(s), nil
	case "rlib":
		return CrateTypeLib, nil
	default:
		return "", fmt.Errorf("unknown crate type: %s", s)
	}
}

// DefaultCrateType returns the crate type an artifact kind is built as when
// the caller does not ask for a specific one
func DefaultCrateType(kind ArtifactKind) CrateType {
	if kind == ArtifactKindLib {
		return CrateTypeLib
	}
	return CrateTypeBin
}

// Artifact is one concrete build unit of a package
type Artifact struct {
	Name string       `json:"name" yaml:"name"`
	Path string       `json:"path" yaml:"path"` // relative to the package root
	Kind ArtifactKind `json:"kind" yaml:"kind"`
}

// BuildDir returns the subdirectory of the profile directory the artifact is
// written to
func (a Artifact) BuildDir() string {
	if a.Kind == ArtifactKindExample {
		return "examples"
	}
	return ""
}

// Supports reports whether the artifact can be built as ct
func (a Artifact) Supports(ct CrateType) bool {
	switch ct {
	case CrateTypeBin:
		return a.Kind == ArtifactKindBin || a.Kind == ArtifactKindExample
	case CrateTypeLib, CrateTypeStaticlib, CrateTypeCdylib:
		return a.Kind == ArtifactKindLib || a.Kind == ArtifactKindExample
	}
	return false
}

// FileName returns the output file name of the artifact for the given crate
// type and target triple. It panics on a kind/crate type pair that cannot be
// built.
func (a Artifact) FileName(ct CrateType, triple string) string {
	switch {
	case (a.Kind == ArtifactKindBin || a.Kind == ArtifactKindExample) && ct == CrateTypeBin:
		switch {
		case strings.Contains(triple, "windows"):
			return a.Name + ".exe"
		case strings.Contains(triple, "wasm"):
			return a.Name + ".wasm"
		default:
			return a.Name
		}
	case a.Kind == ArtifactKindLib || a.Kind == ArtifactKindExample:
		name := strings.ReplaceAll(a.Name, "-", "_")
		switch ct {
		case CrateTypeLib:
			return "lib" + name + ".rlib"
		case CrateTypeStaticlib:
			return "lib" + name + ".a"
		case CrateTypeCdylib:
			return "lib" + name + ".so"
		}
	}
	panic(fmt.Sprintf("%s artifact %q is not compatible with crate type %s", a.Kind, a.Name, ct))
}

// SourcePath returns the absolute source path of the artifact under root
func (a Artifact) SourcePath(root string) string {
	if filepath.IsAbs(a.Path) {
		return a.Path
	}
	return filepath.Join(root, a.Path)
}

// Profile is a named build configuration
type Profile struct {
	name string
}

var (
	ProfileDev     = Profile{name: "dev"}
	ProfileRelease = Profile{name: "release"}
)

// ParseProfile returns the profile with the given name. Names other than the
// two built-in profiles are custom profiles.
func ParseProfile(name string) Profile {
	return Profile{name: name}
}

// String returns the profile name
func (p Profile) String() string {
	if p.name == "" {
		return ProfileDev.name
	}
	return p.name
}

// Dir returns the output directory name of the profile
func (p Profile) Dir() string {
	switch p.String() {
	case "dev":
		return "debug"
	case "release":
		return "release"
	default:
		return p.name
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Profile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Filter is the parsed set of options that selects what gets resolved
type Filter struct {
	Package      string   `json:"package,omitempty" yaml:"package,omitempty"`
	ManifestPath string   `json:"manifestPath,omitempty" yaml:"manifestPath,omitempty"`
	TargetDir    string   `json:"targetDir,omitempty" yaml:"targetDir,omitempty"`
	Target       string   `json:"target,omitempty" yaml:"target,omitempty"`
	Profile      string   `json:"profile,omitempty" yaml:"profile,omitempty"`
	Release      bool     `json:"release,omitempty" yaml:"release,omitempty"`
	Bins         []string `json:"bins,omitempty" yaml:"bins,omitempty"`
	Examples     []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	AllBins      bool     `json:"allBins,omitempty" yaml:"allBins,omitempty"`
	AllExamples  bool     `json:"allExamples,omitempty" yaml:"allExamples,omitempty"`
	Lib          bool     `json:"lib,omitempty" yaml:"lib,omitempty"`
	Quiet        bool     `json:"quiet,omitempty" yaml:"quiet,omitempty"`
}

// SpecificTargetSelected reports whether the filter names any target at all
func (f Filter) SpecificTargetSelected() bool {
	return f.Lib || f.AllBins || f.AllExamples || len(f.Bins) > 0 || len(f.Examples) > 0
}

// CargoArgs renders the filter back into the flags a cargo invocation
// accepts, so a resolved request can be forwarded unchanged
func (f Filter) CargoArgs() []string {
	var args []string
	if f.Quiet {
		args = append(args, "--quiet")
	}
	if f.Release {
		args = append(args, "--release")
	}
	if f.Target != "" {
		args = append(args, "--target", f.Target)
	}
	if f.Profile != "" {
		args = append(args, "--profile", f.Profile)
	}
	for _, example := range f.Examples {
		args = append(args, "--example", example)
	}
	if f.AllExamples {
		args = append(args, "--examples")
	}
	for _, bin := range f.Bins {
		args = append(args, "--bin", bin)
	}
	if f.AllBins {
		args = append(args, "--bins")
	}
	if f.Lib {
		args = append(args, "--lib")
	}
	if f.Package != "" {
		args = append(args, "--package", f.Package)
	}
	if f.TargetDir != "" {
		args = append(args, "--target-dir", f.TargetDir)
	}
	if f.ManifestPath != "" {
		args = append(args, "--manifest-path", f.ManifestPath)
	}
	return args
}

// ResolveProfile returns the profile selected by the filter
func (f Filter) ResolveProfile() Profile {
	if f.Profile != "" {
		return ParseProfile(f.Profile)
	}
	if f.Release {
		return ProfileRelease
	}
	return ProfileDev
}

// ArtifactOutput pairs an artifact with its resolved output path
type ArtifactOutput struct {
	Artifact   `yaml:",inline"`
	CrateType  CrateType `json:"crateType" yaml:"crateType"`
	OutputPath string    `json:"outputPath" yaml:"outputPath"`
}

// ProjectSnapshot is a plain, serializable view of a resolved project
type ProjectSnapshot struct {
	Package           string           `json:"package" yaml:"package"`
	Manifest          string           `json:"manifest" yaml:"manifest"`
	WorkspaceManifest string           `json:"workspaceManifest,omitempty" yaml:"workspaceManifest,omitempty"`
	Target            string           `json:"target,omitempty" yaml:"target,omitempty"`
	HostTriple        string           `json:"hostTriple" yaml:"hostTriple"`
	Profile           string           `json:"profile" yaml:"profile"`
	TargetDir         string           `json:"targetDir" yaml:"targetDir"`
	Artifacts         []ArtifactOutput `json:"artifacts" yaml:"artifacts"`
}
