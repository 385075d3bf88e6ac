package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the resolver matches exactly one of
// these with errors.Is.
var (
	// ErrNotFound indicates a descriptor, target or package could not be found
	ErrNotFound = errors.New("not found")

	// ErrStructure indicates descriptors that are individually valid but
	// inconsistent with each other
	ErrStructure = errors.New("structural violation")

	// ErrConflict indicates two declarations claiming the same name
	ErrConflict = errors.New("conflict")

	// ErrIO indicates an underlying file system failure
	ErrIO = errors.New("i/o failure")

	// ErrParse indicates malformed file content
	ErrParse = errors.New("parse failure")

	// ErrEnv indicates an environment variable could not be resolved
	ErrEnv = errors.New("environment resolution failure")
)

// ResolveError carries the kind of a failure together with the path or name
// it concerns
type ResolveError struct {
	Kind error
	Msg  string
	Path string
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	var b strings.Builder
	if e.Path != "" && e.Msg == "" {
		b.WriteString(e.Path)
	} else {
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *ResolveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ManifestNotFound is returned when no Cargo.toml exists in any ancestor of dir
func ManifestNotFound(dir string) error {
	return &ResolveError{
		Kind: ErrNotFound,
		Path: dir,
		Msg:  fmt.Sprintf("could not find `Cargo.toml` in `%s` or any parent directory", dir),
	}
}

// ManifestPathNotFound is returned when an explicit manifest path is not an
// existing Cargo.toml file
func ManifestPathNotFound(path string) error {
	return &ResolveError{
		Kind: ErrNotFound,
		Path: path,
		Msg:  fmt.Sprintf("the manifest-path must be a path to a Cargo.toml file: `%s`", path),
	}
}

// BinNotFound is returned when a declared binary has no source file
func BinNotFound(name string) error {
	return &ResolveError{
		Kind: ErrNotFound,
		Name: name,
		Msg:  fmt.Sprintf("can't find `%s` bin at `src/bin/%s.rs` or `src/bin/%s/main.rs`", name, name, name),
	}
}

// ExampleNotFound is returned when a declared example has no source file
func ExampleNotFound(name string) error {
	return &ResolveError{
		Kind: ErrNotFound,
		Name: name,
		Msg:  fmt.Sprintf("can't find `%s` example at `examples/%s.rs` or `examples/%s/main.rs`", name, name, name),
	}
}

// TargetNotFound is returned when the filter requests a target the package
// does not have
func TargetNotFound(kind ArtifactKind, name string) error {
	msg := fmt.Sprintf("no %s target named `%s`", kind, name)
	if kind == ArtifactKindLib {
		msg = "no library targets found"
	}
	return &ResolveError{Kind: ErrNotFound, Name: name, Msg: msg}
}

// PackageNotFound is returned when no package with the requested name exists
// in the workspace (or standalone manifest) at path
func PackageNotFound(path, name string) error {
	return &ResolveError{
		Kind: ErrNotFound,
		Path: path,
		Name: name,
		Msg:  fmt.Sprintf("package `%s` not found in workspace `%s`", name, path),
	}
}

// NoPackageInManifest is returned when a virtual manifest is used as a package
func NoPackageInManifest(path string) error {
	return &ResolveError{
		Kind: ErrStructure,
		Path: path,
		Msg:  fmt.Sprintf("failed to parse manifest at `%s`: virtual manifests must be configured with `[workspace]`", path),
	}
}

// UnexpectedWorkspace is returned when a workspace member declares a nested
// workspace
func UnexpectedWorkspace(path string) error {
	return &ResolveError{
		Kind: ErrStructure,
		Path: path,
		Msg:  fmt.Sprintf("did not expect a `[workspace]` at `%s`", path),
	}
}

// ManifestNotInWorkspace is returned when a manifest believes it stands alone
// but an enclosing workspace does not list it as a member
func ManifestNotInWorkspace(manifest, workspace string) error {
	return &ResolveError{
		Kind: ErrStructure,
		Path: manifest,
		Msg: fmt.Sprintf("current package believes it's in a workspace when it's not: `%s` is not a member of workspace `%s`",
			manifest, workspace),
	}
}

// MissingWorkspaceMember is returned when a member pattern matches a
// directory without a Cargo.toml
func MissingWorkspaceMember(dir string) error {
	return &ResolveError{
		Kind: ErrStructure,
		Path: dir,
		Msg:  fmt.Sprintf("failed to load manifest for workspace member `%s`", dir),
	}
}

// DuplicateBin is returned when two binaries share a name
func DuplicateBin(name string) error {
	return &ResolveError{
		Kind: ErrConflict,
		Name: name,
		Msg:  fmt.Sprintf("found duplicate binary name `%s`, but all binary targets must have a unique name", name),
	}
}

// DuplicateExample is returned when two examples share a name
func DuplicateExample(name string) error {
	return &ResolveError{
		Kind: ErrConflict,
		Name: name,
		Msg:  fmt.Sprintf("found duplicate example name `%s`, but all example targets must have a unique name", name),
	}
}

// IOError wraps a file system failure with the path that failed
func IOError(path string, err error) error {
	return &ResolveError{Kind: ErrIO, Path: path, Err: err}
}

// ParseError wraps a decoding failure with the file that failed
func ParseError(path string, err error) error {
	return &ResolveError{Kind: ErrParse, Path: path, Err: err}
}

// GlobPatternError is returned for a workspace member pattern that does not
// compile
func GlobPatternError(pattern string, err error) error {
	return &ResolveError{
		Kind: ErrParse,
		Name: pattern,
		Msg:  fmt.Sprintf("invalid workspace member pattern `%s`", pattern),
		Err:  err,
	}
}

// EnvNotPresent is returned when a variable is neither configured nor set
func EnvNotPresent(key string) error {
	return &ResolveError{
		Kind: ErrEnv,
		Name: key,
		Msg:  fmt.Sprintf("environment variable `%s` not present", key),
	}
}

// EnvCanonicalize is returned when a relative env value cannot be resolved
// to an existing path
func EnvCanonicalize(key, path string, err error) error {
	return &ResolveError{
		Kind: ErrEnv,
		Path: path,
		Name: key,
		Msg:  fmt.Sprintf("failed to canonicalize `%s` for environment variable `%s`", path, key),
		Err:  err,
	}
}
