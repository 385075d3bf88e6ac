package utils

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Globber expands a glob pattern relative to a base directory into the
// ordered list of matching directories
type Globber interface {
	Glob(base, pattern string) ([]string, error)
}

// FSGlobber matches patterns against the real file system
type FSGlobber struct{}

// NewFSGlobber creates a file system globber
func NewFSGlobber() *FSGlobber {
	return &FSGlobber{}
}

// Glob returns the directories under base matching pattern, canonicalized.
// Leading literal segments (including `..`) are resolved directly; the rest
// of the pattern is matched against a directory walk. Symlinked directories
// match like real ones but are not descended into. Zero matches is not an
// error.
func (g *FSGlobber) Glob(base, pattern string) ([]string, error) {
	root, rest := splitLiteralPrefix(base, pattern)
	if len(rest) == 0 {
		if DirectoryExists(root) {
			return canonicalMatches([]string{root})
		}
		return nil, nil
	}

	remainder := strings.Join(rest, "/")
	matcher, err := glob.Compile(remainder, '/')
	if err != nil {
		return nil, err
	}

	if !DirectoryExists(root) {
		return nil, nil
	}

	maxDepth := len(rest)
	if strings.Contains(remainder, "**") {
		maxDepth = -1
	}

	var matches []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) && p != root {
				return fs.SkipDir
			}
			return err
		}
		isDir := d.IsDir()
		if !isDir && d.Type()&fs.ModeSymlink != 0 {
			isDir = DirectoryExists(p)
		}
		if !isDir || p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/") + 1

		if matcher.Match(rel) {
			matches = append(matches, p)
		}
		if !d.IsDir() {
			return nil
		}
		if maxDepth > 0 && depth >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return canonicalMatches(matches)
}

// canonicalMatches resolves symlinks in every match so callers can compare
// them with canonical descriptor directories. Links resolving to the same
// directory collapse into one entry.
func canonicalMatches(paths []string) ([]string, error) {
	seen := make(map[string]bool, len(paths))
	var matches []string
	for _, p := range paths {
		canonical, err := Canonicalize(p)
		if err != nil {
			return nil, err
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		matches = append(matches, canonical)
	}
	sort.Strings(matches)
	return matches, nil
}

// MapGlobber serves glob results from memory. Keys are "base|pattern".
type MapGlobber struct {
	Results map[string][]string
}

// NewMapGlobber creates an in-memory globber
func NewMapGlobber() *MapGlobber {
	return &MapGlobber{Results: make(map[string][]string)}
}

// Add registers the matches of pattern under base
func (g *MapGlobber) Add(base, pattern string, matches ...string) *MapGlobber {
	g.Results[base+"|"+pattern] = matches
	return g
}

// Glob returns the registered matches, or none
func (g *MapGlobber) Glob(base, pattern string) ([]string, error) {
	matches := append([]string(nil), g.Results[base+"|"+pattern]...)
	sort.Strings(matches)
	return matches, nil
}

// HasMeta reports whether a pattern segment contains glob syntax
func HasMeta(segment string) bool {
	return strings.ContainsAny(segment, "*?[{")
}

// splitLiteralPrefix joins the leading literal segments of pattern onto base
// and returns the remaining segments
func splitLiteralPrefix(base, pattern string) (string, []string) {
	pattern = filepath.ToSlash(pattern)
	root := base
	if path.IsAbs(pattern) {
		root = string(filepath.Separator)
	}

	var segments []string
	for _, s := range strings.Split(pattern, "/") {
		if s != "" && s != "." {
			segments = append(segments, s)
		}
	}

	i := 0
	for ; i < len(segments) && !HasMeta(segments[i]); i++ {
		root = filepath.Join(root, segments[i])
	}
	return root, segments[i:]
}
