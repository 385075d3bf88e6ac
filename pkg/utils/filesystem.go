// Package utils provides file system and pattern helpers for the resolver
package utils

import (
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExtension is the file extension of compilable sources
const SourceExtension = ".rs"

// Ancestors returns the directories from dir up to the file system root,
// starting with dir itself. The sequence is lazy and every range over it
// starts again from dir.
func Ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		current := filepath.Clean(dir)
		for {
			if !yield(current) {
				return
			}
			parent := filepath.Dir(current)
			if parent == current {
				return
			}
			current = parent
		}
	}
}

// Canonicalize returns the absolute, symlink-resolved form of path. The path
// must exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SourceFile is a source discovered in a convention directory
type SourceFile struct {
	// Name is the file stem, or the directory name for `<name>/main.rs`
	Name string
	// Path is the absolute path of the source file
	Path string
}

// ListSourceFiles lists the sources directly inside dir: every `*.rs` file
// and every subdirectory holding a `main.rs`. A missing directory yields no
// sources. Results are sorted by name.
func ListSourceFiles(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []SourceFile
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			main := filepath.Join(path, "main"+SourceExtension)
			if FileExists(main) {
				files = append(files, SourceFile{Name: entry.Name(), Path: main})
			}
			continue
		}
		if filepath.Ext(entry.Name()) != SourceExtension || !FileExists(path) {
			continue
		}
		files = append(files, SourceFile{
			Name: strings.TrimSuffix(entry.Name(), SourceExtension),
			Path: path,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Name == files[j].Name {
			return files[i].Path < files[j].Path
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// RelativeTo returns path relative to root when path lies under root, and
// path unchanged otherwise
func RelativeTo(root, path string) string {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// AbsFrom makes path absolute against base when it is relative
func AbsFrom(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
