package utils_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cratekit/cratekit/pkg/utils"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
}

func canonicalTempDir(t *testing.T) string {
	t.Helper()
	root, err := utils.Canonicalize(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestFSGlobber_Glob(t *testing.T) {
	root := canonicalTempDir(t)
	mkdirs(t, root,
		"crates/alpha",
		"crates/beta/nested",
		"crates/gamma",
		"tools/cli",
		"shared",
	)
	if err := os.WriteFile(filepath.Join(root, "crates", "README.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		base    string
		pattern string
		want    []string
	}{
		{
			name:    "single star",
			base:    root,
			pattern: "crates/*",
			want: []string{
				filepath.Join(root, "crates", "alpha"),
				filepath.Join(root, "crates", "beta"),
				filepath.Join(root, "crates", "gamma"),
			},
		},
		{
			name:    "character class",
			base:    root,
			pattern: "crates/[ab]*",
			want: []string{
				filepath.Join(root, "crates", "alpha"),
				filepath.Join(root, "crates", "beta"),
			},
		},
		{
			name:    "literal path",
			base:    root,
			pattern: "tools/cli",
			want:    []string{filepath.Join(root, "tools", "cli")},
		},
		{
			name:    "parent relative",
			base:    filepath.Join(root, "tools"),
			pattern: "../shared",
			want:    []string{filepath.Join(root, "shared")},
		},
		{
			name:    "double star",
			base:    root,
			pattern: "crates/**/nested",
			want:    []string{filepath.Join(root, "crates", "beta", "nested")},
		},
		{
			name:    "missing literal",
			base:    root,
			pattern: "nope",
			want:    nil,
		},
		{
			name:    "missing prefix",
			base:    root,
			pattern: "nope/*",
			want:    nil,
		},
	}

	globber := utils.NewFSGlobber()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := globber.Glob(tt.base, tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFSGlobber_SymlinkedMember(t *testing.T) {
	root := canonicalTempDir(t)
	mkdirs(t, root, "crates/alpha", "external/delta")
	if err := os.Symlink(filepath.Join(root, "external", "delta"), filepath.Join(root, "crates", "delta")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	// a second link to the same directory is reported once
	if err := os.Symlink(filepath.Join("..", "external", "delta"), filepath.Join(root, "crates", "delta2")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{
			name:    "wildcard",
			pattern: "crates/*",
			want: []string{
				filepath.Join(root, "crates", "alpha"),
				filepath.Join(root, "external", "delta"),
			},
		},
		{
			name:    "literal",
			pattern: "crates/delta",
			want:    []string{filepath.Join(root, "external", "delta")},
		},
	}

	globber := utils.NewFSGlobber()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := globber.Glob(root, tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFSGlobber_InvalidPattern(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "crates/a")

	if _, err := utils.NewFSGlobber().Glob(root, "crates/[a"); err == nil {
		t.Error("expected error for unterminated character class")
	}
}

func TestMapGlobber(t *testing.T) {
	g := utils.NewMapGlobber().Add("/ws", "crates/*", "/ws/crates/b", "/ws/crates/a")

	got, _ := g.Glob("/ws", "crates/*")
	want := []string{"/ws/crates/a", "/ws/crates/b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got, _ := g.Glob("/ws", "other/*"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}
