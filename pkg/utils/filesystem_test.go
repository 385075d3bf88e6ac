package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cratekit/cratekit/pkg/utils"
)

func TestAncestors(t *testing.T) {
	start := filepath.Join(string(filepath.Separator), "a", "b", "c")

	var got []string
	for dir := range utils.Ancestors(start) {
		got = append(got, dir)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 ancestors, got %v", got)
	}
	if got[0] != start {
		t.Errorf("expected sequence to start at %s, got %s", start, got[0])
	}
	if got[3] != string(filepath.Separator) {
		t.Errorf("expected sequence to end at root, got %s", got[3])
	}
}

func TestAncestors_Restartable(t *testing.T) {
	seq := utils.Ancestors(filepath.Join(string(filepath.Separator), "x", "y"))

	for dir := range seq {
		if dir == filepath.Join(string(filepath.Separator), "x", "y") {
			break
		}
	}

	var first string
	for dir := range seq {
		first = dir
		break
	}
	if first != filepath.Join(string(filepath.Separator), "x", "y") {
		t.Errorf("expected restarted sequence to begin at the start dir, got %s", first)
	}
}

func TestListSourceFiles(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "nested", "empty")
	for _, f := range []string{"b.rs", "a.rs", "notes.txt", "nested/main.rs"} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := utils.ListSourceFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a", "b", "nested"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("file %d: expected %s, got %s", i, name, files[i].Name)
		}
	}
	if files[2].Path != filepath.Join(dir, "nested", "main.rs") {
		t.Errorf("unexpected nested path: %s", files[2].Path)
	}
}

func TestListSourceFiles_MissingDir(t *testing.T) {
	files, err := utils.ListSourceFiles(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}

func TestCanonicalize(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	mkdirs(t, dir, "real")
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := utils.Canonicalize(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(target)
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	if _, err := utils.Canonicalize(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestRelativeTo(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "pkg")

	if got := utils.RelativeTo(root, filepath.Join(root, "src", "main.rs")); got != filepath.Join("src", "main.rs") {
		t.Errorf("unexpected relative path: %s", got)
	}
	outside := filepath.Join(string(filepath.Separator), "other", "main.rs")
	if got := utils.RelativeTo(root, outside); got != outside {
		t.Errorf("expected path outside root unchanged, got %s", got)
	}
}
