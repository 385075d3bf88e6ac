package subcommand_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/cratekit/cratekit/pkg/config"
	"github.com/cratekit/cratekit/pkg/subcommand"
	"github.com/cratekit/cratekit/pkg/types"
)

func resolveProject(t *testing.T, filter types.Filter) (*subcommand.Subcommand, string) {
	t.Helper()
	root := newProject(t)
	sc, err := subcommand.New(filter,
		subcommand.WithWorkDir(filepath.Join(root, "app")),
		subcommand.WithEnvironment(config.NewMapEnv(nil)),
		subcommand.WithHostTriple("x86_64-unknown-linux-gnu"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sc, filepath.Join(root, "out")
}

func TestBuildDir(t *testing.T) {
	tests := []struct {
		name   string
		filter types.Filter
		target string
		want   []string
	}{
		{"host dev", types.Filter{}, "", []string{"debug"}},
		{"host release", types.Filter{Release: true}, "", []string{"release"}},
		{"custom profile", types.Filter{Profile: "bench-fast"}, "", []string{"bench-fast"}},
		{"cross", types.Filter{}, "wasm32-unknown-unknown", []string{"wasm32-unknown-unknown", "debug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, out := resolveProject(t, tt.filter)
			want := filepath.Join(append([]string{out}, tt.want...)...)
			if got := sc.BuildDir(tt.target); got != want {
				t.Errorf("expected %s, got %s", want, got)
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	sc, out := resolveProject(t, types.Filter{})

	bin := types.Artifact{Name: "tool", Path: "src/bin/tool.rs", Kind: types.ArtifactKindBin}
	example := types.Artifact{Name: "demo-app", Path: "examples/demo-app.rs", Kind: types.ArtifactKindExample}
	lib := types.Artifact{Name: "my-lib", Path: "src/lib.rs", Kind: types.ArtifactKindLib}

	tests := []struct {
		name     string
		artifact types.Artifact
		target   string
		ct       types.CrateType
		want     string
	}{
		{"host bin", bin, "", types.CrateTypeBin, filepath.Join(out, "debug", "tool")},
		{"windows bin", bin, "x86_64-pc-windows-msvc", types.CrateTypeBin, filepath.Join(out, "x86_64-pc-windows-msvc", "debug", "tool.exe")},
		{"wasm bin", bin, "wasm32-unknown-unknown", types.CrateTypeBin, filepath.Join(out, "wasm32-unknown-unknown", "debug", "tool.wasm")},
		{"example bin", example, "", types.CrateTypeBin, filepath.Join(out, "debug", "examples", "demo-app")},
		{"example cdylib", example, "", types.CrateTypeCdylib, filepath.Join(out, "debug", "examples", "libdemo_app.so")},
		{"rlib", lib, "", types.CrateTypeLib, filepath.Join(out, "debug", "libmy_lib.rlib")},
		{"staticlib", lib, "aarch64-linux-android", types.CrateTypeStaticlib, filepath.Join(out, "aarch64-linux-android", "debug", "libmy_lib.a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sc.ArtifactPath(tt.artifact, tt.target, tt.ct)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if again := sc.ArtifactPath(tt.artifact, tt.target, tt.ct); again != got {
				t.Errorf("expected deterministic path, got %s then %s", got, again)
			}
		})
	}
}

func TestArtifactPath_HostTripleSuffix(t *testing.T) {
	root := newProject(t)
	sc, err := subcommand.New(types.Filter{},
		subcommand.WithWorkDir(filepath.Join(root, "app")),
		subcommand.WithEnvironment(config.NewMapEnv(nil)),
		subcommand.WithHostTriple("x86_64-pc-windows-msvc"),
	)
	if err != nil {
		t.Fatal(err)
	}

	bin := types.Artifact{Name: "tool", Kind: types.ArtifactKindBin}
	got := sc.ArtifactPath(bin, "", types.CrateTypeBin)
	if !strings.HasSuffix(got, "tool.exe") {
		t.Errorf("expected host windows suffix, got %s", got)
	}
	if strings.Contains(got, "x86_64-pc-windows-msvc") {
		t.Errorf("host triple must not appear as a directory, got %s", got)
	}
}

func TestArtifactPath_IncompatiblePanics(t *testing.T) {
	sc, _ := resolveProject(t, types.Filter{})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for lib built as bin")
		}
	}()
	sc.ArtifactPath(types.Artifact{Name: "x", Kind: types.ArtifactKindLib}, "", types.CrateTypeBin)
}
