package subcommand_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cratekit/cratekit/pkg/config"
	rcontext "github.com/cratekit/cratekit/pkg/context"
	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/subcommand"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// newProject lays out a workspace with one member `app` that has a library,
// a main binary, an extra binary and an example, plus a settings file
func newProject(t *testing.T) string {
	t.Helper()
	root, err := utils.Canonicalize(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"app\"]\n")
	writeFile(t, filepath.Join(root, ".cargo", "config.toml"), `
[build]
target-dir = "out"

[env]
APP_MODE = "config"
APP_FORCED = { value = "config", force = true }
APP_ASSETS = { value = "assets", relative = true }
`)
	if err := os.MkdirAll(filepath.Join(root, "assets"), 0755); err != nil {
		t.Fatal(err)
	}

	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, "Cargo.toml"), "[package]\nname = \"app\"\n")
	for _, src := range []string{"src/lib.rs", "src/main.rs", "src/bin/tool.rs", "examples/demo.rs"} {
		writeFile(t, filepath.Join(app, filepath.FromSlash(src)), "fn main() {}\n")
	}
	return root
}

func TestNew(t *testing.T) {
	root := newProject(t)
	env := config.NewMapEnv(map[string]string{"APP_MODE": "env", "APP_FORCED": "env"})

	sc, err := subcommand.New(types.Filter{},
		subcommand.WithWorkDir(filepath.Join(root, "app", "src")),
		subcommand.WithEnvironment(env),
		subcommand.WithHostTriple("x86_64-unknown-linux-gnu"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sc.Package() != "app" {
		t.Errorf("expected package app, got %s", sc.Package())
	}
	if sc.Manifest() != filepath.Join(root, "app", "Cargo.toml") {
		t.Errorf("unexpected manifest %s", sc.Manifest())
	}
	if sc.WorkspaceManifest() != filepath.Join(root, "Cargo.toml") {
		t.Errorf("unexpected workspace manifest %s", sc.WorkspaceManifest())
	}
	if sc.TargetDir() != filepath.Join(root, "out") {
		t.Errorf("expected settings target-dir under the workspace root, got %s", sc.TargetDir())
	}
	if sc.Profile() != types.ProfileDev {
		t.Errorf("expected dev profile, got %s", sc.Profile())
	}
	if sc.Config() == nil || sc.Config().Root != root {
		t.Errorf("expected settings file from workspace root")
	}

	set := sc.Artifacts()
	if set.Lib == nil || len(set.Bins) != 2 || len(set.Examples) != 1 {
		t.Errorf("unexpected artifacts: %+v", set.All())
	}

	expectEnv := map[string]string{
		"APP_MODE":   "env",
		"APP_FORCED": "config",
		"APP_ASSETS": filepath.Join(root, "assets"),
	}
	for key, want := range expectEnv {
		if got, _ := env.Lookup(key); got != want {
			t.Errorf("%s: expected %s, got %s", key, want, got)
		}
	}
}

func TestNew_NonWorkspace(t *testing.T) {
	root, _ := utils.Canonicalize(t.TempDir())
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[package]\nname = \"solo\"\n")
	writeFile(t, filepath.Join(root, "src", "main.rs"), "fn main() {}\n")

	sc, err := subcommand.New(types.Filter{},
		subcommand.WithWorkDir(root),
		subcommand.WithEnvironment(config.NewMapEnv(nil)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.WorkspaceManifest() != "" {
		t.Skip("temp dir is inside a cargo workspace")
	}
	if sc.Package() != "solo" {
		t.Errorf("expected own package, got %s", sc.Package())
	}
	if sc.Config() == nil && sc.TargetDir() != filepath.Join(root, "target") {
		t.Errorf("expected default target dir, got %s", sc.TargetDir())
	}
}

func TestNew_Errors(t *testing.T) {
	root := newProject(t)

	tests := []struct {
		name   string
		filter types.Filter
		kind   error
	}{
		{"unknown package", types.Filter{Package: "nope"}, types.ErrNotFound},
		{"bad manifest path", types.Filter{ManifestPath: filepath.Join(root, "app", "Missing.toml")}, types.ErrNotFound},
		{"unknown bin", types.Filter{Bins: []string{"nope"}}, types.ErrNotFound},
		{"virtual root", types.Filter{ManifestPath: filepath.Join(root, "Cargo.toml")}, types.ErrStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := subcommand.New(tt.filter,
				subcommand.WithWorkDir(filepath.Join(root, "app")),
				subcommand.WithEnvironment(config.NewMapEnv(nil)),
			)
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestNew_Filter(t *testing.T) {
	root := newProject(t)

	sc, err := subcommand.New(types.Filter{Package: "app", Bins: []string{"tool"}, Release: true},
		subcommand.WithWorkDir(root),
		subcommand.WithEnvironment(config.NewMapEnv(nil)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := sc.Artifacts()
	if set.Lib != nil || len(set.Examples) != 0 || len(set.Bins) != 1 || set.Bins[0].Name != "tool" {
		t.Errorf("expected only the tool bin, got %+v", set.All())
	}
	if sc.Profile() != types.ProfileRelease {
		t.Errorf("expected release profile, got %s", sc.Profile())
	}
}

func TestTargetDirPrecedence(t *testing.T) {
	root := newProject(t)
	workDir := filepath.Join(root, "app")

	tests := []struct {
		name     string
		override string
		env      map[string]string
		want     string
	}{
		{
			name: "settings file",
			want: filepath.Join(root, "out"),
		},
		{
			name: "general variable",
			env:  map[string]string{"CARGO_TARGET_DIR": "/tmp/general"},
			want: "/tmp/general",
		},
		{
			name: "dedicated variable beats general",
			env:  map[string]string{"CARGO_TARGET_DIR": "/tmp/general", "CARGO_BUILD_TARGET_DIR": "/tmp/dedicated"},
			want: "/tmp/dedicated",
		},
		{
			name:     "override beats environment",
			override: "/tmp/override",
			env:      map[string]string{"CARGO_BUILD_TARGET_DIR": "/tmp/dedicated"},
			want:     "/tmp/override",
		},
		{
			name:     "relative override is made absolute",
			override: "rel",
			want:     filepath.Join(workDir, "rel"),
		},
		{
			name: "relative variable is made absolute",
			env:  map[string]string{"CARGO_TARGET_DIR": "relenv"},
			want: filepath.Join(workDir, "relenv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := subcommand.New(types.Filter{TargetDir: tt.override},
				subcommand.WithWorkDir(workDir),
				subcommand.WithEnvironment(config.NewMapEnv(tt.env)),
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sc.TargetDir() != filepath.FromSlash(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, sc.TargetDir())
			}
		})
	}
}

func TestSnapshot_Idempotent(t *testing.T) {
	root := newProject(t)
	env := config.NewMapEnv(nil)

	resolve := func() types.ProjectSnapshot {
		t.Helper()
		sc, err := subcommand.New(types.Filter{Target: "aarch64-linux-android"},
			subcommand.WithWorkDir(filepath.Join(root, "app")),
			subcommand.WithEnvironment(env),
			subcommand.WithHostTriple("x86_64-unknown-linux-gnu"),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return sc.Snapshot()
	}

	first := resolve()
	second := resolve()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical snapshots:\n first  %+v\n second %+v", first, second)
	}

	if len(first.Artifacts) != 4 {
		t.Fatalf("expected 4 artifacts, got %d", len(first.Artifacts))
	}
	lib := first.Artifacts[0]
	want := filepath.Join(root, "out", "aarch64-linux-android", "debug", "libapp.rlib")
	if lib.Kind != types.ArtifactKindLib || lib.OutputPath != want {
		t.Errorf("expected lib at %s, got %+v", want, lib)
	}
}

func TestWithContextLogging(t *testing.T) {
	root := newProject(t)

	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "debug", &buf)
	ctx := rcontext.WithRunID(context.Background(), "run_fixed")

	_, err := subcommand.New(types.Filter{},
		subcommand.WithWorkDir(filepath.Join(root, "app")),
		subcommand.WithEnvironment(config.NewMapEnv(nil)),
		subcommand.WithLogger(log),
		subcommand.WithContext(ctx),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Selected package", "Found settings file", "run_id=run_fixed", "[app]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in log output", want)
		}
	}
}
