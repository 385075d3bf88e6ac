// Package subcommand resolves a build request into a fully described project:
// the selected package, its settings, its artifacts and where they are built
package subcommand

import (
	"github.com/cratekit/cratekit/pkg/artifact"
	"github.com/cratekit/cratekit/pkg/config"
	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
	"github.com/cratekit/cratekit/pkg/workspace"
)

// Environment variables naming the output root, most specific first
const (
	EnvBuildTargetDir = "CARGO_BUILD_TARGET_DIR"
	EnvTargetDir      = "CARGO_TARGET_DIR"
)

// Subcommand is a resolved project. It is immutable once New returns.
type Subcommand struct {
	filter            types.Filter
	pkg               string
	manifest          string
	workspaceManifest string
	targetDir         string
	hostTriple        string
	profile           types.Profile
	artifacts         artifact.Set
	config            *config.LocalizedConfig
}

// New resolves filter against the file system. Settings file env entries are
// exported to the environment before artifacts are discovered.
func New(filter types.Filter, opts ...Option) (*Subcommand, error) {
	deps, err := newDependencies(opts)
	if err != nil {
		return nil, err
	}
	log := deps.logger

	loc, err := workspace.Locate(filter.ManifestPath, deps.workDir)
	if err != nil {
		return nil, err
	}
	log.Debug("Found manifest", logger.WithField("path", loc.Potential.Path))
	if loc.HasWorkspace {
		log.Debug("Found workspace", logger.WithField("path", loc.Workspace.Path))
	}

	selected, err := workspace.SelectPackage(loc, filter.Package, deps.globber)
	if err != nil {
		return nil, err
	}
	name := selected.Manifest.Package.Name
	root := selected.Dir()
	log = log.WithTarget(name)
	log.Debug("Selected package", logger.WithField("manifest", selected.Path))

	cfg, err := config.FindForWorkspace(root)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		log.Debug("Found settings file", logger.WithField("path", cfg.Path))
		written, err := cfg.SetEnvVars(deps.env)
		if err != nil {
			return nil, err
		}
		for _, key := range written {
			log.Debug("Set environment variable", logger.WithField("key", key))
		}
	}

	outputRoot := root
	workspaceManifest := ""
	if loc.HasWorkspace {
		outputRoot = loc.Workspace.Dir()
		workspaceManifest = loc.Workspace.Path
	}
	targetDir := resolveTargetDir(filter.TargetDir, deps.env, deps.workDir, outputRoot, cfg)
	log.Debug("Resolved target directory", logger.WithField("path", targetDir))

	discovered, err := artifact.Discover(root, selected.Manifest, name, log)
	if err != nil {
		return nil, err
	}
	artifacts, err := discovered.Filter(filter)
	if err != nil {
		return nil, err
	}

	return &Subcommand{
		filter:            filter,
		pkg:               name,
		manifest:          selected.Path,
		workspaceManifest: workspaceManifest,
		targetDir:         targetDir,
		hostTriple:        deps.hostTriple,
		profile:           filter.ResolveProfile(),
		artifacts:         artifacts,
		config:            cfg,
	}, nil
}

// resolveTargetDir applies the output root precedence: explicit override,
// then the environment, then the settings file joined to outputRoot
func resolveTargetDir(override string, env config.Environment, workDir, outputRoot string, cfg *config.LocalizedConfig) string {
	if override != "" {
		return utils.AbsFrom(workDir, override)
	}
	for _, key := range []string{EnvBuildTargetDir, EnvTargetDir} {
		if dir, ok := env.Lookup(key); ok && dir != "" {
			return utils.AbsFrom(workDir, dir)
		}
	}
	return utils.AbsFrom(outputRoot, cfg.TargetDirName())
}

// Filter returns the filter the project was resolved with
func (s *Subcommand) Filter() types.Filter { return s.filter }

// Package returns the selected package name
func (s *Subcommand) Package() string { return s.pkg }

// Manifest returns the path of the selected package's Cargo.toml
func (s *Subcommand) Manifest() string { return s.manifest }

// WorkspaceManifest returns the workspace root Cargo.toml, or "" outside a
// workspace
func (s *Subcommand) WorkspaceManifest() string { return s.workspaceManifest }

// Target returns the requested target triple, or "" for the host
func (s *Subcommand) Target() string { return s.filter.Target }

// Profile returns the resolved build profile
func (s *Subcommand) Profile() types.Profile { return s.profile }

// Artifacts returns a copy of the selected artifacts
func (s *Subcommand) Artifacts() artifact.Set { return s.artifacts.Clone() }

// TargetDir returns the absolute output root
func (s *Subcommand) TargetDir() string { return s.targetDir }

// HostTriple returns the platform the resolver runs on
func (s *Subcommand) HostTriple() string { return s.hostTriple }

// Quiet reports whether the caller asked for quiet output
func (s *Subcommand) Quiet() bool { return s.filter.Quiet }

// Config returns the settings file in effect, or nil
func (s *Subcommand) Config() *config.LocalizedConfig { return s.config }

// Snapshot returns a plain, serializable view of the project
func (s *Subcommand) Snapshot() types.ProjectSnapshot {
	all := s.artifacts.All()
	outputs := make([]types.ArtifactOutput, 0, len(all))
	for _, a := range all {
		ct := types.DefaultCrateType(a.Kind)
		outputs = append(outputs, types.ArtifactOutput{
			Artifact:   a,
			CrateType:  ct,
			OutputPath: s.ArtifactPath(a, s.Target(), ct),
		})
	}

	return types.ProjectSnapshot{
		Package:           s.pkg,
		Manifest:          s.manifest,
		WorkspaceManifest: s.workspaceManifest,
		Target:            s.Target(),
		HostTriple:        s.hostTriple,
		Profile:           s.profile.String(),
		TargetDir:         s.targetDir,
		Artifacts:         outputs,
	}
}
