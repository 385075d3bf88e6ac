package subcommand

import (
	"path/filepath"

	"github.com/cratekit/cratekit/pkg/types"
)

// BuildDir returns `<target-dir>[/<target>]/<profile dir>`. The triple segment
// is present only when target is given.
func (s *Subcommand) BuildDir(target string) string {
	dir := s.targetDir
	if target != "" {
		dir = filepath.Join(dir, target)
	}
	return filepath.Join(dir, s.profile.Dir())
}

// ArtifactPath returns where artifact is written when built as crateType for
// target. The file name follows the host platform when target is empty.
// It panics when the artifact kind cannot be built as crateType.
func (s *Subcommand) ArtifactPath(a types.Artifact, target string, crateType types.CrateType) string {
	triple := target
	if triple == "" {
		triple = s.hostTriple
	}
	return filepath.Join(s.BuildDir(target), a.BuildDir(), a.FileName(crateType, triple))
}
