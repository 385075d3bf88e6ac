package workspace

import (
	"github.com/cratekit/cratekit/pkg/manifest"
	"github.com/cratekit/cratekit/pkg/types"
	"github.com/cratekit/cratekit/pkg/utils"
)

// FindPackageManifestInWorkspace selects the package descriptor inside a
// workspace. The potential descriptor must be the workspace root or one of its
// members. With an empty name the potential descriptor is selected.
func FindPackageManifestInWorkspace(
	ws manifest.Located,
	potential manifest.Located,
	name string,
	globber utils.Globber,
) (manifest.Located, error) {
	members, err := ws.Manifest.Members(ws.Dir(), globber)
	if err != nil {
		return manifest.Located{}, err
	}

	if potential.Path != ws.Path && !containsDir(members, potential.Dir()) {
		return manifest.Located{}, types.ManifestNotInWorkspace(potential.Path, ws.Path)
	}

	if name == "" {
		if potential.Manifest.Package != nil {
			return potential, nil
		}
		return selectDefaultMember(ws, globber)
	}

	if pkg := ws.Manifest.Package; pkg != nil && pkg.Name == name {
		return ws, nil
	}

	for _, member := range members {
		if member.Manifest.Package.Name == name {
			return member.Located, nil
		}
	}

	return manifest.Located{}, types.PackageNotFound(ws.Path, name)
}

// selectDefaultMember picks the single default member of a virtual workspace
// root. More than one candidate is left for the caller to disambiguate.
func selectDefaultMember(ws manifest.Located, globber utils.Globber) (manifest.Located, error) {
	defaults, err := ws.Manifest.DefaultMembers(ws.Dir(), globber)
	if err != nil {
		return manifest.Located{}, err
	}
	if len(defaults) == 1 {
		return defaults[0].Located, nil
	}
	return manifest.Located{}, types.NoPackageInManifest(ws.Path)
}

// SelectPackage resolves exactly one package descriptor for a location
func SelectPackage(loc Location, name string, globber utils.Globber) (manifest.Located, error) {
	if loc.HasWorkspace {
		return FindPackageManifestInWorkspace(loc.Workspace, loc.Potential, name, globber)
	}
	return loc.Potential.Manifest.MapNonvirtualPackage(loc.Potential.Path, name)
}

func containsDir(members []manifest.Member, dir string) bool {
	for _, member := range members {
		if member.Dir == dir {
			return true
		}
	}
	return false
}
