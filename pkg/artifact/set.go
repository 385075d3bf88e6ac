package artifact

import (
	"github.com/cratekit/cratekit/pkg/types"
)

// Set is the artifact set of one package
type Set struct {
	Lib      *types.Artifact
	Bins     []types.Artifact
	Examples []types.Artifact
}

// All returns the library, then the binaries, then the examples
func (s Set) All() []types.Artifact {
	all := make([]types.Artifact, 0, len(s.Bins)+len(s.Examples)+1)
	if s.Lib != nil {
		all = append(all, *s.Lib)
	}
	all = append(all, s.Bins...)
	return append(all, s.Examples...)
}

// Len returns the number of artifacts in the set
func (s Set) Len() int {
	n := len(s.Bins) + len(s.Examples)
	if s.Lib != nil {
		n++
	}
	return n
}

// Clone returns a deep copy of the set
func (s Set) Clone() Set {
	clone := Set{
		Bins:     append([]types.Artifact(nil), s.Bins...),
		Examples: append([]types.Artifact(nil), s.Examples...),
	}
	if s.Lib != nil {
		lib := *s.Lib
		clone.Lib = &lib
	}
	return clone
}

func find(artifacts []types.Artifact, name string) (types.Artifact, bool) {
	for _, a := range artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return types.Artifact{}, false
}

// Filter restricts the set to the targets the filter requests. Without any
// target selection the set is returned unchanged. Requesting a name the set
// does not contain, or the library of a package without one, is an error.
func (s Set) Filter(f types.Filter) (Set, error) {
	if !f.SpecificTargetSelected() {
		return s.Clone(), nil
	}

	var out Set
	if f.Lib {
		if s.Lib == nil {
			return Set{}, types.TargetNotFound(types.ArtifactKindLib, "")
		}
		lib := *s.Lib
		out.Lib = &lib
	}

	bins, err := selectNamed(s.Bins, f.AllBins, f.Bins, types.ArtifactKindBin)
	if err != nil {
		return Set{}, err
	}
	examples, err := selectNamed(s.Examples, f.AllExamples, f.Examples, types.ArtifactKindExample)
	if err != nil {
		return Set{}, err
	}
	out.Bins = bins
	out.Examples = examples
	return out, nil
}

func selectNamed(artifacts []types.Artifact, all bool, names []string, kind types.ArtifactKind) ([]types.Artifact, error) {
	if all {
		return append([]types.Artifact(nil), artifacts...), nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := find(artifacts, name); !ok {
			return nil, types.TargetNotFound(kind, name)
		}
		wanted[name] = true
	}

	var out []types.Artifact
	for _, a := range artifacts {
		if wanted[a.Name] {
			out = append(out, a)
		}
	}
	return out, nil
}
