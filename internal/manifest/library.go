package manifest

import "github.com/oarkflow/muuk/internal/compiler"

// Library is a `[library]` record (spec.md §3.7): the buildable-artifact
// settings for a package — sources, flags, and (per spec.md's redesign
// decision, see DESIGN.md) its own compiler/platform sub-trees. Grounded
// on original_source/include/lockgen/config/library.hpp, with the
// enable_compilers/enable_platforms/enable_dependencies toggles flipped
// from false to true per spec.md §3.7's explicit manifest surface
// (`[library.compiler.<gcc|clang|msvc>]` sections exist in spec.md §6.1).
type Library struct {
	BaseConfig

	Name     string
	Version  string
	Profiles StringSet

	LinkType compiler.LinkType

	External External
}

// NewLibrary returns an empty, initialized Library.
func NewLibrary(name, version string) Library {
	return Library{
		BaseConfig: NewBaseConfig(),
		Name:       name,
		Version:    version,
		Profiles:   NewStringSet(),
		LinkType:   compiler.LinkStatic,
	}
}

// Merge combines other into l using LibraryToggles (compiler/platform/
// dependency sub-trees all participate, per spec.md §3.7).
func (l *Library) Merge(other Library) {
	l.BaseConfig.Merge(other.BaseConfig, LibraryToggles)
	l.Profiles.Union(other.Profiles)
	l.External.Merge(other.External)
}

// External is an `[external]` record describing a non-muuk build system
// invocation (CMake, Meson, ...) that produces artifacts muuk links
// against (spec.md §3.8), grounded on
// original_source/include/lockgen/config/library.hpp's External struct.
type External struct {
	Name     string
	Version  string
	Profiles StringSet

	Type string // "cmake", "meson", "make", ...
	Args []string

	Outputs []ExternalOutput

	SourceFile string
	Path       string
}

// ExternalOutput pairs a produced artifact path with the profile it was
// built under (spec.md §3.8).
type ExternalOutput struct {
	Path    string
	Profile string
}

// NewExternal returns an empty, initialized External.
func NewExternal(name, version string) External {
	return External{Name: name, Version: version, Profiles: NewStringSet()}
}

// Merge appends other's outputs/args and unions its profile set. Args
// order matters (they form a literal command line), so they are
// concatenated rather than set-unioned, per spec.md §4.2's sequence-field
// rule.
func (e *External) Merge(other External) {
	if e.Type == "" {
		e.Type = other.Type
	}
	if e.Path == "" {
		e.Path = other.Path
	}
	if e.SourceFile == "" {
		e.SourceFile = other.SourceFile
	}
	e.Args = append(e.Args, other.Args...)
	e.Outputs = append(e.Outputs, other.Outputs...)
	if e.Profiles == nil {
		e.Profiles = NewStringSet()
	}
	e.Profiles.Union(other.Profiles)
}
