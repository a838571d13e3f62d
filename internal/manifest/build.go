package manifest

import "github.com/oarkflow/muuk/internal/compiler"

// Build is a `[build]` record (spec.md §3.7): one named executable/app
// target, grounded on original_source/include/lockgen/config/build.hpp.
// Build itself has no `[build.compiler.*]`/`[build.platform.*]` manifest
// syntax (matches the C++ source's enable_compilers/enable_platforms =
// false), but Compilers/Platforms still accumulate here during
// resolution: MergePackage pulls in a resolved dependency's own
// compiler/platform sub-trees, the same way Build::merge(const Package&)
// does in the original.
type Build struct {
	BaseFields

	Name     string
	Profiles StringSet

	LinkType compiler.BuildLinkType

	Compilers Compilers
	Platforms Platforms

	// AllDependencies is the flattened transitive dependency set
	// (resolver output, not manifest input) — the Go analogue of
	// all_dependencies_array, populated during resolution rather than
	// parsed from TOML.
	AllDependencies []*Dependency
}

// NewBuild returns an empty, initialized Build.
func NewBuild(name string) Build {
	return Build{
		BaseFields: NewBaseFields(),
		Name:       name,
		Profiles:   NewStringSet(),
		LinkType:   compiler.Executable,
		Compilers:  NewCompilers(),
		Platforms:  NewPlatforms(),
	}
}

// Merge combines other into b using BuildToggles (no compiler/platform
// sub-trees — those only ever arrive via MergePackage).
func (b *Build) Merge(other Build) {
	b.BaseFields.Merge(other.BaseFields, BuildToggles)
	b.Profiles.Union(other.Profiles)
	b.AllDependencies = append(b.AllDependencies, other.AllDependencies...)
}

// MergePackage folds a resolved package's library settings into b,
// grounded on base_config.cpp's Build::merge(const Package&): unlike
// Merge, this pulls in only the flag/path fields (include, libs, defines,
// undefines, c/cxx/a/l-flags) — never the package's own sources or
// dependency map, which belong to the package's own compilation, not to
// whatever build links against it — plus the package's compiler and
// platform sub-trees in full.
func (b *Build) MergePackage(pkg *Package) {
	lib := &pkg.Library.BaseFields
	b.Include.Union(lib.Include)
	b.Libs.Union(lib.Libs)
	b.Defines.Union(lib.Defines)
	b.Undefines.Union(lib.Undefines)
	b.CFlags.Union(lib.CFlags)
	b.CXXFlags.Union(lib.CXXFlags)
	b.AFlags.Union(lib.AFlags)
	b.LFlags.Union(lib.LFlags)

	b.Platforms.Merge(pkg.Platforms)
	b.Compilers.Merge(pkg.Compilers)
}
