package orchestrate

import (
	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/manifest"
)

// platformName maps a Go GOOS value onto muuk's three platform buckets
// (spec.md §3.4: windows/linux/apple), grounded on
// original_source/src/builder/buildparser.cpp's extract_platform_flags,
// which switches on the same three buckets via #ifdef _WIN32/__APPLE__/
// __linux__ at compile time.
func platformName(goos string) string {
	switch goos {
	case "windows":
		return "windows"
	case "darwin":
		return "apple"
	default:
		return "linux"
	}
}

// compilerName maps a compiler.Compiler onto the `[compiler.<name>]`
// manifest key it corresponds to.
func compilerName(c compiler.Compiler) string {
	switch c {
	case compiler.Clang:
		return "clang"
	case compiler.MSVC:
		return "msvc"
	default:
		return "gcc"
	}
}

// effectiveFlags assembles one library's or build's full compile-line
// flags, composing the node's own base fields with its compiler-leaf,
// platform-leaf and active-profile contributions, grounded on
// buildparser.cpp's extract_compiler_flags/extract_platform_flags/
// extract_profile_flags — three separate extraction steps there, merged
// here into one ordered flag slice. Profile flags are appended last so a
// profile can add to (never replace) a package's own settings, matching
// base_config.cpp's merge-order convention that a later-applied source
// only ever adds, never removes.
func effectiveFlags(base manifest.BaseFields, compilers manifest.Compilers, platforms manifest.Platforms, profile manifest.BaseFields, std compiler.Standard, target compiler.Compiler, goos string) []string {
	var out []string

	appendLeaf := func(leaf manifest.BaseFields) {
		for _, inc := range leaf.Include.Slice() {
			out = append(out, "-I"+inc)
		}
		out = append(out, leaf.CXXFlags.Slice()...)
		out = append(out, leaf.CFlags.Slice()...)
		for _, d := range leaf.Defines.Slice() {
			out = append(out, "-D"+d)
		}
	}

	appendLeaf(base)
	if leaf := platforms.ByPlatform(platformName(goos)); leaf != nil {
		appendLeaf(*leaf)
	}
	if leaf := compilers.ByCompiler(compilerName(target)); leaf != nil {
		appendLeaf(*leaf)
	}
	appendLeaf(profile)

	out = append(out, std.ToFlag(target))
	return out
}

// resolveStandard returns the C++ standard a node should compile under:
// the active profile's own cxx_standard when set, else Cpp20 (spec.md
// §3.1: "muuk targets C++20 modules by default").
func resolveStandard(profiles manifest.ProfileSet, name string) compiler.Standard {
	prof, ok := profiles[name]
	if !ok || prof.CxxStandard == "" {
		return compiler.Cpp20
	}
	if std := compiler.StandardFromString(prof.CxxStandard); std != compiler.Unknown {
		return std
	}
	return compiler.Cpp20
}

// resolveProfileFields resolves name's full inherited BaseFields, or an
// empty BaseFields if name isn't a declared profile (a build/library that
// opts into no profile still compiles, just without profile-level flags).
func resolveProfileFields(profiles manifest.ProfileSet, name string) manifest.BaseFields {
	if _, ok := profiles[name]; !ok {
		return manifest.NewBaseFields()
	}
	resolved, err := profiles.Resolve(name)
	if err != nil {
		return manifest.NewBaseFields()
	}
	return resolved.BaseFields
}
