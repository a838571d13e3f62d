package manifest

import "github.com/oarkflow/muuk/internal/compiler"

// Package is the in-memory, parsed-and-merged representation of one
// muuk.toml file (spec.md §3.1), grounded on
// original_source/include/lockgen/config/package.hpp's Package class.
type Package struct {
	Name    string
	Version string
	// BasePath is the directory the manifest was loaded from; relative
	// paths throughout the package are resolved against it.
	BasePath string

	// Source records where this package came from: "" for the root
	// package, a git URL, or a local filesystem path (spec.md §3.1,
	// §9 open question "Package.source enum" — resolved here as a plain
	// string with the SourceKind helper below rather than a closed enum,
	// since a git URL and a local path are already mutually distinguishable
	// by shape and muuk never needs to branch on a third kind).
	Source string

	Dependencies DependencyMap

	DefaultFeatures StringSet
	Features        map[string]Feature

	LinkType compiler.BuildLinkType

	Compilers Compilers
	Platforms Platforms

	Library  Library
	External External

	Profiles ProfileSet
	Builds   map[string]*Build

	// Scripts are named shell commands declared under [scripts], run via
	// `muuk run <script>` (spec.md's out-of-scope script-runner
	// collaborator, supplemented here per original_source's own
	// muukinitializer.cpp scaffolding a [scripts] table by default).
	Scripts map[string]string
}

// SourceKind classifies Package.Source (spec.md §9 open question).
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceGit
	SourceRegistry
)

// Kind reports whether Source is a git URL, a filesystem path, or empty
// (the root package, SourceLocal by convention).
func (p *Package) Kind() SourceKind {
	switch {
	case p.Source == "":
		return SourceLocal
	case isGitURL(p.Source):
		return SourceGit
	default:
		return SourceLocal
	}
}

func isGitURL(s string) bool {
	for _, prefix := range []string{"http://", "https://", "git://", "ssh://", "git@"} {
		if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// NewPackage returns an empty, initialized Package.
func NewPackage(name, version, basePath string) *Package {
	return &Package{
		Name:            name,
		Version:         version,
		BasePath:        basePath,
		Dependencies:    make(DependencyMap),
		DefaultFeatures: NewStringSet(),
		Features:        make(map[string]Feature),
		Compilers:       NewCompilers(),
		Platforms:       NewPlatforms(),
		Library:         NewLibrary(name, version),
		Profiles:        make(ProfileSet),
		Builds:          make(map[string]*Build),
		Scripts:         make(map[string]string),
	}
}

// Merge folds childPkg's settings into p, matching
// original_source Package::merge: dependencies, compiler/platform
// sub-trees and the library config all union; features and default
// features union by key.
func (p *Package) Merge(child *Package) {
	p.Dependencies.Merge(child.Dependencies)
	p.Compilers.Merge(child.Compilers)
	p.Platforms.Merge(child.Platforms)
	p.Library.Merge(child.Library)
	p.DefaultFeatures.Union(child.DefaultFeatures)

	for name, f := range child.Features {
		existing, ok := p.Features[name]
		if !ok {
			p.Features[name] = f
			continue
		}
		existing.Defines.Union(f.Defines)
		existing.Undefines.Union(f.Undefines)
		existing.Dependencies.Union(f.Dependencies)
		p.Features[name] = existing
	}
}

// EnableFeatures applies feature set activation (spec.md §3.6): for each
// named feature, union its defines and undefines into the package's own
// Library.Defines/Undefines, and tag every entry of p.Dependencies that the
// feature lists with the feature's name in its EnabledFeatures. A listed
// dependency that is not already in p.Dependencies is not added, and the
// features of those dependencies are not activated in turn.
func (p *Package) EnableFeatures(names StringSet) {
	seen := make(map[string]bool)
	var apply func(name string)
	apply = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		f, ok := p.Features[name]
		if !ok {
			return
		}
		p.Library.Defines.Union(f.Defines)
		p.Library.Undefines.Union(f.Undefines)
		for dep := range f.Dependencies {
			if byVersion, ok := p.Dependencies[dep]; ok {
				for _, d := range byVersion {
					d.EnabledFeatures.Add(name)
				}
			}
		}
	}
	for name := range names {
		apply(name)
	}
}
