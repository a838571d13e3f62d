// Package resolve walks a package's [dependencies] graph to a fixed
// point, activates features, and merges every resolved package's
// settings into its requesters — the step between internal/manifest
// (one muuk.toml parsed in isolation) and internal/plan (one compiled
// build). Grounded on
// original_source/src/lockgen/muuklockgen.cpp's MuukLockGenerator and
// original_source/src/lockgen/resolution_tree.cpp's
// resolve_dependencies/locate_and_parse_package.
package resolve

import (
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/muuk/internal/manifest"
	"github.com/oarkflow/muuk/internal/muukerr"
)

// Ref names one resolved (package, version) pair in visitation order —
// the Go analogue of resolved_order_'s vector of name/version pairs.
type Ref struct {
	Name    string
	Version string
}

// Loader loads one package's manifest from a directory that is expected
// to contain a muuk.toml.
type Loader interface {
	Load(dir, name, version string) (*manifest.Package, error)
}

// FileLoader is the only Loader muuk ships: it reads muuk.toml off disk
// via internal/manifest.LoadFile.
type FileLoader struct{}

// Load implements Loader.
func (FileLoader) Load(dir, name, version string) (*manifest.Package, error) {
	return manifest.LoadFile(dir, name, version)
}

// Graph is the completed result of a Resolve call.
type Graph struct {
	// Packages is every resolved package, keyed by name then version.
	Packages map[string]map[string]*manifest.Package
	// Order lists every resolved (name, version) in dependency-before-
	// dependent order, the order muuk.lock's [[package]] entries and
	// deps/.gitignore's allow-rules are written in.
	Order []Ref
	Base  *manifest.Package
	// Builds holds the base package's [build.*] targets with every
	// dependency's settings fully merged in.
	Builds map[string]*manifest.Build
}

// Find returns the resolved package for name/version, or nil.
func (g *Graph) Find(name, version string) *manifest.Package {
	if byVersion, ok := g.Packages[name]; ok {
		return byVersion[version]
	}
	return nil
}

// Resolver resolves one base package's dependency graph.
type Resolver struct {
	Loader   Loader
	CacheDir string // dependency cache root dependencies without an explicit path resolve into, e.g. ".muuk/deps"

	packages   map[string]map[string]*manifest.Package
	globalDeps map[string]map[string]*manifest.Dependency

	visited       map[string]bool
	visitedBuilds map[string]bool
	order         []Ref
	base          *manifest.Package
}

// NewResolver returns a Resolver reading dependency manifests with
// loader, caching fetched dependencies under cacheDir.
func NewResolver(loader Loader, cacheDir string) *Resolver {
	return &Resolver{
		Loader:        loader,
		CacheDir:      cacheDir,
		packages:      make(map[string]map[string]*manifest.Package),
		globalDeps:    make(map[string]map[string]*manifest.Dependency),
		visited:       make(map[string]bool),
		visitedBuilds: make(map[string]bool),
	}
}

func (r *Resolver) find(name, version string) *manifest.Package {
	if byVersion, ok := r.packages[name]; ok {
		return byVersion[version]
	}
	return nil
}

func (r *Resolver) store(pkg *manifest.Package) {
	if r.packages[pkg.Name] == nil {
		r.packages[pkg.Name] = make(map[string]*manifest.Package)
	}
	r.packages[pkg.Name][pkg.Version] = pkg
}

// registerGlobalDeps folds pkg's own [dependencies] entries into the
// resolver-wide dependency registry, unioning EnabledFeatures when two
// packages both request the same (name, version) — the Go analogue of
// dependencies_ being shared storage that every parse_dependencies call
// writes into (parsing.cpp), so that a dependency requested with
// different features by two different requesters ends up with the union
// of both once resolved.
func (r *Resolver) registerGlobalDeps(pkg *manifest.Package) {
	for _, dep := range pkg.Dependencies.SortedEntries() {
		if r.globalDeps[dep.Name] == nil {
			r.globalDeps[dep.Name] = make(map[string]*manifest.Dependency)
		}
		existing, ok := r.globalDeps[dep.Name][dep.Version]
		if !ok {
			r.globalDeps[dep.Name][dep.Version] = dep
			continue
		}
		if existing != dep {
			existing.EnabledFeatures.Union(dep.EnabledFeatures)
		}
	}
}

// Resolve resolves base's full dependency graph: every [dependencies]
// entry reachable from base or from base's [build.*] targets, applies
// feature activation and default features, merges every resolved
// package's settings into its requesters and builds, and returns the
// completed Graph.
func (r *Resolver) Resolve(base *manifest.Package) (*Graph, error) {
	r.base = base
	r.store(base)
	r.registerGlobalDeps(base)

	if err := r.resolveDependencies(base.Name, base.Version, ""); err != nil {
		return nil, err
	}

	buildNames := sortedBuildNames(base.Builds)
	for _, name := range buildNames {
		if err := r.resolveBuildDependencies(name, base.Builds[name]); err != nil {
			return nil, err
		}
	}

	r.applyFeatures()

	visited := make(map[string]bool)
	if err := r.mergeResolvedDependencies(base.Name, base.Version, visited); err != nil {
		return nil, err
	}

	baseDep := &manifest.Dependency{
		Name:            base.Name,
		Version:         base.Version,
		Path:            base.BasePath,
		EnabledFeatures: manifest.NewStringSet(),
	}
	for _, name := range buildNames {
		if err := r.mergeBuildDependencies(name, base.Builds[name], baseDep); err != nil {
			return nil, err
		}
	}

	r.propagateProfiles(buildNames, base.Builds)

	return &Graph{Packages: r.packages, Order: append([]Ref(nil), r.order...), Base: base, Builds: base.Builds}, nil
}

// resolveDependencies resolves package_name@version and everything it
// transitively depends on, appending to r.order in post-order (a
// dependency always appears before the package that needed it), grounded
// on resolution_tree.cpp's resolve_dependencies.
func (r *Resolver) resolveDependencies(name, version, searchPath string) error {
	if r.visited[name] {
		log.Debug("dependency already processed, skipping resolution", "name", name)
		return nil
	}
	r.visited[name] = true

	pkg := r.find(name, version)
	if pkg == nil {
		loaded, err := r.locateAndParse(name, version, searchPath)
		if err != nil {
			return err
		}
		pkg = loaded
	}
	r.registerGlobalDeps(pkg)

	for _, dep := range pkg.Dependencies.SortedEntries() {
		if dep.Name == name {
			log.Warn("circular dependency: package depends on itself, skipping", "name", name)
			continue
		}

		log.Info("resolving dependency", "name", dep.Name, "for", name)

		if dep.System {
			r.resolveSystemDependency(dep, pkg)
			continue
		}

		if err := r.resolveDependencies(dep.Name, dep.Version, dep.Path); err != nil {
			return muukerr.Wrap(muukerr.Unknown, err, "resolving dependency %q for %q", dep.Name, name)
		}
	}

	r.order = append(r.order, Ref{Name: name, Version: version})
	return nil
}

// locateAndParse loads package_name@version's muuk.toml either from an
// explicit searchPath (a dependency's own `path = "..."` override) or
// from CacheDir/name/version (where internal/fetch materializes git
// dependencies), and verifies the loaded package's identity matches what
// was requested — grounded on resolution_tree.cpp's
// locate_and_parse_package / muuklockgen.cpp's
// search_and_parse_dependency.
func (r *Resolver) locateAndParse(name, version, searchPath string) (*manifest.Package, error) {
	dir := searchPath
	if dir == "" {
		dir = filepath.Join(r.CacheDir, name, version)
	}

	pkg, err := r.Loader.Load(dir, name, version)
	if err != nil {
		return nil, err
	}

	if pkg.Name != name || pkg.Version != version {
		return nil, muukerr.New(muukerr.IdentityMismatch,
			"expected %s@%s, found %s@%s in %q", name, version, pkg.Name, pkg.Version, dir)
	}

	r.store(pkg)
	return pkg, nil
}

// resolveSystemDependency records a system (pre-installed, not fetched)
// dependency's declared libs onto pkg's library so the link step still
// sees them. The original's pkg-config/path probing
// (resolution_tree.cpp's commented-out resolve_system_dependency body)
// never shipped past a stub in the source this was ported from; muuk
// likewise leaves host-toolchain discovery to the user's environment
// and only carries through what the manifest already declares.
func (r *Resolver) resolveSystemDependency(dep *manifest.Dependency, pkg *manifest.Package) {
	if len(dep.Libs) > 0 {
		for _, lib := range dep.Libs {
			pkg.Library.Libs.Add(lib)
		}
	}
	log.Debug("system dependency recorded from manifest, no toolchain probing performed", "name", dep.Name)
}

func sortedBuildNames(builds map[string]*manifest.Build) []string {
	names := make([]string, 0, len(builds))
	for name := range builds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
