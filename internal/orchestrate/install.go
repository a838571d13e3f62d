package orchestrate

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/muuk/internal/fetch"
	"github.com/oarkflow/muuk/internal/manifest"
	"github.com/oarkflow/muuk/internal/parallel"
	"github.com/oarkflow/muuk/internal/resolve"
)

// Install fetches every dependency p's manifest tree reaches (directly or
// transitively, through [dependencies] and every [build.*]'s own
// dependencies) into the project's dependency cache, then resolves the
// full graph and writes muuk.lock, muuk.lock.toml and deps/.gitignore.
//
// internal/resolve's FileLoader only ever reads an already-fetched
// manifest off disk (a missing one is a ManifestNotFound error), so
// fetching has to happen as a separate pass
// before Resolve runs, grounded on
// original_source/src/lockgen/muuklockgen.cpp's fetch_dependencies, which
// interleaves fetch-then-parse-then-recurse the same way.
func (p *Project) Install(ctx context.Context) error {
	graph, depsDir, err := p.resolveGraph(ctx)
	if err != nil {
		return err
	}
	p.Graph = graph

	if err := graph.WriteLockfile(filepath.Join(p.Base.BasePath, "muuk.lock")); err != nil {
		return err
	}
	if err := graph.WriteCache(filepath.Join(p.Base.BasePath, "muuk.lock.toml")); err != nil {
		return err
	}
	return graph.WriteGitignore(depsDir)
}

// Resolve fetches and resolves the dependency graph exactly as Install
// does, but writes no lockfile or cache to disk, for read-only
// diagnostics like `muuk tree`.
func (p *Project) Resolve(ctx context.Context) (*resolve.Graph, error) {
	graph, _, err := p.resolveGraph(ctx)
	if err != nil {
		return nil, err
	}
	return graph, nil
}

func (p *Project) resolveGraph(ctx context.Context) (*resolve.Graph, string, error) {
	depsDir := p.depsPath()
	fetcher := fetch.NewFetcher()
	jobs := p.Options.Jobs

	visited := newVisitedSet(p.Base.Name)
	if err := fetchTransitive(ctx, fetcher, p.Base, depsDir, visited, jobs); err != nil {
		return nil, "", err
	}
	for _, name := range sortedBuildNames(p.Base.Builds) {
		var toFetch []*manifest.Dependency
		for _, dep := range p.Base.Builds[name].Dependencies.SortedEntries() {
			if dep.System {
				continue
			}
			if visited.markVisited(dep.Name) {
				toFetch = append(toFetch, dep)
			}
		}
		if err := parallel.ForEach(ctx, toFetch, jobs, func(ctx context.Context, dep *manifest.Dependency) error {
			return fetchOneAndRecurse(ctx, fetcher, dep, depsDir, visited, jobs)
		}); err != nil {
			return nil, "", err
		}
	}

	resolver := resolve.NewResolver(resolve.FileLoader{}, depsDir)
	graph, err := resolver.Resolve(p.Base)
	if err != nil {
		return nil, "", err
	}
	return graph, depsDir, nil
}

// visitedSet is a concurrency-safe name-only visited set. Keying on name
// alone rather than name+version mirrors resolve.Resolver's own
// resolveSystemDependency/visited simplification: muuk does not support a
// project depending on two different versions of the same package at
// once.
type visitedSet struct {
	mu sync.Mutex
	m  map[string]bool
}

func newVisitedSet(seed ...string) *visitedSet {
	m := make(map[string]bool, len(seed))
	for _, name := range seed {
		m[name] = true
	}
	return &visitedSet{m: m}
}

// markVisited reports whether name was newly added to the set — false
// means some other caller already claimed it.
func (v *visitedSet) markVisited(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.m[name] {
		return false
	}
	v.m[name] = true
	return true
}

// fetchTransitive fetches every dependency pkg's own [dependencies] table
// names concurrently (bounded by jobs, per spec.md §4.3's "fetching is
// embarrassingly parallel across distinct dependencies"), then recurses
// into each newly fetched dependency's own manifest the same way.
func fetchTransitive(ctx context.Context, fetcher *fetch.Fetcher, pkg *manifest.Package, depsDir string, visited *visitedSet, jobs int) error {
	var toFetch []*manifest.Dependency
	for _, dep := range pkg.Dependencies.SortedEntries() {
		if dep.System {
			continue
		}
		if visited.markVisited(dep.Name) {
			toFetch = append(toFetch, dep)
		}
	}
	return parallel.ForEach(ctx, toFetch, jobs, func(ctx context.Context, dep *manifest.Dependency) error {
		return fetchOneAndRecurse(ctx, fetcher, dep, depsDir, visited, jobs)
	})
}

// fetchOneAndRecurse materializes dep, loads its freshly fetched manifest,
// and recurses into dep's own dependency table.
func fetchOneAndRecurse(ctx context.Context, fetcher *fetch.Fetcher, dep *manifest.Dependency, depsDir string, visited *visitedSet, jobs int) error {
	result, err := fetcher.FetchOne(ctx, fetch.Request{Dep: dep, CacheDir: depsDir})
	if err != nil {
		return err
	}
	log.Debug("fetched dependency", "name", dep.Name, "version", dep.Version, "dir", result.Dir, "skipped", result.Skipped)

	child, err := manifest.LoadFile(result.Dir, dep.Name, dep.Version)
	if err != nil {
		return err
	}
	return fetchTransitive(ctx, fetcher, child, depsDir, visited, jobs)
}

func sortedBuildNames(builds map[string]*manifest.Build) []string {
	names := make([]string, 0, len(builds))
	for name := range builds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
