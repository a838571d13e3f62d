package resolve

import (
	"github.com/charmbracelet/log"

	"github.com/oarkflow/muuk/internal/manifest"
	"github.com/oarkflow/muuk/internal/muukerr"
)

// applyFeatures enables every dependency's requested features on the
// package it resolved to, then applies each resolved package's own
// default features — grounded on muuklockgen.cpp's load(), the block
// iterating resolved_order_ right before merge_resolved_dependencies.
func (r *Resolver) applyFeatures() {
	for _, ref := range r.order {
		pkg := r.find(ref.Name, ref.Version)
		if pkg == nil {
			continue
		}
		for _, dep := range pkg.Dependencies.SortedEntries() {
			global, ok := r.globalDeps[dep.Name][dep.Version]
			if !ok || len(global.EnabledFeatures) == 0 {
				continue
			}
			if target := r.find(dep.Name, dep.Version); target != nil {
				target.EnableFeatures(global.EnabledFeatures)
			}
		}
	}

	log.Info("applying default features for all resolved packages")
	for name, versions := range r.packages {
		for version, pkg := range versions {
			if pkg == nil || len(pkg.DefaultFeatures) == 0 {
				continue
			}
			log.Info("applied default features", "package", name, "version", version, "features", pkg.DefaultFeatures.Slice())
			pkg.EnableFeatures(pkg.DefaultFeatures)
		}
	}
}

// mergeResolvedDependencies recursively folds every dependency of
// packageName@version into that package itself, depth-first so a
// transitive grandchild is fully merged into its child before the child
// is merged into packageName — grounded on muuklockgen.cpp's
// merge_resolved_dependencies. visiting guards against a dependency
// cycle that resolveDependencies' own `visited` set wouldn't catch here
// (merge order differs from resolution order).
func (r *Resolver) mergeResolvedDependencies(packageName, version string, visiting map[string]bool) error {
	pkg := r.find(packageName, version)
	if pkg == nil {
		log.Error("package not found while merging resolved dependencies", "name", packageName)
		return nil
	}
	if len(pkg.Dependencies) == 0 {
		return nil
	}

	key := packageName + "@" + version
	if visiting[key] {
		return muukerr.New(muukerr.DependencyCycle, "dependency cycle detected while merging %q", packageName)
	}
	visiting[key] = true
	defer delete(visiting, key)

	log.Info("merging dependencies into package", "name", packageName)
	for _, dep := range pkg.Dependencies.SortedEntries() {
		depPkg := r.find(dep.Name, dep.Version)
		if depPkg == nil {
			continue
		}
		if err := r.mergeResolvedDependencies(dep.Name, dep.Version, visiting); err != nil {
			return err
		}
		log.Info("merging package into parent", "child", dep.Name, "parent", packageName)
		pkg.Merge(depPkg)
	}
	return nil
}

// resolveBuildDependencies resolves and merges every dependency a
// [build.*] target declares, grounded on muuklockgen.cpp's
// resolve_build_dependencies.
func (r *Resolver) resolveBuildDependencies(buildName string, build *manifest.Build) error {
	if r.visitedBuilds[buildName] {
		log.Debug("build already processed, skipping resolution", "build", buildName)
		return nil
	}
	r.visitedBuilds[buildName] = true
	log.Info("resolving dependencies for build target", "build", buildName)

	if build == nil {
		return muukerr.New(muukerr.Unknown, "build target %q is nil", buildName)
	}

	for _, dep := range build.Dependencies.SortedEntries() {
		if dep.System {
			continue
		}
		if err := r.resolveDependencies(dep.Name, dep.Version, dep.Path); err != nil {
			return muukerr.Wrap(muukerr.Unknown, err, "resolving dependency %q for build %q", dep.Name, buildName)
		}

		if depPkg := r.find(dep.Name, dep.Version); depPkg != nil {
			build.MergePackage(depPkg)
			build.AllDependencies = append(build.AllDependencies, dep)
			log.Info("merged dependency into build", "dependency", dep.Name, "version", dep.Version, "build", buildName)
		} else {
			log.Warn("resolved package not found when merging into build", "dependency", dep.Name, "version", dep.Version, "build", buildName)
		}
	}

	return nil
}

// mergeBuildDependencies folds the base package itself into build (as
// its own implicit dependency), then every one of build's already-
// resolved dependencies' settings, grounded on muuklockgen.cpp's
// merge_build_dependencies.
func (r *Resolver) mergeBuildDependencies(buildName string, build *manifest.Build, basePackageDep *manifest.Dependency) error {
	if build == nil {
		return muukerr.New(muukerr.Unknown, "build %q is nil, cannot merge dependencies", buildName)
	}

	log.Info("merging dependencies for build", "build", buildName)

	build.Dependencies.Put(basePackageDep)
	build.AllDependencies = append(build.AllDependencies, basePackageDep)
	build.MergePackage(r.base)

	for _, dep := range build.Dependencies.SortedEntries() {
		depPkg := r.find(dep.Name, dep.Version)
		if depPkg == nil {
			log.Warn("resolved package not found when merging into build", "dependency", dep.Name, "version", dep.Version, "build", buildName)
			continue
		}
		build.MergePackage(depPkg)
	}

	return nil
}

// propagateProfiles pushes every build's own profile set down onto the
// library-config profile sets of every package it transitively depends
// on, grounded on muuklockgen.cpp's propagate_profiles /
// propagate_profiles_downward.
func (r *Resolver) propagateProfiles(buildNames []string, builds map[string]*manifest.Build) {
	log.Info("propagating profiles from builds to dependent libraries")
	for _, name := range buildNames {
		build := builds[name]
		if build == nil {
			continue
		}
		for _, dep := range build.AllDependencies {
			depPkg := r.find(dep.Name, dep.Version)
			if depPkg == nil {
				continue
			}
			r.propagateProfilesDownward(depPkg, build.Profiles, make(map[string]bool))
		}
	}
}

func (r *Resolver) propagateProfilesDownward(pkg *manifest.Package, inherited manifest.StringSet, visiting map[string]bool) {
	key := pkg.Name + "@" + pkg.Version
	if visiting[key] {
		return
	}
	visiting[key] = true

	log.Debug("propagating profiles to package", "name", pkg.Name)
	pkg.Library.Profiles.Union(inherited)

	for _, dep := range pkg.Dependencies.SortedEntries() {
		depPkg := r.find(dep.Name, dep.Version)
		if depPkg == nil {
			continue
		}
		r.propagateProfilesDownward(depPkg, inherited, visiting)
	}
}
