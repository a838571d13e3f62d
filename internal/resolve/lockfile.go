package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/muuk/internal/lockfmt"
	"github.com/oarkflow/muuk/internal/manifest"
)

// depKey uniquely names a (name, version) pair for the written-set used
// while emitting muuk.lock, mirroring the C++ writer's
// std::set<std::pair<std::string,std::string>> written_packages.
type depKey struct{ name, version string }

// WriteLockfile renders the Cargo-style muuk.lock describing every
// resolved non-base dependency reachable from g's builds, grounded on
// muuklockgen.cpp's generate_lockfile.
func (g *Graph) WriteLockfile(outputPath string) error {
	var b strings.Builder
	b.WriteString("# This file is automatically @generated by Muuk.\n\n")

	written := make(map[depKey]bool)

	buildNames := make([]string, 0, len(g.Builds))
	for name := range g.Builds {
		buildNames = append(buildNames, name)
	}
	sort.Strings(buildNames)

	for _, buildName := range buildNames {
		build := g.Builds[buildName]
		if build == nil {
			log.Warn("build pointer is nil", "build", buildName)
			continue
		}

		for _, dep := range build.AllDependencies {
			if dep == nil {
				continue
			}
			if g.Base != nil && dep.Name == g.Base.Name && dep.Version == g.Base.Version {
				continue
			}
			key := depKey{dep.Name, dep.Version}
			if written[key] {
				continue
			}

			pkg := g.Find(dep.Name, dep.Version)
			if pkg == nil {
				continue
			}
			written[key] = true

			writePackageEntry(&b, dep, pkg)
		}
	}

	return os.WriteFile(outputPath, []byte(b.String()), 0o644)
}

func writePackageEntry(b *strings.Builder, dep *manifest.Dependency, pkg *manifest.Package) {
	fmt.Fprintf(b, "[[package]]\n")
	fmt.Fprintf(b, "name = %q\n", dep.Name)
	fmt.Fprintf(b, "version = %q\n", dep.Version)

	switch {
	case dep.Path != "":
		fmt.Fprintf(b, "source = \"path+%s\"\n", dep.Path)
	case dep.GitURL != "":
		fmt.Fprintf(b, "source = \"git+%s\"\n", dep.GitURL)
	case pkg.Source != "":
		if pkg.Kind() == manifest.SourceGit {
			fmt.Fprintf(b, "source = \"git+%s\"\n", pkg.Source)
		} else {
			fmt.Fprintf(b, "source = \"path+%s\"\n", pkg.Source)
		}
	default:
		log.Warn("no source or path found for package", "name", dep.Name)
	}

	if len(dep.EnabledFeatures) > 0 {
		features := dep.EnabledFeatures.Slice()
		quoted := make([]string, len(features))
		for i, f := range features {
			quoted[i] = fmt.Sprintf("%q", f)
		}
		fmt.Fprintf(b, "features = [%s]\n", strings.Join(quoted, ", "))
	}

	if len(pkg.Dependencies) > 0 {
		b.WriteString("dependencies = [\n")
		for _, child := range pkg.Dependencies.SortedEntries() {
			fmt.Fprintf(b, "  { name = %q, version = %q },\n", child.Name, child.Version)
		}
		b.WriteString("]\n")
	}

	b.WriteString("\n")
}

// WriteGitignore writes depsDir/.gitignore so that every fetched
// dependency's working tree is excluded from version control except for
// its own muuk.toml, grounded on muuklockgen.cpp's generate_gitignore.
func (g *Graph) WriteGitignore(depsDir string) error {
	var b strings.Builder
	b.WriteString("/*\n\n")

	for _, ref := range g.Order {
		if g.Base != nil && ref.Name == g.Base.Name && ref.Version == g.Base.Version {
			continue
		}
		if g.Find(ref.Name, ref.Version) == nil {
			continue
		}
		fmt.Fprintf(&b, "!/%s\n", ref.Name)
		fmt.Fprintf(&b, "/%s/*\n", ref.Name)
		fmt.Fprintf(&b, "!/%s/%s\n", ref.Name, ref.Version)
		fmt.Fprintf(&b, "/%s/%s/*\n", ref.Name, ref.Version)
		fmt.Fprintf(&b, "!/%s/%s/muuk.toml\n\n", ref.Name, ref.Version)
	}

	if err := os.MkdirAll(depsDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(depsDir, ".gitignore"), []byte(b.String()), 0o644)
}

// WriteCache renders the build-plan cache (muuk.lock.toml): every
// resolved package's fully-merged library/external settings plus every
// build target and resolved profile, grounded on muuklockgen.cpp's
// generate_cache.
func (g *Graph) WriteCache(outputPath string) error {
	doc := lockfmt.CacheDocument{
		Profile: make(map[string]lockfmt.ProfileEntry),
	}

	for _, ref := range g.Order {
		pkg := g.Find(ref.Name, ref.Version)
		if pkg == nil {
			continue
		}
		doc.Library = append(doc.Library, libraryEntry(pkg))
		if pkg.External.Name != "" {
			doc.External = append(doc.External, externalEntry(pkg.External))
		}
	}

	buildNames := make([]string, 0, len(g.Builds))
	for name := range g.Builds {
		buildNames = append(buildNames, name)
	}
	sort.Strings(buildNames)
	version := ""
	if g.Base != nil {
		version = g.Base.Version
	}
	for _, name := range buildNames {
		doc.Build = append(doc.Build, buildEntry(name, version, g.Builds[name]))
	}

	if g.Base != nil {
		for name := range g.Base.Profiles {
			resolved, err := g.Base.Profiles.Resolve(name)
			if err != nil {
				return err
			}
			doc.Profile[name] = profileEntry(g.Base.Profiles[name], resolved)
		}
	}

	data, err := lockfmt.MarshalCache(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func sourceEntries(files []manifest.SourceFile) []lockfmt.SourceEntry {
	out := make([]lockfmt.SourceEntry, len(files))
	for i, f := range files {
		out[i] = lockfmt.SourceEntry{Path: f.Path, CFlags: f.CFlags}
	}
	return out
}

func flagsEntry(b manifest.BaseFields) lockfmt.FlagsEntry {
	return lockfmt.FlagsEntry{
		Include:   b.Include.Slice(),
		Libs:      b.Libs.Slice(),
		Defines:   b.Defines.Slice(),
		Undefines: b.Undefines.Slice(),
		CFlags:    b.CFlags.Slice(),
		CXXFlags:  b.CXXFlags.Slice(),
		AFlags:    b.AFlags.Slice(),
		LFlags:    b.LFlags.Slice(),
	}
}

func libraryEntry(pkg *manifest.Package) lockfmt.LibraryEntry {
	lib := pkg.Library
	e := lockfmt.LibraryEntry{
		Name:       lib.Name,
		Version:    lib.Version,
		Path:       pkg.BasePath,
		FlagsEntry: flagsEntry(lib.BaseFields),
		Sources:    sourceEntries(lib.Sources),
		Modules:    sourceEntries(lib.Modules),
		LinkType:   lib.LinkType.String(),
		Profiles:   lib.Profiles.Slice(),
	}
	if lib.External.Name != "" {
		ext := externalEntry(lib.External)
		e.External = &ext
	}
	return e
}

func externalEntry(ext manifest.External) lockfmt.ExternalEntry {
	outputs := make([]string, len(ext.Outputs))
	for i, o := range ext.Outputs {
		outputs[i] = o.Path
	}
	return lockfmt.ExternalEntry{
		Name:    ext.Name,
		Version: ext.Version,
		Type:    ext.Type,
		Args:    ext.Args,
		Outputs: outputs,
		Path:    ext.Path,
	}
}

func buildEntry(name, version string, b *manifest.Build) lockfmt.BuildEntry {
	if b == nil {
		return lockfmt.BuildEntry{Name: name, Version: version}
	}
	return lockfmt.BuildEntry{
		Name:       name,
		Version:    version,
		FlagsEntry: flagsEntry(b.BaseFields),
		Sources:    sourceEntries(b.Sources),
		LinkType:   b.LinkType.String(),
		Profiles:   b.Profiles.Slice(),
	}
}

func profileEntry(p *manifest.Profile, resolved manifest.BaseConfig) lockfmt.ProfileEntry {
	return lockfmt.ProfileEntry{
		CFlags:      resolved.CFlags.Slice(),
		CXXFlags:    resolved.CXXFlags.Slice(),
		LFlags:      resolved.LFlags.Slice(),
		Defines:     resolved.Defines.Slice(),
		CxxStandard: p.CxxStandard,
	}
}
