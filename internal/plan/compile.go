package plan

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/flags"
	"github.com/oarkflow/muuk/internal/manifest"
)

// Compiler turns a resolved manifest.Package into the Registry of
// compile/archive/link targets that will become a Ninja build file,
// grounded on original_source/src/builder/buildparser.cpp's
// parse_compilation_targets/parse_libraries/parse_executables. The
// build-directory layout it reproduces is build/<profile>/<name>[/<version>]/....
type Compiler struct {
	BuildDir string // e.g. "build/release"
	Target   compiler.Compiler
	GOOS     string

	reg *Registry
}

// NewCompiler returns a Compiler writing into a fresh Registry.
func NewCompiler(buildDir string, target compiler.Compiler, goos string) *Compiler {
	return &Compiler{BuildDir: buildDir, Target: target, GOOS: goos, reg: NewRegistry()}
}

// Registry returns the Registry targets have been compiled into so far.
func (c *Compiler) Registry() *Registry { return c.reg }

// objectPath mirrors buildparser.cpp's
// `(build_dir / name / stem(src)).string() + OBJ_EXT` convention.
func (c *Compiler) objectPath(subdirs []string, srcPath string) string {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	parts := append([]string{c.BuildDir}, subdirs...)
	parts = append(parts, stem+compiler.ObjectExt(c.GOOS))
	return path.Join(parts...)
}

// CompileLibrary registers one CompilationTarget per source (and per
// module) in lib, plus the ArchiveTarget that bundles them, and returns
// the archive's output path so callers can feed it into a LinkTarget's
// inputs.
func (c *Compiler) CompileLibrary(lib *manifest.Library, effectiveFlags []string) string {
	subdirs := []string{lib.Name, lib.Version}
	var objs []string

	sources := expandGlobs(lib.Sources)
	modules := expandGlobs(lib.Modules)
	allSources := append(append([]manifest.SourceFile(nil), sources...), modules...)
	for i, sf := range sources {
		out := c.objectPath(subdirs, sf.Path)
		merged := mergeFlags(effectiveFlags, sf.CFlags)
		c.reg.AddCompilation(CompilationTarget{
			Input: sf.Path, Output: out,
			Flags:    flags.NormalizeList(merged, c.Target),
			Compiler: c.Target,
		})
		objs = append(objs, out)
		_ = i
	}
	for _, mf := range modules {
		out := c.objectPath(subdirs, mf.Path)
		merged := mergeFlags(effectiveFlags, mf.CFlags)
		c.reg.AddCompilation(CompilationTarget{
			Input: mf.Path, Output: out,
			Flags:    flags.NormalizeList(merged, c.Target),
			Compiler: c.Target,
			IsModule: true,
		})
		objs = append(objs, out)
	}
	_ = allSources

	libPath := path.Join(append(append([]string{c.BuildDir}, subdirs...), lib.Name+compiler.StaticLibExt(c.GOOS))...)
	c.reg.AddArchive(ArchiveTarget{
		Output:  libPath,
		Inputs:  objs,
		Archive: c.Target.Archiver(),
	})
	return libPath
}

// CompileBuild registers one CompilationTarget per source in b, plus the
// LinkTarget producing b's executable, linking in libs (archive paths
// from prior CompileLibrary calls for its dependencies).
func (c *Compiler) CompileBuild(b *manifest.Build, effectiveFlags []string, libs []string, libFlags []string) string {
	subdirs := []string{b.Name}
	var objs []string

	for _, sf := range expandGlobs(b.Sources) {
		out := c.objectPath(subdirs, sf.Path)
		merged := mergeFlags(effectiveFlags, sf.CFlags)
		c.reg.AddCompilation(CompilationTarget{
			Input: sf.Path, Output: out,
			Flags:    flags.NormalizeList(merged, c.Target),
			Compiler: c.Target,
		})
		objs = append(objs, out)
	}

	exePath := path.Join(c.BuildDir, b.Name, b.Name+compiler.ExeSuffix(c.GOOS))
	inputs := append(append([]string(nil), objs...), libs...)
	c.reg.AddLink(LinkTarget{
		Output:   exePath,
		Inputs:   inputs,
		Libs:     b.Libs.Slice(),
		LFlags:   flags.NormalizeList(append(append([]string(nil), b.LFlags.Slice()...), libFlags...), c.Target),
		LinkType: b.LinkType,
		Linker:   c.Target.Linker(),
	})
	return exePath
}

// CompileExternal registers an ExternalTarget for a `[library.external]`
// or `[external]` record.
func (c *Compiler) CompileExternal(ext *manifest.External) {
	c.reg.AddExternal(ExternalTarget{
		Name: ext.Name, Type: ext.Type, Args: ext.Args,
		Outputs: externalOutputPaths(ext.Outputs),
		WorkDir: path.Join(c.BuildDir, ext.Name),
	})
}

func externalOutputPaths(outs []manifest.ExternalOutput) []string {
	paths := make([]string, len(outs))
	for i, o := range outs {
		paths[i] = o.Path
	}
	return paths
}

// expandGlobs resolves any source entry whose path contains glob
// metacharacters into one SourceFile per match, preserving its per-file
// cflags across every match (spec.md §4.8 "Glob expansion": doublestar's
// `**` support lets a manifest write "src/**/*.cpp" instead of naming
// every file). An entry that isn't a glob, or that matches nothing, is
// passed through unchanged so a literal path still produces a normal
// (if missing) compilation target rather than silently vanishing.
func expandGlobs(sources []manifest.SourceFile) []manifest.SourceFile {
	out := make([]manifest.SourceFile, 0, len(sources))
	for _, sf := range sources {
		if !isGlobPattern(sf.Path) {
			out = append(out, sf)
			continue
		}
		matches, err := doublestar.FilepathGlob(sf.Path)
		if err != nil || len(matches) == 0 {
			out = append(out, sf)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			out = append(out, manifest.SourceFile{Path: m, CFlags: sf.CFlags})
		}
	}
	return out
}

func isGlobPattern(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

// mergeFlags concatenates package-level effective flags with a source
// file's own per-file cflags, file-level flags last so they can override
// (spec.md §3.2: "per-file cflags are appended after the package's own,
// so a file may re-enable or disable what the package sets").
func mergeFlags(base, perFile []string) []string {
	out := make([]string, 0, len(base)+len(perFile))
	out = append(out, base...)
	out = append(out, perFile...)
	return out
}
