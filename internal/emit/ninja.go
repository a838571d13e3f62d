// Package emit renders a compiled plan.Registry into the two build-file
// artifacts muuk hands off to external tooling: a Ninja build file and a
// compile_commands.json compilation database, grounded on
// original_source/src/builder/ninjabackend.cpp (spec.md §4.7). Nothing
// about ninja's own execution is modeled — only the text format it reads.
package emit

import (
	"fmt"
	"path"
	"strings"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/plan"
)

// NinjaOptions configures one Ninja emission pass.
type NinjaOptions struct {
	Profile      string
	Compiler     compiler.Compiler
	Archiver     string
	Linker       string
	ProfileFlags ProfileFlags
	// ModuleDir is the directory compiled module interfaces (.ifc/.pcm/.gcm)
	// are written to, relative to the Ninja file's own directory.
	ModuleDir string
	// GOOS picks the object-file extension of the Clang follow-up compile
	// edge; the drive-letter escape is applied whatever its value.
	GOOS string
}

// ProfileFlags are the normalized, already-prefixed flags extracted from
// a [profile.<name>] table (spec.md §4.6.1).
type ProfileFlags struct {
	CFlags  []string
	AFlags  []string
	LFlags  []string
	Defines []string
}

func (p ProfileFlags) cflagsVar() string {
	return strings.Join(append(append([]string{}, p.CFlags...), p.Defines...), " ")
}

// WriteNinja renders registry's targets into a build.ninja document,
// grounded on NinjaBackend::generate_build_file/write_header/generate_rule.
func WriteNinja(registry *plan.Registry, opts NinjaOptions) string {
	var b strings.Builder

	writeHeader(&b, opts)
	writeRules(&b, opts)

	b.WriteString("# ------------------------------------------------------------\n")
	b.WriteString("# Build edges\n")
	b.WriteString("# ------------------------------------------------------------\n\n")

	stems := map[string]bool{}
	for _, t := range registry.Compilations() {
		writeCompilationEdge(&b, t, opts)
	}
	b.WriteString("\n")
	for _, t := range registry.Archives() {
		writeArchiveEdge(&b, t)
	}
	b.WriteString("\n")
	for _, t := range registry.Links() {
		writeLinkEdge(&b, t, opts, stems)
	}
	b.WriteString("\n")
	for _, t := range registry.Externals() {
		writeExternalEdges(&b, t, opts)
	}

	return b.String()
}

func writeHeader(b *strings.Builder, opts NinjaOptions) {
	fmt.Fprintf(b, "# ------------------------------------------------------------\n")
	fmt.Fprintf(b, "# Auto-generated Ninja build file\n")
	fmt.Fprintf(b, "# Profile: %s\n", opts.Profile)
	fmt.Fprintf(b, "# ------------------------------------------------------------\n\n")

	fmt.Fprintf(b, "# Toolchain configuration\n")
	fmt.Fprintf(b, "cxx = %s\n", opts.Compiler.String())
	fmt.Fprintf(b, "ar = %s\n", opts.Archiver)
	fmt.Fprintf(b, "linker = %s\n\n", opts.Linker)

	fmt.Fprintf(b, "# Profile-specific flags\n")
	fmt.Fprintf(b, "profile_cflags = %s\n", opts.ProfileFlags.cflagsVar())
	fmt.Fprintf(b, "profile_aflags = %s\n", strings.Join(opts.ProfileFlags.AFlags, " "))
	fmt.Fprintf(b, "profile_lflags = %s\n\n", strings.Join(opts.ProfileFlags.LFlags, " "))
}

func writeRules(b *strings.Builder, opts NinjaOptions) {
	moduleDir := opts.ModuleDir
	if moduleDir == "" {
		moduleDir = "modules"
	}

	b.WriteString("# ------------------------------------------------------------\n")
	b.WriteString("# Rules for compiling C++ modules\n")
	b.WriteString("# ------------------------------------------------------------\n")

	switch opts.Compiler {
	case compiler.MSVC:
		fmt.Fprintf(b, "rule compile_module\n")
		fmt.Fprintf(b, "  command = $cxx /std:c++20 /c $in /Fo$out /ifcOnly /ifcOutput %s /ifcSearchDir %s $cflags $profile_cflags\n", moduleDir, moduleDir)
		b.WriteString("  description = Compiling C++ module $in\n\n")
	case compiler.Clang:
		fmt.Fprintf(b, "rule compile_module\n")
		fmt.Fprintf(b, "  command = $cxx -std=c++20 -x c++-module --precompile -fprebuilt-module-path=%s $in -o $out $cflags $profile_cflags\n", moduleDir)
		b.WriteString("  description = Compiling C++ module $in\n\n")
	default: // GCC
		fmt.Fprintf(b, "rule compile_module\n")
		fmt.Fprintf(b, "  command = $cxx -std=c++20 -fmodules-ts -c $in -o $out -fmodule-output=%s $cflags\n", moduleDir)
		b.WriteString("  description = Compiling C++ module $in\n\n")
	}

	b.WriteString("# ------------------------------------------------------------\n")
	b.WriteString("# Compilation, archiving, and linking rules\n")
	b.WriteString("# ------------------------------------------------------------\n")

	if opts.Compiler == compiler.MSVC {
		b.WriteString("rule compile\n")
		b.WriteString("  command = $cxx /c $in /Fo$out $profile_cflags $platform_cflags $cflags /showIncludes\n")
		b.WriteString("  deps = msvc\n")
		b.WriteString("  description = Compiling $in\n\n")

		b.WriteString("rule archive\n")
		b.WriteString("  command = $ar /OUT:$out $in\n")
		b.WriteString("  description = Archiving $out\n\n")

		b.WriteString("rule link\n")
		b.WriteString("  command = $linker $in /OUT:$out $profile_lflags $lflags $libraries\n")
		b.WriteString("  description = Linking $out\n\n")

		b.WriteString("rule link_shared\n")
		b.WriteString("  command = $linker $in /DLL /OUT:$out $profile_lflags $lflags $libraries\n")
		b.WriteString("  description = Linking shared library $out\n\n")
	} else {
		b.WriteString("rule compile\n")
		b.WriteString("  command = $cxx -c $in -o $out $profile_cflags $platform_cflags $cflags\n")
		b.WriteString("  description = Compiling $in\n\n")

		b.WriteString("rule archive\n")
		b.WriteString("  command = $ar rcs $out $in\n")
		b.WriteString("  description = Archiving $out\n\n")

		b.WriteString("rule link\n")
		b.WriteString("  command = $linker $in -o $out $profile_lflags $lflags $libraries\n")
		b.WriteString("  description = Linking $out\n\n")

		b.WriteString("rule link_shared\n")
		b.WriteString("  command = $linker -shared $in -o $out $profile_lflags $lflags $libraries\n")
		b.WriteString("  description = Linking shared library $out\n\n")
	}

	b.WriteString("rule configure_external\n")
	b.WriteString("  command = cmake -S $in -B $builddir -DCMAKE_BUILD_TYPE=$cmake_profile $args\n")
	b.WriteString("  description = Configuring external target $name\n\n")

	b.WriteString("rule build_external\n")
	b.WriteString("  command = cmake --build $builddir\n")
	b.WriteString("  description = Building external target $name\n\n")
}

// escapePath applies the Windows drive-letter Ninja escape (spec.md §4.8:
// "C:" -> "C$:") and normalizes to forward slashes.
func escapePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if len(p) >= 2 && p[1] == ':' && ((p[0] >= 'A' && p[0] <= 'Z') || (p[0] >= 'a' && p[0] <= 'z')) {
		return p[:1] + "$:" + p[2:]
	}
	return p
}

func writeCompilationEdge(b *strings.Builder, t plan.CompilationTarget, opts NinjaOptions) {
	rule := "compile"
	if t.IsModule {
		rule = "compile_module"
	}

	fmt.Fprintf(b, "build %s: %s %s", escapePath(t.Output), rule, escapePath(t.Input))
	if len(t.DependsOnOut) > 0 {
		b.WriteString(" |")
		for _, d := range t.DependsOnOut {
			fmt.Fprintf(b, " %s", escapePath(d))
		}
	}
	b.WriteString("\n")
	if len(t.Flags) > 0 {
		fmt.Fprintf(b, "  cflags = %s\n", strings.Join(t.Flags, " "))
	}

	if t.IsModule && opts.Compiler == compiler.Clang {
		objOut := strings.TrimSuffix(t.Output, path.Ext(t.Output)) + compiler.ObjectExt(opts.GOOS)
		fmt.Fprintf(b, "build %s: compile %s\n", escapePath(objOut), escapePath(t.Output))
	}
	b.WriteString("\n")
}

func writeArchiveEdge(b *strings.Builder, t plan.ArchiveTarget) {
	fmt.Fprintf(b, "build %s: archive", escapePath(t.Output))
	for _, in := range t.Inputs {
		fmt.Fprintf(b, " %s", escapePath(in))
	}
	b.WriteString("\n\n")
}

func writeLinkEdge(b *strings.Builder, t plan.LinkTarget, opts NinjaOptions, stems map[string]bool) {
	rule := "link"
	if t.LinkType == compiler.Shared {
		rule = "link_shared"
	}

	fmt.Fprintf(b, "build %s: %s", escapePath(t.Output), rule)
	for _, in := range t.Inputs {
		fmt.Fprintf(b, " %s", escapePath(in))
	}
	b.WriteString("\n")
	if len(t.LFlags) > 0 {
		fmt.Fprintf(b, "  lflags = %s\n", strings.Join(t.LFlags, " "))
	}
	if len(t.Libs) > 0 {
		fmt.Fprintf(b, "  libraries = %s\n", strings.Join(t.Libs, " "))
	}
	b.WriteString("\n")

	stem := strings.TrimSuffix(path.Base(t.Output), path.Ext(t.Output))
	if !stems[stem] {
		stems[stem] = true
		fmt.Fprintf(b, "build %s: phony %s\n\n", stem, escapePath(t.Output))
	}
}

func writeExternalEdges(b *strings.Builder, t plan.ExternalTarget, opts NinjaOptions) {
	buildDir := path.Join("external", t.Name, "build")
	cmakeProfile := "Debug"
	if opts.Profile == "release" {
		cmakeProfile = "Release"
	}

	configureStamp := path.Join(buildDir, ".configured")
	fmt.Fprintf(b, "build %s: configure_external %s\n", configureStamp, escapePath(t.WorkDir))
	fmt.Fprintf(b, "  name = %s\n", t.Name)
	fmt.Fprintf(b, "  builddir = %s\n", buildDir)
	fmt.Fprintf(b, "  cmake_profile = %s\n", cmakeProfile)
	if len(t.Args) > 0 {
		fmt.Fprintf(b, "  args = %s\n", strings.Join(t.Args, " "))
	}
	b.WriteString("\n")

	for _, out := range t.Outputs {
		fmt.Fprintf(b, "build %s: build_external | %s\n", escapePath(out), configureStamp)
		fmt.Fprintf(b, "  name = %s\n", t.Name)
		fmt.Fprintf(b, "  builddir = %s\n\n", buildDir)
	}
}
