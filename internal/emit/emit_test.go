package emit

import (
	"strings"
	"testing"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/plan"
)

func testOpts() NinjaOptions {
	return NinjaOptions{
		Profile:  "debug",
		Compiler: compiler.GCC,
		Archiver: "ar",
		Linker:   "g++",
		ProfileFlags: ProfileFlags{
			CFlags:  []string{"-g"},
			Defines: []string{"-DDEBUG"},
		},
	}
}

func TestWriteNinjaEmitsToolchainAndProfileVars(t *testing.T) {
	registry := plan.NewRegistry()
	out := WriteNinja(registry, testOpts())

	if !strings.Contains(out, "cxx = g++") {
		t.Errorf("expected toolchain cxx variable, got:\n%s", out)
	}
	if !strings.Contains(out, "profile_cflags = -g -DDEBUG") {
		t.Errorf("expected profile cflags variable, got:\n%s", out)
	}
	if !strings.Contains(out, "rule compile\n") || !strings.Contains(out, "rule archive\n") || !strings.Contains(out, "rule link\n") {
		t.Errorf("expected compile/archive/link rules, got:\n%s", out)
	}
}

func TestWriteNinjaEmitsCompilationEdgeWithFlags(t *testing.T) {
	registry := plan.NewRegistry()
	registry.AddCompilation(plan.CompilationTarget{
		Input:  "src/a.cpp",
		Output: "build/debug/obj/a.o",
		Flags:  []string{"-Iinclude"},
	})

	out := WriteNinja(registry, testOpts())
	if !strings.Contains(out, "build build/debug/obj/a.o: compile src/a.cpp\n") {
		t.Errorf("expected compile edge, got:\n%s", out)
	}
	if !strings.Contains(out, "  cflags = -Iinclude\n") {
		t.Errorf("expected per-target cflags, got:\n%s", out)
	}
}

func TestWriteNinjaEscapesWindowsDriveLetters(t *testing.T) {
	registry := plan.NewRegistry()
	registry.AddCompilation(plan.CompilationTarget{
		Input:  `C:\proj\src\a.cpp`,
		Output: `C:\proj\build\a.obj`,
	})

	out := WriteNinja(registry, testOpts())
	if !strings.Contains(out, `C$:/proj/build/a.obj`) {
		t.Errorf("expected drive letter escaped and slashes normalized, got:\n%s", out)
	}
}

func TestWriteNinjaEmitsModuleDependencyAsImplicitPrereq(t *testing.T) {
	registry := plan.NewRegistry()
	registry.AddCompilation(plan.CompilationTarget{
		Input:        "src/b.cppm",
		Output:       "build/obj/b.o",
		IsModule:     true,
		DependsOnOut: []string{"build/obj/a.o"},
	})

	out := WriteNinja(registry, testOpts())
	if !strings.Contains(out, "build build/obj/b.o: compile_module src/b.cppm | build/obj/a.o\n") {
		t.Errorf("expected module edge with implicit prereq, got:\n%s", out)
	}
}

func TestWriteNinjaEmitsPhonyAliasForLinkTargets(t *testing.T) {
	registry := plan.NewRegistry()
	registry.AddLink(plan.LinkTarget{
		Output: "build/debug/bin/app.exe",
		Inputs: []string{"build/debug/obj/main.o"},
	})

	out := WriteNinja(registry, testOpts())
	if !strings.Contains(out, "build app: phony build/debug/bin/app.exe\n") {
		t.Errorf("expected phony alias for link target stem, got:\n%s", out)
	}
}

func TestBuildCompileCommandsIncludesFlagsAndOutput(t *testing.T) {
	registry := plan.NewRegistry()
	registry.AddCompilation(plan.CompilationTarget{
		Input:  "src/a.cpp",
		Output: "build/obj/a.o",
		Flags:  []string{"-Wall"},
	})

	cmds := BuildCompileCommands(registry, testOpts(), "/work/build/debug")
	if len(cmds) != 1 {
		t.Fatalf("expected 1 compile command, got %d", len(cmds))
	}
	cmd := cmds[0]
	if cmd.Directory != "/work/build/debug" || cmd.File != "src/a.cpp" || cmd.Output != "build/obj/a.o" {
		t.Errorf("unexpected compile command fields: %+v", cmd)
	}
	if !strings.Contains(cmd.Command, "-Wall") || !strings.Contains(cmd.Command, "-g -DDEBUG") {
		t.Errorf("expected profile and target flags in command, got %q", cmd.Command)
	}
}
