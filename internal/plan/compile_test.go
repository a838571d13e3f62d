package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/manifest"
)

func TestCompileLibraryProducesObjectsAndArchive(t *testing.T) {
	c := NewCompiler("build/release", compiler.GCC, "linux")
	lib := manifest.NewLibrary("mathlib", "1.0.0")
	lib.Sources = []manifest.SourceFile{{Path: "src/add.cpp"}, {Path: "src/sub.cpp", CFlags: []string{"-O3"}}}

	archivePath := c.CompileLibrary(&lib, []string{"-Wall"})

	comps := c.Registry().Compilations()
	if len(comps) != 2 {
		t.Fatalf("expected 2 compilation targets, got %d", len(comps))
	}
	for _, ct := range comps {
		if !strings.HasSuffix(ct.Output, ".o") {
			t.Errorf("expected .o output on linux, got %q", ct.Output)
		}
		if !strings.Contains(ct.Output, "mathlib/1.0.0/") {
			t.Errorf("expected output under mathlib/1.0.0, got %q", ct.Output)
		}
	}

	archives := c.Registry().Archives()
	if len(archives) != 1 || archives[0].Output != archivePath {
		t.Fatalf("expected one archive target matching returned path, got %+v", archives)
	}
	if !strings.HasSuffix(archivePath, ".a") {
		t.Errorf("expected static lib extension .a on linux, got %q", archivePath)
	}
}

func TestCompileLibraryPerFileFlagsAppendAfterPackageFlags(t *testing.T) {
	c := NewCompiler("build/release", compiler.GCC, "linux")
	lib := manifest.NewLibrary("mathlib", "1.0.0")
	lib.Sources = []manifest.SourceFile{{Path: "src/sub.cpp", CFlags: []string{"-O3"}}}

	c.CompileLibrary(&lib, []string{"-Wall"})
	comps := c.Registry().Compilations()
	if len(comps) != 1 {
		t.Fatalf("expected 1 target, got %d", len(comps))
	}
	flags := comps[0].Flags
	if len(flags) != 2 || flags[0] != "-Wall" || flags[1] != "-O3" {
		t.Errorf("expected package flags then per-file flags, got %v", flags)
	}
}

func TestCompileBuildProducesLinkTarget(t *testing.T) {
	c := NewCompiler("build/release", compiler.GCC, "linux")
	b := manifest.NewBuild("app")
	b.Sources = []manifest.SourceFile{{Path: "src/main.cpp"}}

	exePath := c.CompileBuild(&b, nil, []string{"build/release/mathlib/1.0.0/mathlib.a"}, nil)

	links := c.Registry().Links()
	if len(links) != 1 || links[0].Output != exePath {
		t.Fatalf("expected one link target matching returned path, got %+v", links)
	}
	if len(links[0].Inputs) != 2 {
		t.Errorf("expected 1 object + 1 lib as link inputs, got %v", links[0].Inputs)
	}
}

func TestCompileLibraryExpandsGlobSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.cpp", "b.cpp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("// "+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "not-cpp.txt"), []byte("ignore"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCompiler("build/release", compiler.GCC, "linux")
	lib := manifest.NewLibrary("globlib", "1.0.0")
	lib.Sources = []manifest.SourceFile{{Path: filepath.Join(dir, "*.cpp")}}

	c.CompileLibrary(&lib, nil)

	comps := c.Registry().Compilations()
	if len(comps) != 2 {
		t.Fatalf("expected glob to expand to 2 compilation targets, got %d", len(comps))
	}
}

func TestCompileLibraryLeavesNonGlobMissingPathAlone(t *testing.T) {
	c := NewCompiler("build/release", compiler.GCC, "linux")
	lib := manifest.NewLibrary("mathlib", "1.0.0")
	lib.Sources = []manifest.SourceFile{{Path: "src/does-not-exist.cpp"}}

	c.CompileLibrary(&lib, nil)

	comps := c.Registry().Compilations()
	if len(comps) != 1 || comps[0].Input != "src/does-not-exist.cpp" {
		t.Errorf("expected literal path to pass through unchanged, got %+v", comps)
	}
}

func TestCompileLibraryWindowsExtensions(t *testing.T) {
	c := NewCompiler("build/release", compiler.MSVC, "windows")
	lib := manifest.NewLibrary("mathlib", "1.0.0")
	lib.Sources = []manifest.SourceFile{{Path: "src/add.cpp"}}

	archivePath := c.CompileLibrary(&lib, nil)
	if !strings.HasSuffix(archivePath, ".lib") {
		t.Errorf("expected .lib on windows, got %q", archivePath)
	}
	for _, ct := range c.Registry().Compilations() {
		if !strings.HasSuffix(ct.Output, ".obj") {
			t.Errorf("expected .obj on windows, got %q", ct.Output)
		}
	}
}
