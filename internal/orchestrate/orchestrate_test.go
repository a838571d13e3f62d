package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/manifest"
)

// writeFixtureProject lays out a tiny two-package project on disk: a
// root "app" build depending on a path-referenced "mathlib" library, so
// Install can exercise the real filesystem fetch/resolve path without
// ever touching the network (path dependencies are never fetched).
func writeFixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mathlibDir := filepath.Join(root, "mathlib")

	mustWrite := func(path, content string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite(filepath.Join(mathlibDir, "muuk.toml"), `
[package]
name = "mathlib"
version = "1.0.0"

[library]
sources = ["src/add.cpp"]
include = ["include"]
`)
	mustWrite(filepath.Join(mathlibDir, "src", "add.cpp"), "int add(int a, int b) { return a + b; }")

	mustWrite(filepath.Join(root, "muuk.toml"), fmt.Sprintf(`
[package]
name = "app"
version = "1.0.0"

[profile.release]
cflags = ["-O2"]

[dependencies.mathlib]
path = %q
version = "1.0.0"

[build.app]
sources = ["src/main.cpp"]

[build.app.dependencies]
mathlib = "1.0.0"
`, mathlibDir))
	mustWrite(filepath.Join(root, "src", "main.cpp"), "int main() { return 0; }")

	return root
}

func TestLoadReadsPackageTableNameAndVersion(t *testing.T) {
	root := writeFixtureProject(t)
	p, err := Load(Options{Dir: root, GOOS: "linux", Compiler: compiler.GCC})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Base.Name != "app" || p.Base.Version != "1.0.0" {
		t.Errorf("expected app@1.0.0 from [package] table, got %s@%s", p.Base.Name, p.Base.Version)
	}
}

func TestInstallResolvesPathDependencyWithoutNetwork(t *testing.T) {
	root := writeFixtureProject(t)
	p, err := Load(Options{Dir: root, GOOS: "linux", Compiler: compiler.GCC})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := p.Install(context.Background()); err != nil {
		t.Fatalf("Install: %v", err)
	}

	if p.Graph == nil {
		t.Fatal("expected Install to populate Graph")
	}
	if p.Graph.Find("mathlib", "1.0.0") == nil {
		t.Fatal("expected mathlib to be resolved")
	}
	if _, err := os.Stat(filepath.Join(root, "muuk.lock")); err != nil {
		t.Errorf("expected muuk.lock written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "muuk.lock.toml")); err != nil {
		t.Errorf("expected muuk.lock.toml written: %v", err)
	}
}

func TestBuildEmitsNinjaAndCompileCommands(t *testing.T) {
	root := writeFixtureProject(t)
	buildDir := filepath.Join(root, "build", "release")
	p, err := Load(Options{Dir: root, BuildDir: buildDir, Profile: "release", GOOS: "linux", Compiler: compiler.GCC})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Install(context.Background()); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := p.Build(context.Background(), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	ninja, err := os.ReadFile(filepath.Join(buildDir, "build.ninja"))
	if err != nil {
		t.Fatalf("reading build.ninja: %v", err)
	}
	if !strings.Contains(string(ninja), "add.cpp") {
		t.Errorf("expected mathlib source compiled into build.ninja, got:\n%s", ninja)
	}
	if !strings.Contains(string(ninja), "main.cpp") {
		t.Errorf("expected app build source compiled into build.ninja, got:\n%s", ninja)
	}
	if !strings.Contains(string(ninja), "profile_cflags = -O2") {
		t.Errorf("expected release profile cflags in build.ninja, got:\n%s", ninja)
	}

	if _, err := os.Stat(filepath.Join(buildDir, "compile_commands.json")); err != nil {
		t.Errorf("expected compile_commands.json written: %v", err)
	}
}

func TestBuildWithoutInstallErrors(t *testing.T) {
	root := writeFixtureProject(t)
	p, err := Load(Options{Dir: root, GOOS: "linux", Compiler: compiler.GCC})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Build(context.Background(), nil); err == nil {
		t.Error("expected Build to fail before Install has populated Graph")
	}
}

func TestEffectiveFlagsOrdersBaseThenPlatformThenCompilerThenProfile(t *testing.T) {
	base := manifest.NewBaseFields()
	base.Include.Add("include")
	base.Defines.Add("BASE")

	platforms := manifest.NewPlatforms()
	platforms.Linux.Defines.Add("LINUX")

	compilers := manifest.NewCompilers()
	compilers.GCC.Defines.Add("GCCFLAG")

	profile := manifest.NewBaseFields()
	profile.Defines.Add("RELEASE")

	got := effectiveFlags(base, compilers, platforms, profile, compiler.Cpp20, compiler.GCC, "linux")

	joined := strings.Join(got, " ")
	for _, want := range []string{"-Iinclude", "-DBASE", "-DLINUX", "-DGCCFLAG", "-DRELEASE", "-std=c++20"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in effective flags %v", want, got)
		}
	}
}

func TestResolveStandardDefaultsToCpp20(t *testing.T) {
	profiles := manifest.ProfileSet{}
	if std := resolveStandard(profiles, "release"); std != compiler.Cpp20 {
		t.Errorf("expected Cpp20 default, got %v", std)
	}
}

func TestResolveStandardHonorsProfileCxxStandard(t *testing.T) {
	prof := manifest.NewProfile("release")
	prof.CxxStandard = "23"
	profiles := manifest.ProfileSet{"release": &prof}
	if std := resolveStandard(profiles, "release"); std != compiler.Cpp23 {
		t.Errorf("expected Cpp23 from profile cxx_standard, got %v", std)
	}
}
