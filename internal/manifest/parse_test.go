package manifest

import "testing"

func TestLoadDependencyShorthandAndTable(t *testing.T) {
	doc := []byte(`
[dependencies]
fmt = "10.0"

[dependencies.spdlog]
version = "1.14.0"
git = "https://github.com/gabime/spdlog"
features = ["shared"]
`)
	pkg, err := Load(doc, "demo", "0.1.0", ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := pkg.Dependencies.SortedEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(entries))
	}
	var fmtDep, spdlogDep *Dependency
	for _, e := range entries {
		switch e.Name {
		case "fmt":
			fmtDep = e
		case "spdlog":
			spdlogDep = e
		}
	}
	if fmtDep == nil || fmtDep.Version != "10.0" {
		t.Errorf("fmt dependency not parsed correctly: %+v", fmtDep)
	}
	if spdlogDep == nil || spdlogDep.GitURL == "" || !spdlogDep.EnabledFeatures.Has("shared") {
		t.Errorf("spdlog dependency not parsed correctly: %+v", spdlogDep)
	}
}

func TestLoadFeatureListSyntax(t *testing.T) {
	doc := []byte(`
[features]
logging = ["D:ENABLE_LOGGING", "dep:spdlog"]
`)
	pkg, err := Load(doc, "demo", "0.1.0", ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := pkg.Features["logging"]
	if !ok {
		t.Fatal("expected 'logging' feature")
	}
	if !f.Defines.Has("ENABLE_LOGGING") {
		t.Errorf("expected define ENABLE_LOGGING, got %v", f.Defines.Slice())
	}
	if !f.Dependencies.Has("spdlog") {
		t.Errorf("expected dependency spdlog, got %v", f.Dependencies.Slice())
	}
}

func TestLoadFeatureTableSyntax(t *testing.T) {
	doc := []byte(`
[features.logging]
define = ["ENABLE_LOGGING"]
dependencies = ["spdlog"]
`)
	pkg, err := Load(doc, "demo", "0.1.0", ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := pkg.Features["logging"]
	if !ok {
		t.Fatal("expected 'logging' feature")
	}
	if !f.Defines.Has("ENABLE_LOGGING") || !f.Dependencies.Has("spdlog") {
		t.Errorf("table-form feature parsed incorrectly: %+v", f)
	}
}

func TestLoadSourcesWithInlineFlags(t *testing.T) {
	doc := []byte(`
[library]
sources = ["src/main.cpp -DFOO -O2", "src/util.cpp"]
`)
	pkg, err := Load(doc, "demo", "0.1.0", ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pkg.Library.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(pkg.Library.Sources))
	}
	main := pkg.Library.Sources[0]
	if len(main.CFlags) != 2 || main.CFlags[0] != "-DFOO" || main.CFlags[1] != "-O2" {
		t.Errorf("expected inline cflags extracted, got %+v", main)
	}
}

func TestLoadProfileInheritsArray(t *testing.T) {
	doc := []byte(`
[profile.base]
cflags = ["-Wall"]

[profile.release]
inherits = ["base"]
cflags = ["-O3"]
`)
	pkg, err := Load(doc, "demo", "0.1.0", ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	resolved, err := pkg.Profiles.Resolve("release")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolved.CFlags.Has("-Wall") || !resolved.CFlags.Has("-O3") {
		t.Errorf("expected inherited + own flags, got %v", resolved.CFlags.Slice())
	}
}

func TestLoadCompilerAndPlatformSubtrees(t *testing.T) {
	doc := []byte(`
[compiler.gcc]
cflags = ["-fno-exceptions"]

[platform.windows]
defines = ["WIN32"]
`)
	pkg, err := Load(doc, "demo", "0.1.0", ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !pkg.Compilers.GCC.CFlags.Has("-fno-exceptions") {
		t.Errorf("expected gcc-specific cflag, got %v", pkg.Compilers.GCC.CFlags.Slice())
	}
	if !pkg.Platforms.Windows.Defines.Has("WIN32") {
		t.Errorf("expected windows-specific define, got %v", pkg.Platforms.Windows.Defines.Slice())
	}
}

func TestLoadScriptsTable(t *testing.T) {
	doc := []byte(`
[scripts]
hello = "echo Hello, Muuk!"
test = "ctest --output-on-failure"
`)
	pkg, err := Load(doc, "demo", "0.1.0", ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pkg.Scripts["hello"] != "echo Hello, Muuk!" {
		t.Errorf("expected 'hello' script parsed, got %+v", pkg.Scripts)
	}
	if pkg.Scripts["test"] != "ctest --output-on-failure" {
		t.Errorf("expected 'test' script parsed, got %+v", pkg.Scripts)
	}
}
