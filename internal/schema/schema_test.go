package schema

import (
	"testing"

	"github.com/oarkflow/muuk/internal/compiler"
)

func TestValidateMissingPackageTable(t *testing.T) {
	v := NewValidator()
	res := v.Validate(map[string]any{})
	if res.Valid {
		t.Fatal("expected invalid result for missing [package]")
	}
}

func TestValidateDependencyNameGrammar(t *testing.T) {
	v := NewValidator()
	root := map[string]any{
		"package": map[string]any{"name": "demo", "version": "0.1.0"},
		"dependencies": map[string]any{
			"bad/name-": "1.0",
		},
	}
	res := v.Validate(root)
	if res.Valid {
		t.Fatal("expected invalid result for malformed dependency name")
	}
}

func TestValidDependencyNameAcceptsNamedExamples(t *testing.T) {
	for _, name := range []string{"gtkmm-4.0", "ncurses++", "pkg/name", "libboost_1.76"} {
		if ok, reason := validDependencyName(name); !ok {
			t.Errorf("expected %q to be accepted, got rejected: %s", name, reason)
		}
	}
}

func TestValidDependencyNameRejectsNamedExamples(t *testing.T) {
	for _, name := range []string{"-start", "end++-", "a.b.c", "pkg/name/extra", "pkg+name"} {
		if ok, _ := validDependencyName(name); ok {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestValidateDependencyRequiresSourceOrPath(t *testing.T) {
	v := NewValidator()
	root := map[string]any{
		"package": map[string]any{"name": "demo", "version": "0.1.0"},
		"dependencies": map[string]any{
			"fmt": map[string]any{"version": "10.0"},
		},
	}
	res := v.Validate(root)
	if res.Valid {
		t.Fatal("expected invalid result: dependency with no git/path")
	}
}

func TestValidateMixedFlagStyleRejected(t *testing.T) {
	v := NewValidator()
	root := map[string]any{
		"package": map[string]any{"name": "demo", "version": "0.1.0"},
		"library": map[string]any{
			"cflags": []any{"-Wall", "/W3"},
		},
	}
	res := v.Validate(root)
	if res.Valid {
		t.Fatal("expected invalid result: mixed flag styles")
	}
}

func TestValidateFlagForCompiler(t *testing.T) {
	if err := ValidateFlagForCompiler("-Wall", compiler.MSVC); err == nil {
		t.Error("expected error: GCC-style flag under MSVC")
	}
	if err := ValidateFlagForCompiler("/W3", compiler.GCC); err == nil {
		t.Error("expected error: MSVC-style flag under GCC")
	}
	if err := ValidateFlagForCompiler("-Wall", compiler.GCC); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateValidManifestPasses(t *testing.T) {
	v := NewValidator()
	root := map[string]any{
		"package": map[string]any{"name": "demo", "version": "0.1.0"},
		"dependencies": map[string]any{
			"fmt": map[string]any{"version": "10.0", "git": "https://github.com/fmtlib/fmt"},
		},
		"library": map[string]any{
			"sources": []any{"main.cpp"},
			"cflags":  []any{"-Wall", "-Wextra"},
		},
	}
	res := v.Validate(root)
	if !res.Valid {
		t.Fatalf("expected valid manifest, got errors: %v", res.Errors)
	}
}
