package flags

import (
	"testing"

	"github.com/oarkflow/muuk/internal/compiler"
)

func TestNormalizeStdFlag(t *testing.T) {
	if got := Normalize("-std=c++20", compiler.MSVC); got != "/std:c++20" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("/std:c++20", compiler.GCC); got != "-std=c++20" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeDefine(t *testing.T) {
	if got := Normalize("-DFOO", compiler.MSVC); got != "/DFOO" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("/DFOO", compiler.GCC); got != "-DFOO" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeTable(t *testing.T) {
	if got := Normalize("/W3", compiler.GCC); got != "-Wall -Wextra -Wpedantic" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("-O2", compiler.MSVC); got != "/O2" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeUnknownPassesThrough(t *testing.T) {
	if got := Normalize("-fsome-weird-flag", compiler.MSVC); got != "-fsome-weird-flag" {
		t.Errorf("unknown flag should pass through unchanged, got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{"-std=c++20", "/W3", "-O2", "-DFOO=1", "-fsome-weird-flag", "Wall"}
	for _, s := range samples {
		for _, c := range []compiler.Compiler{compiler.GCC, compiler.Clang, compiler.MSVC} {
			once := Normalize(s, c)
			twice := Normalize(once, c)
			if once != twice {
				t.Errorf("Normalize not idempotent for %q/%v: %q vs %q", s, c, once, twice)
			}
		}
	}
}

func TestNormalizeListElementWise(t *testing.T) {
	in := []string{"-std=c++20", "-O2"}
	out := NormalizeList(in, compiler.MSVC)
	want := []string{"/std:c++20", "/O2"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("index %d: got %q want %q", i, out[i], want[i])
		}
	}
}
