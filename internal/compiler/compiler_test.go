package compiler

import "testing"

func TestFromString(t *testing.T) {
	cases := map[string]Compiler{
		"gcc": GCC, "g++": GCC,
		"clang": Clang, "clang++": Clang,
		"cl": MSVC, "msvc": MSVC,
	}
	for in, want := range cases {
		got, err := FromString(in)
		if err != nil {
			t.Fatalf("FromString(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("FromString(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := FromString("tcc"); err == nil {
		t.Error("expected error for unknown compiler")
	}
}

func TestStandardUpgrade(t *testing.T) {
	base := Cpp17
	dep := Cpp20
	if got := Max(base, dep); got != Cpp20 {
		t.Errorf("Max(Cpp17, Cpp20) = %v, want Cpp20", got)
	}
}

func TestStandardToFlag(t *testing.T) {
	if got := Cpp20.ToFlag(MSVC); got != "/std:c++20" {
		t.Errorf("got %q", got)
	}
	if got := Cpp20.ToFlag(GCC); got != "-std=c++20" {
		t.Errorf("got %q", got)
	}
	if got := Cpp26.ToFlag(MSVC); got != "/std:c++latest" {
		t.Errorf("Cpp26 MSVC fallback: got %q", got)
	}
}

func TestArchiverLinker(t *testing.T) {
	if GCC.Archiver() != "ar" || GCC.Linker() != "g++" {
		t.Error("GCC archiver/linker mismatch")
	}
	if MSVC.Archiver() != "lib" || MSVC.Linker() != "link" {
		t.Error("MSVC archiver/linker mismatch")
	}
	if Clang.Archiver() != "llvm-ar" {
		t.Error("Clang archiver mismatch")
	}
}

func TestStandardFromString(t *testing.T) {
	if StandardFromString("20") != Cpp20 {
		t.Error("expected Cpp20")
	}
	if StandardFromString("2a") != Cpp20 {
		t.Error("expected Cpp20 from 2a alias")
	}
	if StandardFromString("x") != Unknown {
		t.Error("expected Unknown for too-short string")
	}
}
