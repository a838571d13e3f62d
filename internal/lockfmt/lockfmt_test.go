package lockfmt

import (
	"strings"
	"testing"
)

func TestForceMultilineArraysRewritesListedKeys(t *testing.T) {
	in := []byte(`name = "fmt"
sources = ["a.cpp", "b.cpp"]
version = "1.0"
`)
	out := string(ForceMultilineArrays(in, "sources"))

	if !strings.Contains(out, "sources = [\n") {
		t.Fatalf("expected sources array rewritten to multiline, got:\n%s", out)
	}
	if !strings.Contains(out, `    "a.cpp",`) || !strings.Contains(out, `    "b.cpp",`) {
		t.Errorf("expected each element on its own indented line, got:\n%s", out)
	}
	if !strings.Contains(out, `name = "fmt"`) || !strings.Contains(out, `version = "1.0"`) {
		t.Errorf("expected unrelated lines untouched, got:\n%s", out)
	}
}

func TestForceMultilineArraysLeavesUnlistedKeysAlone(t *testing.T) {
	in := []byte(`libs = ["m", "pthread"]
`)
	out := string(ForceMultilineArrays(in, "sources"))
	if out != string(in) {
		t.Errorf("expected unlisted key untouched, got:\n%s", out)
	}
}

func TestMarshalCacheRoundTrips(t *testing.T) {
	doc := CacheDocument{
		Library: []LibraryEntry{
			{
				Name:    "mathlib",
				Version: "1.0.0",
				Path:    "deps/mathlib/1.0.0",
				FlagsEntry: FlagsEntry{
					Defines: []string{"USE_MATH"},
				},
				Sources: []SourceEntry{{Path: "src/add.cpp"}},
			},
		},
		Build: []BuildEntry{
			{Name: "app", Version: "1.0.0", LinkType: "executable"},
		},
	}

	data, err := MarshalCache(doc)
	if err != nil {
		t.Fatalf("MarshalCache: %v", err)
	}

	got, err := UnmarshalCache(data)
	if err != nil {
		t.Fatalf("UnmarshalCache: %v\n%s", err, data)
	}
	if len(got.Library) != 1 || got.Library[0].Name != "mathlib" {
		t.Fatalf("expected one library entry named mathlib, got %+v", got.Library)
	}
	if len(got.Build) != 1 || got.Build[0].Name != "app" {
		t.Fatalf("expected one build entry named app, got %+v", got.Build)
	}
}

func TestSplitTopLevelIgnoresCommasInsideStrings(t *testing.T) {
	got := splitTopLevel(`"a, b", "c"`)
	if len(got) != 2 || got[0] != `"a, b"` || got[1] != `"c"` {
		t.Errorf("expected comma inside quotes preserved, got %#v", got)
	}
}
