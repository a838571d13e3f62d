package scancache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPutThenLookupRoundTrips(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.Put("abc", []byte(`{"rules":[]}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Lookup("abc")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if string(got) != `{"rules":[]}` {
		t.Errorf("unexpected cached value: %s", got)
	}
}

func TestLookupMissReturnsFalse(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := store.Lookup("nope"); ok {
		t.Error("expected a cache miss for an unknown hash")
	}
}

func TestOpenReloadsPersistedEntries(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put("key1", []byte(`{"rules":[{"primary-output":"a.o"}]}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open (reload): %v", err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("expected 1 persisted entry, got %d", reopened.Len())
	}
	if _, ok := reopened.Lookup("key1"); !ok {
		t.Error("expected reloaded store to contain key1")
	}
}

func TestHashFilesIsOrderIndependentAndChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.cpp")
	b := filepath.Join(dir, "b.cpp")
	if err := os.WriteFile(a, []byte("int a();"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("int b();"), 0o644); err != nil {
		t.Fatal(err)
	}

	h1 := HashFiles([]string{a, b})
	h2 := HashFiles([]string{b, a})
	if h1 != h2 {
		t.Errorf("expected hash independent of input order, got %q vs %q", h1, h2)
	}

	if err := os.WriteFile(a, []byte("int a(); // changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	h3 := HashFiles([]string{a, b})
	if h3 == h1 {
		t.Error("expected hash to change when file contents change")
	}
}
