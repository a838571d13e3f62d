package fetch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIdentityDigestOrderIndependent(t *testing.T) {
	a := Identity{Commit: "abc123", EnabledFeatures: []string{"x", "y"}}
	b := Identity{Commit: "abc123", EnabledFeatures: []string{"y", "x"}}
	if a.Digest() != b.Digest() {
		t.Errorf("digest should not depend on feature order: %q vs %q", a.Digest(), b.Digest())
	}
}

func TestIdentityDigestChangesWithCommit(t *testing.T) {
	a := Identity{Commit: "abc123"}
	b := Identity{Commit: "def456"}
	if a.Digest() == b.Digest() {
		t.Error("different commits should produce different digests")
	}
}

func TestSentinelRoundTrip(t *testing.T) {
	dir := t.TempDir()
	id := Identity{Commit: "abc123", EnabledFeatures: []string{"shared"}}

	if UpToDate(dir, id) {
		t.Fatal("empty dir should not be up to date")
	}
	if err := WriteSentinel(dir, id); err != nil {
		t.Fatalf("WriteSentinel: %v", err)
	}
	if !UpToDate(dir, id) {
		t.Fatal("expected up to date after WriteSentinel")
	}

	changed := Identity{Commit: "zzz999"}
	if UpToDate(dir, changed) {
		t.Fatal("different identity should not be up to date")
	}
}

func TestReadSentinelMissingFile(t *testing.T) {
	dir := t.TempDir()
	got, err := ReadSentinel(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty digest, got %q", got)
	}
}

func TestSentinelFileLocation(t *testing.T) {
	dir := t.TempDir()
	id := Identity{Commit: "abc"}
	if err := WriteSentinel(dir, id); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, SentinelName)); err != nil {
		t.Errorf("expected sentinel file at %s: %v", SentinelName, err)
	}
}
