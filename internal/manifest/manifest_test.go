package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oarkflow/muuk/internal/muukerr"
)

func TestLoadFileMissingManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile(dir, "demo", "0.1.0")
	if !muukerr.Is(err, muukerr.ManifestNotFound) {
		t.Fatalf("expected ManifestNotFound, got %v", err)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	content := "[library]\nsources = [\"main.cpp\"]\n"
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	pkg, err := LoadFile(dir, "demo", "0.1.0")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(pkg.Library.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(pkg.Library.Sources))
	}
}
