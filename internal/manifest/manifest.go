package manifest

import (
	"os"
	"path/filepath"

	"github.com/oarkflow/muuk/internal/muukerr"
)

// ManifestFile is the conventional name of a muuk project manifest.
const ManifestFile = "muuk.toml"

// LoadFile reads and parses dir/muuk.toml, returning muukerr.ManifestNotFound
// if it does not exist (spec.md §4.1's "a missing manifest at the package
// root is a fatal-to-run error, not a fatal-to-package one").
func LoadFile(dir, name, version string) (*Package, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, muukerr.New(muukerr.ManifestNotFound, "no %s in %s", ManifestFile, dir).At(path)
		}
		return nil, muukerr.Wrap(muukerr.FileNotFound, err, "reading %s", path)
	}
	pkg, err := Load(data, name, version, dir)
	if err != nil {
		if me, ok := err.(*muukerr.Error); ok {
			return nil, me.At(path)
		}
		return nil, err
	}
	return pkg, nil
}
