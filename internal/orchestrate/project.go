package orchestrate

import (
	"path/filepath"

	"github.com/oarkflow/muuk/internal/manifest"
	"github.com/oarkflow/muuk/internal/resolve"
)

// Project is a loaded muuk project: its own manifest, plus (once Install
// has run) its resolved dependency graph.
type Project struct {
	Options Options
	Base    *manifest.Package
	Graph   *resolve.Graph
}

// Load reads dir's muuk.toml. The project's own name/version come from
// its `[package]` table (internal/manifest's parse-time override), since
// the caller loading the root project has no other way to know them in
// advance.
func Load(opts Options) (*Project, error) {
	opts = opts.WithDefaults()
	base, err := manifest.LoadFile(opts.Dir, "", "")
	if err != nil {
		return nil, err
	}
	return &Project{Options: opts, Base: base}, nil
}

// depsPath returns the absolute path the dependency cache lives under,
// relative to the project root.
func (p *Project) depsPath() string {
	if filepath.IsAbs(p.Options.DepsDir) {
		return p.Options.DepsDir
	}
	return filepath.Join(p.Base.BasePath, p.Options.DepsDir)
}
