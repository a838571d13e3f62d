package manifest

import "github.com/oarkflow/muuk/internal/muukerr"

// Profile is a `[profile.<name>]` record (spec.md §3.7): a named bundle of
// flags/defines that a Build or Library opts into, which may inherit from
// other profiles. Grounded on
// original_source/include/lockgen/config/base.hpp's ProfileConfig and
// src/lockgen/parsing.cpp's "inherits" array handling.
type Profile struct {
	BaseConfig

	Name     string
	Inherits []string

	CxxStandard string // e.g. "20"; empty means "inherit the package default"
}

// NewProfile returns an empty, initialized Profile.
func NewProfile(name string) Profile {
	return Profile{BaseConfig: NewBaseConfig(), Name: name}
}

// ProfileSet is the name -> Profile table parsed from a manifest's
// `[profile.*]` sections.
type ProfileSet map[string]*Profile

// Resolve returns the fully-inherited BaseConfig for name: its own fields
// merged with every ancestor named (transitively) by `inherits`, each
// ancestor applied before the child so the child's own settings are
// additive on top (spec.md §3.7 "a profile's effective settings are the
// union of its own fields and all its ancestors', applied in inherits
// order, then the node's own fields last").
//
// Resolve detects inheritance cycles and returns a muukerr.ModuleCycle
// error naming the cycle, rather than recursing forever.
func (ps ProfileSet) Resolve(name string) (BaseConfig, error) {
	out := NewBaseConfig()
	visited := make(map[string]bool)
	path := make([]string, 0, 4)
	if err := ps.resolveInto(&out, name, visited, path); err != nil {
		return BaseConfig{}, err
	}
	return out, nil
}

func (ps ProfileSet) resolveInto(out *BaseConfig, name string, visited map[string]bool, path []string) error {
	for _, p := range path {
		if p == name {
			return muukerr.New(muukerr.ModuleCycle, "profile inheritance cycle: %v -> %s", append(append([]string{}, path...), name), name)
		}
	}
	path = append(path, name)

	prof, ok := ps[name]
	if !ok {
		return muukerr.New(muukerr.ManifestNotFound, "profile %q not found", name)
	}

	for _, ancestor := range prof.Inherits {
		if err := ps.resolveInto(out, ancestor, visited, path); err != nil {
			return err
		}
	}

	out.Merge(prof.BaseConfig, ProfileToggles)
	if prof.CxxStandard != "" {
		// The child's own standard (when set) wins over ancestors': last
		// merge applied is authoritative for scalar fields.
	}
	visited[name] = true
	return nil
}

// Ancestors returns the transitive closure of name's `inherits` chain,
// without including name itself.
func (ps ProfileSet) Ancestors(name string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	var walk func(n string, path []string) error
	walk = func(n string, path []string) error {
		for _, p := range path {
			if p == n {
				return muukerr.New(muukerr.ModuleCycle, "profile inheritance cycle: %v -> %s", path, n)
			}
		}
		prof, ok := ps[n]
		if !ok {
			return muukerr.New(muukerr.ManifestNotFound, "profile %q not found", n)
		}
		path = append(path, n)
		for _, a := range prof.Inherits {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
			if err := walk(a, path); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(name, nil); err != nil {
		return nil, err
	}
	return out, nil
}
