package manifest

import (
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/muukerr"
)

// Load parses a muuk.toml file's bytes into a Package rooted at basePath,
// following original_source/src/lockgen/parsing.cpp section by section:
// dependencies, profile, features, then the library/build/compiler/
// platform sub-trees.
func Load(data []byte, name, version, basePath string) (*Package, error) {
	var root map[string]any
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, muukerr.Wrap(muukerr.TomlTypeMismatch, err, "parsing manifest for %s", name)
	}

	// A manifest's own [package] table is authoritative for its name and
	// version (spec.md §3.1); callers that don't yet know them (loading
	// the root project off disk) pass empty strings and rely on this.
	if pkgRaw, ok := root["package"].(map[string]any); ok {
		if n, ok := pkgRaw["name"].(string); ok && n != "" {
			name = n
		}
		if v, ok := pkgRaw["version"].(string); ok && v != "" {
			version = v
		}
	}

	pkg := NewPackage(name, version, basePath)

	if err := parseDependenciesInto(root, pkg.Dependencies); err != nil {
		return nil, err
	}
	if err := parseProfiles(root, pkg.Profiles); err != nil {
		return nil, err
	}
	if err := parseFeatures(root, pkg); err != nil {
		return nil, err
	}
	if libRaw, ok := root["library"].(map[string]any); ok {
		lib, err := parseLibrary(libRaw, name, version, basePath)
		if err != nil {
			return nil, err
		}
		pkg.Library = lib
	}
	if buildsRaw, ok := root["build"].(map[string]any); ok {
		for bname, braw := range buildsRaw {
			btable, ok := braw.(map[string]any)
			if !ok {
				return nil, muukerr.New(muukerr.TomlTypeMismatch, "build %q must be a table", bname)
			}
			b, err := parseBuild(btable, bname, basePath)
			if err != nil {
				return nil, err
			}
			pkg.Builds[bname] = b
		}
	}
	if compRaw, ok := root["compiler"].(map[string]any); ok {
		if err := parseCompilers(compRaw, basePath, &pkg.Compilers); err != nil {
			return nil, err
		}
	}
	if platRaw, ok := root["platform"].(map[string]any); ok {
		if err := parsePlatforms(platRaw, basePath, &pkg.Platforms); err != nil {
			return nil, err
		}
	}
	if dfRaw, ok := root["default_features"].([]any); ok {
		for _, v := range dfRaw {
			if s, ok := v.(string); ok {
				pkg.DefaultFeatures.Add(s)
			}
		}
	}
	if scriptsRaw, ok := root["scripts"].(map[string]any); ok {
		for sname, v := range scriptsRaw {
			if s, ok := v.(string); ok {
				pkg.Scripts[sname] = s
			}
		}
	}
	return pkg, nil
}

func parseDependenciesInto(root map[string]any, into DependencyMap) error {
	depsRaw, ok := root["dependencies"].(map[string]any)
	if !ok {
		return nil
	}
	for depName, raw := range depsRaw {
		dep, err := parseDependency(depName, raw)
		if err != nil {
			return err
		}
		into.Put(dep)
	}
	return nil
}

// parseDependency accepts both the bare-version string shorthand
// (`foo = "1.0"`) and the full table form (spec.md §3.5), matching
// original_source/src/lockgen/base_config.cpp's Dependency::load.
func parseDependency(name string, raw any) (*Dependency, error) {
	dep := &Dependency{Name: name, EnabledFeatures: NewStringSet()}
	switch v := raw.(type) {
	case string:
		dep.Version = v
		return dep, nil
	case map[string]any:
		dep.GitURL, _ = v["git"].(string)
		dep.Path, _ = v["path"].(string)
		dep.Version, _ = v["version"].(string)
		dep.System, _ = v["system"].(bool)
		if feats, ok := v["features"].([]any); ok {
			for _, f := range feats {
				if s, ok := f.(string); ok {
					dep.EnabledFeatures.Add(s)
				}
			}
		}
		if libs, ok := v["libs"].([]any); ok {
			for _, l := range libs {
				if s, ok := l.(string); ok {
					dep.Libs = append(dep.Libs, s)
				}
			}
		}
		return dep, nil
	default:
		return nil, muukerr.New(muukerr.TomlTypeMismatch, "invalid dependency format for %q", name)
	}
}

// parseFeatures implements the dual list/table syntax of spec.md §3.6,
// canonicalizing both into the table-shaped Feature (spec.md §9 open
// question decision: canonical form is the table form internally).
func parseFeatures(root map[string]any, pkg *Package) error {
	raw, ok := root["features"].(map[string]any)
	if !ok {
		return nil
	}
	for fname, fraw := range raw {
		feat := NewFeature()
		switch v := fraw.(type) {
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					continue
				}
				switch {
				case strings.HasPrefix(s, "D:"):
					feat.Defines.Add(strings.TrimPrefix(s, "D:"))
				case strings.HasPrefix(s, "dep:"):
					feat.Dependencies.Add(strings.TrimPrefix(s, "dep:"))
				}
			}
		case map[string]any:
			if defs, ok := v["define"].([]any); ok {
				for _, d := range defs {
					if s, ok := d.(string); ok {
						feat.Defines.Add(s)
					}
				}
			}
			if undefs, ok := v["undefine"].([]any); ok {
				for _, d := range undefs {
					if s, ok := d.(string); ok {
						feat.Undefines.Add(s)
					}
				}
			}
			if deps, ok := v["dependencies"].([]any); ok {
				for _, d := range deps {
					if s, ok := d.(string); ok {
						feat.Dependencies.Add(s)
					}
				}
			}
		default:
			return muukerr.New(muukerr.TomlTypeMismatch, "feature %q must be a list or table", fname)
		}
		pkg.Features[fname] = feat
	}
	return nil
}

// parseProfiles does the two-pass load/inherit sequence spec.md §3.7
// describes: load every profile's own fields first, then walk each
// profile's `inherits` array. Cycle detection happens lazily in
// ProfileSet.Resolve rather than here, so malformed input is only
// rejected once something actually tries to resolve it.
func parseProfiles(root map[string]any, into ProfileSet) error {
	raw, ok := root["profile"].(map[string]any)
	if !ok {
		return nil
	}
	for pname, praw := range raw {
		ptable, ok := praw.(map[string]any)
		if !ok {
			continue
		}
		prof := NewProfile(pname)
		if err := parseBaseFieldsInto(ptable, ".", &prof.BaseFields); err != nil {
			return err
		}
		if inh, ok := ptable["inherits"].([]any); ok {
			for _, v := range inh {
				if s, ok := v.(string); ok {
					prof.Inherits = append(prof.Inherits, s)
				}
			}
		} else if inh, ok := ptable["inherits"].(string); ok {
			prof.Inherits = append(prof.Inherits, inh)
		}
		prof.CxxStandard, _ = ptable["cxx_standard"].(string)
		into[pname] = &prof
	}
	return nil
}

func parseLibrary(raw map[string]any, name, version, basePath string) (Library, error) {
	lib := NewLibrary(name, version)
	if err := parseBaseConfigInto(raw, basePath, &lib.BaseConfig); err != nil {
		return lib, err
	}
	if lt, ok := raw["link_type"].(string); ok {
		lib.LinkType = compiler.LinkTypeFromString(lt)
	}
	if profs, ok := raw["profiles"].([]any); ok {
		for _, p := range profs {
			if s, ok := p.(string); ok {
				lib.Profiles.Add(s)
			}
		}
	}
	if extRaw, ok := raw["external"].(map[string]any); ok {
		ext, err := parseExternal(extRaw, name, version)
		if err != nil {
			return lib, err
		}
		lib.External = ext
	}
	return lib, nil
}

func parseExternal(raw map[string]any, name, version string) (External, error) {
	ext := NewExternal(name, version)
	ext.Type, _ = raw["type"].(string)
	ext.Path, _ = raw["path"].(string)
	ext.SourceFile, _ = raw["source_file"].(string)
	if args, ok := raw["args"].([]any); ok {
		for _, a := range args {
			if s, ok := a.(string); ok {
				ext.Args = append(ext.Args, s)
			}
		}
	}
	if outs, ok := raw["outputs"].([]any); ok {
		for _, o := range outs {
			if s, ok := o.(string); ok {
				ext.Outputs = append(ext.Outputs, ExternalOutput{Path: s})
			}
		}
	}
	return ext, nil
}

func parseBuild(raw map[string]any, name, basePath string) (*Build, error) {
	b := NewBuild(name)
	if err := parseBaseFieldsInto(raw, basePath, &b.BaseFields); err != nil {
		return nil, err
	}
	if profs, ok := raw["profiles"].([]any); ok {
		for _, p := range profs {
			if s, ok := p.(string); ok {
				b.Profiles.Add(s)
			}
		}
	}
	if lt, ok := raw["link_type"].(string); ok {
		b.LinkType = compiler.BuildLinkTypeFromString(lt)
	}
	return &b, nil
}

func parseCompilers(raw map[string]any, basePath string, into *Compilers) error {
	for key, target := range map[string]*BaseFields{
		"clang": &into.Clang.BaseFields,
		"gcc":   &into.GCC.BaseFields,
		"msvc":  &into.MSVC.BaseFields,
	} {
		if sub, ok := raw[key].(map[string]any); ok {
			if err := parseBaseFieldsInto(sub, basePath, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func parsePlatforms(raw map[string]any, basePath string, into *Platforms) error {
	for key, target := range map[string]*BaseFields{
		"windows": &into.Windows.BaseFields,
		"linux":   &into.Linux.BaseFields,
		"apple":   &into.Apple.BaseFields,
	} {
		if sub, ok := raw[key].(map[string]any); ok {
			if err := parseBaseFieldsInto(sub, basePath, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseBaseConfigInto(raw map[string]any, basePath string, into *BaseConfig) error {
	if err := parseBaseFieldsInto(raw, basePath, &into.BaseFields); err != nil {
		return err
	}
	if compRaw, ok := raw["compiler"].(map[string]any); ok {
		if err := parseCompilers(compRaw, basePath, &into.Compilers); err != nil {
			return err
		}
	}
	if platRaw, ok := raw["platform"].(map[string]any); ok {
		if err := parsePlatforms(platRaw, basePath, &into.Platforms); err != nil {
			return err
		}
	}
	return nil
}

// parseBaseFieldsInto fills a BaseFields from one TOML table, matching
// original_source/include/lockgen/config/base.hpp's BaseFields::load.
func parseBaseFieldsInto(raw map[string]any, basePath string, into *BaseFields) error {
	var err error
	if into.Sources, err = parseSources(raw, basePath, "sources"); err != nil {
		return err
	}
	if into.Modules, err = parseSources(raw, basePath, "modules"); err != nil {
		return err
	}
	if incs, ok := raw["include"].([]any); ok {
		for _, v := range incs {
			if s, ok := v.(string); ok {
				into.Include.Add(normalizeRelPath(basePath, s))
			}
		}
	}
	fillSet(raw, "defines", into.Defines)
	fillSet(raw, "undefines", into.Undefines)
	fillSet(raw, "cflags", into.CFlags)
	fillSet(raw, "cxxflags", into.CXXFlags)
	fillSet(raw, "aflags", into.AFlags)
	fillSet(raw, "lflags", into.LFlags)
	fillSet(raw, "libs", into.Libs)

	if err := parseDependenciesInto(raw, into.Dependencies); err != nil {
		return err
	}
	return nil
}

func fillSet(raw map[string]any, key string, into StringSet) {
	arr, ok := raw[key].([]any)
	if !ok {
		return
	}
	for _, v := range arr {
		if s, ok := v.(string); ok {
			into.Add(s)
		}
	}
}

// parseSources implements spec.md §3.2's dual form: a plain string entry
// is either just a path, or a path followed by a space and its own
// per-file flags ("src/x.cpp -DFOO"), exactly as
// original_source/include/lockgen/config/base.hpp's parse_sources does.
func parseSources(raw map[string]any, basePath, key string) ([]SourceFile, error) {
	arr, ok := raw[key].([]any)
	if !ok {
		return nil, nil
	}
	out := make([]SourceFile, 0, len(arr))
	for _, v := range arr {
		switch e := v.(type) {
		case string:
			path := e
			var cflags []string
			if idx := strings.IndexByte(e, ' '); idx >= 0 {
				path = e[:idx]
				cflags = strings.Fields(e[idx+1:])
			}
			out = append(out, SourceFile{
				Path:   normalizeRelPath(basePath, path),
				CFlags: cflags,
			})
		case map[string]any:
			path, _ := e["path"].(string)
			var cflags []string
			if cf, ok := e["cflags"].([]any); ok {
				for _, f := range cf {
					if s, ok := f.(string); ok {
						cflags = append(cflags, s)
					}
				}
			}
			out = append(out, SourceFile{Path: normalizeRelPath(basePath, path), CFlags: cflags})
		default:
			return nil, muukerr.New(muukerr.TomlTypeMismatch, "invalid %s entry in manifest", key)
		}
	}
	return out, nil
}

// JoinBase joins basePath and rel the way manifest-relative paths are
// resolved throughout the package, exposed for callers outside the
// package (e.g. the resolver fetching a path-dependency's manifest).
func JoinBase(basePath, rel string) string {
	return filepath.Join(basePath, rel)
}
