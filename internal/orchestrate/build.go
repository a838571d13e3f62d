package orchestrate

import (
	"context"
	"fmt"

	"github.com/oarkflow/muuk/internal/emit"
	"github.com/oarkflow/muuk/internal/modules"
	"github.com/oarkflow/muuk/internal/plan"
)

// Build compiles every resolved package's library and every [build.*]
// target into a Registry, resolves C++20 module dependencies across the
// whole registry, and emits build.ninja plus compile_commands.json.
// Install must have run first so p.Graph is populated.
func (p *Project) Build(ctx context.Context, scanner *modules.Scanner) error {
	if p.Graph == nil {
		return fmt.Errorf("project not installed: call Install before Build")
	}

	opts := p.Options
	target := opts.Compiler
	c := plan.NewCompiler(opts.BuildDir, target, opts.GOOS)

	profileFields := resolveProfileFields(p.Base.Profiles, opts.Profile)
	std := resolveStandard(p.Base.Profiles, opts.Profile)

	archives := make(map[string]string, len(p.Graph.Order))
	for _, ref := range p.Graph.Order {
		pkg := p.Graph.Find(ref.Name, ref.Version)
		if pkg == nil {
			continue
		}
		lib := pkg.Library
		flags := effectiveFlags(lib.BaseFields, lib.Compilers, lib.Platforms, profileFields, std, target, opts.GOOS)
		if len(lib.Sources) > 0 || len(lib.Modules) > 0 {
			archives[ref.Name] = c.CompileLibrary(&lib, flags)
		}
		if pkg.External.Name != "" {
			c.CompileExternal(&pkg.External)
		}
	}

	names := sortedBuildNames(p.Base.Builds)
	if opts.Target != "" {
		if _, ok := p.Base.Builds[opts.Target]; !ok {
			return fmt.Errorf("no [build.%s] target declared", opts.Target)
		}
		names = []string{opts.Target}
	}

	for _, name := range names {
		b := p.Base.Builds[name]
		flags := effectiveFlags(b.BaseFields, b.Compilers, b.Platforms, profileFields, std, target, opts.GOOS)

		var libs []string
		for _, dep := range b.AllDependencies {
			if dep == nil {
				continue
			}
			if path, ok := archives[dep.Name]; ok {
				libs = append(libs, path)
			}
		}

		c.CompileBuild(b, flags, libs, nil)
	}

	if scanner != nil {
		if err := modules.ResolveModules(ctx, c.Registry(), scanner, opts.BuildDir); err != nil {
			return err
		}
	}

	ninjaOpts := emit.NinjaOptions{
		Profile:  opts.Profile,
		Compiler: target,
		Archiver: target.Archiver(),
		Linker:   target.Linker(),
		GOOS:     opts.GOOS,
		ProfileFlags: emit.ProfileFlags{
			CFlags:  append(profileFields.CFlags.Slice(), profileFields.CXXFlags.Slice()...),
			AFlags:  profileFields.AFlags.Slice(),
			LFlags:  profileFields.LFlags.Slice(),
			Defines: prefixDefines(profileFields.Defines.Slice()),
		},
	}

	if err := emit.WriteNinjaFile(c.Registry(), ninjaOpts, opts.BuildDir); err != nil {
		return err
	}
	cmds := emit.BuildCompileCommands(c.Registry(), ninjaOpts, opts.BuildDir)
	return emit.WriteCompileCommands(opts.BuildDir, cmds)
}

func prefixDefines(defines []string) []string {
	out := make([]string, len(defines))
	for i, d := range defines {
		out[i] = "-D" + d
	}
	return out
}
