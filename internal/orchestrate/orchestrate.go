// Package orchestrate glues the per-concern packages (manifest, resolve,
// fetch, plan, modules, emit) into the three user-facing lifecycle steps
// muuk exposes: loading a project, installing its dependencies, and
// building it. It plays the role original_source/src/lockgen/muuklockgen.cpp's
// MuukLockGenerator and src/builder/buildmanager.cpp's BuildManager play
// together in the original: both read their project's manifest tree and
// drive the fetch/resolve/plan/emit pipeline end to end.
package orchestrate

import (
	"runtime"

	"github.com/oarkflow/muuk/internal/compiler"
)

// Options configures one orchestrate.Project for a single run. Any field
// left zero is filled in by WithDefaults.
type Options struct {
	// Dir is the project root containing muuk.toml. Defaults to ".".
	Dir string
	// BuildDir is the root build.ninja/compile_commands.json directory,
	// e.g. "build/release". Defaults to "build/<Profile>".
	BuildDir string
	// DepsDir is where fetched dependencies are materialized. Defaults
	// to ".muuk/deps".
	DepsDir string
	// Profile names the active `[profile.<name>]` to resolve flags from.
	// Defaults to "release".
	Profile string
	// Compiler selects the active toolchain. Defaults to
	// compiler.Default(GOOS).
	Compiler compiler.Compiler
	// GOOS selects the target platform bucket and file-extension
	// conventions. Defaults to runtime.GOOS.
	GOOS string
	// Jobs caps scan/fetch concurrency. Defaults to runtime.GOMAXPROCS(0).
	Jobs int
	// Target, when non-empty, restricts Build to the single named
	// [build.<target>] entry instead of every build target declared in
	// the manifest.
	Target string
}

// WithDefaults returns a copy of o with every zero-value field filled in,
// mirroring original_source/src/cli/cli_options.cpp's option defaulting.
func (o Options) WithDefaults() Options {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.GOOS == "" {
		o.GOOS = runtime.GOOS
	}
	if o.Profile == "" {
		o.Profile = "release"
	}
	if o.BuildDir == "" {
		o.BuildDir = "build/" + o.Profile
	}
	if o.DepsDir == "" {
		o.DepsDir = ".muuk/deps"
	}
	if o.Compiler == 0 && o.GOOS != "linux" {
		// compiler.GCC is the zero value, so only substitute a
		// platform default when the caller's GOOS disagrees with it.
		o.Compiler = compiler.Default(o.GOOS)
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	return o
}
