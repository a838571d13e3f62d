package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/oarkflow/muuk/internal/plan"
)

// CompileCommand is one entry of a compile_commands.json compilation
// database (spec.md §4.7.2), the de facto format clangd/clang-tidy and
// other tooling consume.
type CompileCommand struct {
	Directory string `json:"directory"`
	File      string `json:"file"`
	Output    string `json:"output"`
	Command   string `json:"command"`
}

// BuildCompileCommands renders one CompileCommand per registered
// CompilationTarget: compiler + "-c" + input + "-o" + output + profile
// cflags + the target's own flags.
func BuildCompileCommands(registry *plan.Registry, opts NinjaOptions, buildDir string) []CompileCommand {
	targets := registry.Compilations()
	out := make([]CompileCommand, 0, len(targets))
	for _, t := range targets {
		var parts []string
		parts = append(parts, opts.Compiler.String(), "-c", t.Input, "-o", t.Output)
		if cflags := opts.ProfileFlags.cflagsVar(); cflags != "" {
			parts = append(parts, cflags)
		}
		parts = append(parts, t.Flags...)

		out = append(out, CompileCommand{
			Directory: buildDir,
			File:      t.Input,
			Output:    t.Output,
			Command:   strings.Join(parts, " "),
		})
	}
	return out
}

// WriteCompileCommands marshals cmds and writes them to
// <buildDir>/compile_commands.json.
func WriteCompileCommands(buildDir string, cmds []CompileCommand) error {
	data, err := json.MarshalIndent(cmds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(buildDir, "compile_commands.json"), data, 0o644)
}

// WriteNinjaFile renders and writes the Ninja build file to
// <buildDir>/build.ninja.
func WriteNinjaFile(registry *plan.Registry, opts NinjaOptions, buildDir string) error {
	content := WriteNinja(registry, opts)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return fmt.Errorf("creating build directory %s: %w", buildDir, err)
	}
	return os.WriteFile(path.Join(buildDir, "build.ninja"), []byte(content), 0o644)
}
