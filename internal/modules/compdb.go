// Package modules resolves C++20 module interdependencies across a
// compiled target graph by shelling out to clang-scan-deps and parsing
// its P1689 JSON format, grounded on
// original_source/src/builder/moduleresolver.cpp. Nothing about
// clang-scan-deps's internals is modeled here, only the P1689 wire
// format it emits (spec.md §1 Out-of-scope, §4.7).
package modules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/flags"
	"github.com/oarkflow/muuk/internal/plan"
)

// CompDBEntry is one clang "compilation database" record
// (https://clang.llvm.org/docs/JSONCompilationDatabase.html), the input
// format clang-scan-deps expects.
type CompDBEntry struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
	Output    string `json:"output"`
}

// GenerateCompilationDatabase builds one CompDBEntry per CompilationTarget,
// grounded on moduleresolver.cpp's generate_compilation_database: flags are
// normalized to Clang spelling (clang-scan-deps only understands Clang's
// flag grammar regardless of the target's own compiler), and relative
// include paths are made absolute against buildDir so the scan runs
// correctly from any working directory.
func GenerateCompilationDatabase(targets []plan.CompilationTarget, buildDir string) []CompDBEntry {
	entries := make([]CompDBEntry, 0, len(targets))
	for _, t := range targets {
		entries = append(entries, compDBEntry(t, buildDir))
	}
	return entries
}

func compDBEntry(t plan.CompilationTarget, buildDir string) CompDBEntry {
	var b strings.Builder
	b.WriteString("clang++ -x c++-module --std=c++23")

	for _, flag := range t.Flags {
		normalized := flags.Normalize(flag, compiler.Clang)
		if strings.HasPrefix(normalized, "-I") {
			path := strings.TrimPrefix(normalized, "-I")
			if !filepath.IsAbs(path) {
				normalized = "-I" + filepath.Join(buildDir, path)
			}
		}
		b.WriteString(" ")
		b.WriteString(normalized)
	}

	// clang-scan-deps chokes on Ninja's "$" escape sequences in a raw
	// compile-command string; strip them the same way the original does.
	input := strings.ReplaceAll(t.Input, "$", "")

	b.WriteString(" ")
	b.WriteString(input)
	b.WriteString(" -o ")
	b.WriteString(t.Output)

	return CompDBEntry{
		Directory: buildDir,
		Command:   b.String(),
		File:      input,
		Output:    t.Output,
	}
}

// WriteCompilationDatabase renders entries as JSON and writes it to path,
// mirroring generate_compilation_database's dependency-db.json output.
func WriteCompilationDatabase(path string, entries []CompDBEntry) error {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
