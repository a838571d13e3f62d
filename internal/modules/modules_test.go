package modules

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/plan"
)

func TestGenerateCompilationDatabaseNormalizesFlagsAndStripsDollar(t *testing.T) {
	targets := []plan.CompilationTarget{
		{
			Input:    "build/$ns/src/math.cppm",
			Output:   "build/obj/math.o",
			Flags:    []string{"-Iinclude", "-DFOO"},
			Compiler: compiler.GCC,
		},
	}
	entries := GenerateCompilationDatabase(targets, "/work/build")

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.File != "build/ns/src/math.cppm" {
		t.Errorf("expected '$' stripped from input, got %q", e.File)
	}
	if e.Directory != "/work/build" {
		t.Errorf("expected directory set to buildDir, got %q", e.Directory)
	}
}

// fakeRunner returns a canned P1689 document per shard index, recording
// how many times it was invoked (so concurrency is exercised without
// a real clang-scan-deps binary).
type fakeRunner struct {
	calls   int
	perPath map[string]Dependencies
}

func (f *fakeRunner) Run(_ context.Context, path string) ([]byte, error) {
	f.calls++
	deps, ok := f.perPath[path]
	if !ok {
		deps = Dependencies{}
	}
	return json.Marshal(deps)
}

func TestScannerShardsAndMergesResults(t *testing.T) {
	entries := make([]CompDBEntry, 10)
	for i := range entries {
		entries[i] = CompDBEntry{File: "f.cpp", Output: "o.o"}
	}

	runner := &fakeRunner{perPath: map[string]Dependencies{}}
	scanner := &Scanner{Runner: runner, ShardSize: 3}

	dir := t.TempDir()
	deps, err := scanner.Scan(context.Background(), entries, dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if runner.calls != 4 { // 10 entries / shard size 3 -> 4 shards
		t.Errorf("expected 4 shard invocations, got %d", runner.calls)
	}
	if len(deps.Rules) != 0 {
		t.Errorf("expected no rules from empty fake shards, got %+v", deps.Rules)
	}
}

func TestApplyProvidesAndRequiresWireModuleDependencies(t *testing.T) {
	registry := plan.NewRegistry()
	registry.AddCompilation(plan.CompilationTarget{Input: "src/a.cppm", Output: "build/a.o"})
	registry.AddCompilation(plan.CompilationTarget{Input: "src/b.cppm", Output: "build/b.o"})

	deps := Dependencies{
		Rules: []Rule{
			{
				PrimaryOutput: "build/a.o",
				Provides:      []Provides{{LogicalName: "mod.a"}},
			},
			{
				PrimaryOutput: "build/b.o",
				Requires:      []Requires{{LogicalName: "mod.a", SourcePath: "src/a.cppm"}},
			},
		},
	}

	ApplyProvides(registry, deps)
	ApplyRequires(registry, deps)

	targets := registry.Compilations()
	var a, b plan.CompilationTarget
	for _, t := range targets {
		switch t.Output {
		case "build/a.o":
			a = t
		case "build/b.o":
			b = t
		}
	}

	if !a.IsModule || a.LogicalName != "mod.a" {
		t.Errorf("expected a.o marked as module 'mod.a', got %+v", a)
	}
	if len(b.DependsOnOut) != 1 || b.DependsOnOut[0] != "build/a.o" {
		t.Errorf("expected b.o to depend on a.o, got %+v", b.DependsOnOut)
	}
}

func TestDetectCyclesFindsSelfReferentialModuleGraph(t *testing.T) {
	targets := []plan.CompilationTarget{
		{Output: "a.o", DependsOnOut: []string{"b.o"}},
		{Output: "b.o", DependsOnOut: []string{"a.o"}},
	}
	if err := DetectCycles(targets); err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestDetectCyclesAllowsAcyclicGraph(t *testing.T) {
	targets := []plan.CompilationTarget{
		{Output: "a.o"},
		{Output: "b.o", DependsOnOut: []string{"a.o"}},
		{Output: "c.o", DependsOnOut: []string{"a.o", "b.o"}},
	}
	if err := DetectCycles(targets); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
