package modules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/muuk/internal/plan"
)

// ResolveModules orchestrates the full module-dependency scan: write a
// compilation database, run clang-scan-deps across it (sharded,
// concurrently), and stamp the results back onto registry's compilation
// targets, grounded on moduleresolver.cpp's resolve_modules.
func ResolveModules(ctx context.Context, registry *plan.Registry, scanner *Scanner, buildDir string) error {
	targets := registry.Compilations()
	if len(targets) == 0 {
		return nil
	}

	entries := GenerateCompilationDatabase(targets, buildDir)

	dbPath := filepath.Join(buildDir, "dependency-db.json")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return fmt.Errorf("creating build directory %s: %w", buildDir, err)
	}
	if err := WriteCompilationDatabase(dbPath, entries); err != nil {
		return fmt.Errorf("writing compilation database: %w", err)
	}
	log.Info("compilation database written", "path", dbPath)

	deps, err := scanner.Scan(ctx, entries, buildDir)
	if err != nil {
		return fmt.Errorf("scanning module dependencies: %w", err)
	}
	if len(deps.Rules) == 0 {
		return nil
	}

	ApplyProvides(registry, deps)
	ApplyRequires(registry, deps)

	return DetectCycles(registry.Compilations())
}
