package modules

import (
	"github.com/charmbracelet/log"

	"github.com/oarkflow/muuk/internal/muukerr"
	"github.com/oarkflow/muuk/internal/plan"
)

// ApplyProvides stamps each rule's provided logical module name onto the
// CompilationTarget that produced it, grounded on
// moduleresolver.cpp's resolve_provided_modules.
func ApplyProvides(registry *plan.Registry, deps Dependencies) {
	for _, rule := range deps.Rules {
		if rule.PrimaryOutput == "" || len(rule.Provides) == 0 {
			continue
		}
		for _, p := range rule.Provides {
			logical := p.LogicalName
			registry.UpdateCompilation(rule.PrimaryOutput, func(t *plan.CompilationTarget) {
				t.IsModule = true
				t.LogicalName = logical
			})
			log.Info("associated module with target", "module", logical, "output", rule.PrimaryOutput)
		}
	}
}

// ApplyRequires links each rule's required modules to the compilation
// target that produces the providing source file, populating
// Requires/DependsOnOut, grounded on
// moduleresolver.cpp's resolve_required_modules.
func ApplyRequires(registry *plan.Registry, deps Dependencies) {
	for _, rule := range deps.Rules {
		if rule.PrimaryOutput == "" {
			continue
		}
		for _, req := range rule.Requires {
			if req.SourcePath == "" {
				continue
			}
			required, ok := registry.FindCompilationByInput(req.SourcePath)
			if !ok {
				log.Warn("could not find compilation target for required module", "logical-name", req.LogicalName, "source-path", req.SourcePath)
				continue
			}
			output := rule.PrimaryOutput
			logical := req.LogicalName
			dependsOn := required.Output
			registry.UpdateCompilation(output, func(t *plan.CompilationTarget) {
				t.Requires = append(t.Requires, logical)
				t.DependsOnOut = append(t.DependsOnOut, dependsOn)
			})
			log.Info("added module dependency", "target", output, "requires", req.SourcePath)
		}
	}
}

// DetectCycles walks every module target's DependsOnOut edges and returns
// a muukerr.ModuleCycle error naming the cycle if one exists. spec.md has
// no C++-module equivalent of this check in its distilled form; it is
// supplemented here because a cyclic module graph must be rejected before
// Ninja ever sees it (Ninja itself would only report a generic dependency
// cycle with no module-aware diagnostic).
func DetectCycles(targets []plan.CompilationTarget) error {
	byOutput := make(map[string]plan.CompilationTarget, len(targets))
	for _, t := range targets {
		byOutput[t.Output] = t
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(targets))
	var path []string

	var visit func(output string) error
	visit = func(output string) error {
		switch state[output] {
		case done:
			return nil
		case visiting:
			return muukerr.New(muukerr.ModuleCycle, "module dependency cycle detected: %v -> %s", path, output)
		}
		state[output] = visiting
		path = append(path, output)

		t, ok := byOutput[output]
		if ok {
			for _, dep := range t.DependsOnOut {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[output] = done
		return nil
	}

	for _, t := range targets {
		if err := visit(t.Output); err != nil {
			return err
		}
	}
	return nil
}
