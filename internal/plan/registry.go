// Package plan compiles a resolved, locked dependency graph into the
// concrete set of compile/archive/link/external targets that
// internal/emit renders as a Ninja build file (spec.md §3.9, §4.6).
// Adapted from the teacher's internal/artifact Manager: the same
// mutex-protected slice-plus-Add shape, but Add enforces spec.md §3.9's
// invariant that a CompilationTarget's output path is unique — a second
// insert with the same output is silently ignored rather than appended,
// matching "last writer doesn't win; first registration does."
package plan

import (
	"sync"

	"github.com/oarkflow/muuk/internal/compiler"
)

// TargetKind classifies an entry in the Registry.
type TargetKind string

const (
	KindCompilation TargetKind = "compilation"
	KindModule      TargetKind = "module"
	KindArchive     TargetKind = "archive"
	KindLink        TargetKind = "link"
	KindExternal    TargetKind = "external"
)

// CompilationTarget compiles one source file into one object file
// (spec.md §3.9).
type CompilationTarget struct {
	Input    string
	Output   string
	Flags    []string
	Compiler compiler.Compiler

	// IsModule marks a C++20 module interface/partition unit; set by
	// internal/modules once P1689 dependency scanning classifies it.
	IsModule     bool
	LogicalName  string   // the module's provided logical name, if IsModule
	Requires     []string // logical names this unit's module interface depends on
	DependsOnOut []string // object-file paths this compilation depends on (module deps resolved to outputs)
}

// ArchiveTarget builds a static library from a set of object files.
type ArchiveTarget struct {
	Output  string
	Inputs  []string // object file paths
	Archive string   // archiver command name, e.g. "ar"
}

// LinkTarget links objects and libraries into an executable or shared
// library.
type LinkTarget struct {
	Output   string
	Inputs   []string // object + archive paths
	Libs     []string
	LFlags   []string
	LinkType compiler.BuildLinkType
	Linker   string
}

// ExternalTarget shells out to a foreign build system (CMake, Meson, ...)
// and exposes its declared outputs to the rest of the graph (spec.md
// §3.8, §4.6 "configure_external"/"build_external" Ninja rules).
type ExternalTarget struct {
	Name    string
	Type    string
	Args    []string
	Outputs []string
	WorkDir string
}

// Registry is the compiled target graph for one build: every
// CompilationTarget, ArchiveTarget, LinkTarget and ExternalTarget that
// muuk's Ninja emitter will render.
type Registry struct {
	mu sync.RWMutex

	compilations []CompilationTarget
	byOutput     map[string]bool

	archives  []ArchiveTarget
	links     []LinkTarget
	externals []ExternalTarget
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byOutput: make(map[string]bool)}
}

// AddCompilation registers a CompilationTarget. A second target with the
// same Output is silently ignored (spec.md §3.9 uniqueness invariant):
// two build configs that happen to compile the same source with
// identical flags into the same output collapse into one Ninja edge
// rather than producing a duplicate-output error at emit time.
func (r *Registry) AddCompilation(t CompilationTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byOutput[t.Output] {
		return
	}
	r.byOutput[t.Output] = true
	r.compilations = append(r.compilations, t)
}

// Compilations returns every registered CompilationTarget, in
// registration order (deterministic since the plan compiler visits
// builds/libraries in sorted order upstream).
func (r *Registry) Compilations() []CompilationTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CompilationTarget, len(r.compilations))
	copy(out, r.compilations)
	return out
}

// AddArchive registers an ArchiveTarget.
func (r *Registry) AddArchive(t ArchiveTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archives = append(r.archives, t)
}

// Archives returns every registered ArchiveTarget.
func (r *Registry) Archives() []ArchiveTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ArchiveTarget, len(r.archives))
	copy(out, r.archives)
	return out
}

// AddLink registers a LinkTarget.
func (r *Registry) AddLink(t LinkTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, t)
}

// Links returns every registered LinkTarget.
func (r *Registry) Links() []LinkTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LinkTarget, len(r.links))
	copy(out, r.links)
	return out
}

// AddExternal registers an ExternalTarget.
func (r *Registry) AddExternal(t ExternalTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.externals = append(r.externals, t)
}

// Externals returns every registered ExternalTarget.
func (r *Registry) Externals() []ExternalTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ExternalTarget, len(r.externals))
	copy(out, r.externals)
	return out
}

// UpdateCompilation applies fn to the registered CompilationTarget whose
// Output matches output, in place. Used by internal/modules to stamp
// module dependency-scan results (LogicalName/Requires/DependsOnOut) onto
// targets that were registered before scanning ran. A miss is a no-op.
func (r *Registry) UpdateCompilation(output string, fn func(*CompilationTarget)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.compilations {
		if r.compilations[i].Output == output {
			fn(&r.compilations[i])
			return
		}
	}
}

// FindCompilationByInput returns the registered CompilationTarget whose
// Input matches, and true, or the zero value and false. Mirrors the
// original's find_compilation_target("input", path) lookup.
func (r *Registry) FindCompilationByInput(input string) (CompilationTarget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.compilations {
		if t.Input == input {
			return t, true
		}
	}
	return CompilationTarget{}, false
}

// Len returns the total number of registered targets across all kinds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.compilations) + len(r.archives) + len(r.links) + len(r.externals)
}
