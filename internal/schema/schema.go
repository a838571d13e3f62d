// Package schema validates a parsed muuk.toml tree against muuk's manifest
// shape: required keys, the dependency-name grammar, and compiler-specific
// flag well-formedness. It keeps the {ValidationError, ValidationResult,
// Validator} shape of a generic JSON-schema validator (the idiom this
// package was adapted from) but walks muuk's own fixed manifest structure
// rather than an arbitrary declared schema, since muuk.toml's shape is
// fixed by spec.md §3, not user-supplied.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/muuk/internal/compiler"
)

// depNamePattern matches spec.md §3.5's dependency-name grammar: letters
// or digits, then an interior run of letters/digits/`_.+/-`, ending in a
// letter, digit or `+` (so names may not end with `.`, `/` or `-`). The
// regex alone under-constrains the grammar; validDependencyName applies
// the four extra rules spec.md §4.4 lists alongside it.
var depNamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9_.+/-]*[A-Za-z0-9+])?$`)

// validDependencyName reports whether name satisfies spec.md §4.4's full
// dependency-name grammar: the base regex plus (i) at most one `/`, (ii)
// `+` occurs zero or exactly two times, the pair adjacent, (iii) every
// `.` is wrapped by digits on both sides, and (iv) no two consecutive
// non-alphanumeric characters other than the `++` pair. Named examples:
// accepts "gtkmm-4.0", "ncurses++", "pkg/name", "libboost_1.76"; rejects
// "-start", "end++-", "a.b.c", "pkg/name/extra", "pkg+name".
func validDependencyName(name string) (bool, string) {
	if !depNamePattern.MatchString(name) {
		return false, "does not match the allowed dependency-name grammar"
	}
	if strings.Count(name, "/") > 1 {
		return false, "must contain at most one '/'"
	}
	if plus := strings.Count(name, "+"); plus != 0 && plus != 2 {
		return false, "'+' must occur zero or exactly two times"
	} else if plus == 2 && !strings.Contains(name, "++") {
		return false, "the two '+' characters must be adjacent"
	}
	for i := 0; i < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		if i == 0 || i == len(name)-1 || !isDigit(name[i-1]) || !isDigit(name[i+1]) {
			return false, "'.' must be wrapped by digits on both sides"
		}
	}
	for i := 0; i+1 < len(name); i++ {
		if isAlnum(name[i]) || isAlnum(name[i+1]) {
			continue
		}
		if name[i:i+2] == "++" {
			continue
		}
		return false, "must not contain two consecutive non-alphanumeric characters (other than '++')"
	}
	return true, ""
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || isDigit(b)
}

// ValidationError is one violated constraint, carrying a dotted path into
// the manifest tree so the CLI can point the user at the offending key.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationResult aggregates every error found during one Validate call;
// Valid is true only when Errors is empty.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

func (r *ValidationResult) add(path, format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validator walks a raw parsed-TOML manifest tree (map[string]any, as
// produced by github.com/pelletier/go-toml/v2's Unmarshal into `any`)
// and reports every constraint violation it can find without aborting
// on the first one, matching spec.md §4.4's "schema validation collects
// all violations in one pass rather than failing fast."
type Validator struct {
	knownTopLevel    map[string]bool
	knownLibraryKeys map[string]bool
}

// NewValidator returns a Validator configured for the current muuk.toml
// surface (spec.md §6.1's top-level section names).
func NewValidator() *Validator {
	return &Validator{
		knownTopLevel: map[string]bool{
			"package": true, "dependencies": true, "profile": true,
			"features": true, "library": true, "build": true,
			"compiler": true, "platform": true, "default_features": true,
		},
		knownLibraryKeys: map[string]bool{
			"sources": true, "modules": true, "include": true, "libs": true,
			"defines": true, "undefines": true, "cflags": true, "cxxflags": true,
			"aflags": true, "lflags": true, "dependencies": true,
			"compiler": true, "platform": true, "link_type": true,
			"profiles": true, "external": true,
		},
	}
}

// Validate checks the raw manifest tree root, returning a ValidationResult
// that is never nil.
func (v *Validator) Validate(root map[string]any) *ValidationResult {
	result := &ValidationResult{Valid: true}

	for key := range root {
		if !v.knownTopLevel[key] {
			log.Warn("unrecognized top-level manifest key", "key", key)
		}
	}

	if pkg, ok := root["package"].(map[string]any); ok {
		v.validatePackageTable(pkg, result)
	} else if _, hasPkg := root["package"]; !hasPkg {
		result.add("package", "missing required [package] table")
	}

	if deps, ok := root["dependencies"].(map[string]any); ok {
		v.validateDependencies("dependencies", deps, result)
	}

	if lib, ok := root["library"].(map[string]any); ok {
		v.validateLibrary("library", lib, result)
	}

	if builds, ok := root["build"].(map[string]any); ok {
		for name, b := range builds {
			if bt, ok := b.(map[string]any); ok {
				v.validateLibrary(fmt.Sprintf("build.%s", name), bt, result)
			}
		}
	}

	return result
}

func (v *Validator) validatePackageTable(pkg map[string]any, result *ValidationResult) {
	for _, required := range []string{"name", "version"} {
		if _, ok := pkg[required]; !ok {
			result.add("package."+required, "required key missing")
		}
	}
	if name, ok := pkg["name"].(string); ok {
		if valid, reason := validDependencyName(name); !valid {
			result.add("package.name", "package name %q is invalid: %s", name, reason)
		}
	}
}

func (v *Validator) validateDependencies(path string, deps map[string]any, result *ValidationResult) {
	for name, raw := range deps {
		depPath := fmt.Sprintf("%s.%s", path, name)
		if valid, reason := validDependencyName(name); !valid {
			result.add(depPath, "dependency name %q is invalid: %s", name, reason)
		}
		switch v := raw.(type) {
		case string:
			if v == "" {
				result.add(depPath, "version string must not be empty")
			}
		case map[string]any:
			_, hasGit := v["git"]
			_, hasPath := v["path"]
			if !hasGit && !hasPath {
				result.add(depPath, "dependency must specify either git or path")
			}
		default:
			result.add(depPath, "dependency entry must be a version string or a table")
		}
	}
}

func (v *Validator) validateLibrary(path string, lib map[string]any, result *ValidationResult) {
	for key := range lib {
		if !v.knownLibraryKeys[key] {
			log.Warn("unrecognized key in manifest table", "table", path, "key", key)
		}
	}
	if deps, ok := lib["dependencies"].(map[string]any); ok {
		v.validateDependencies(path+".dependencies", deps, result)
	}
	for _, flagsKey := range []string{"cflags", "cxxflags", "aflags", "lflags"} {
		if arr, ok := lib[flagsKey].([]any); ok {
			v.validateFlagList(fmt.Sprintf("%s.%s", path, flagsKey), arr, result)
		}
	}
	if compTable, ok := lib["compiler"].(map[string]any); ok {
		for _, name := range []string{"gcc", "clang", "msvc"} {
			if sub, ok := compTable[name].(map[string]any); ok {
				v.validateLibrary(fmt.Sprintf("%s.compiler.%s", path, name), sub, result)
			}
		}
	}
}

// validateFlagList rejects a flag that mixes MSVC slash-style and GCC
// dash-style within the same unqualified list (spec.md §4.4: flags meant
// for one compiler only belong under compiler.<name>.*flags, not the
// shared list).
func (v *Validator) validateFlagList(path string, arr []any, result *ValidationResult) {
	sawSlash, sawDash := false, false
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			result.add(path, "flag entries must be strings")
			continue
		}
		if len(s) == 0 {
			continue
		}
		switch s[0] {
		case '/':
			sawSlash = true
		case '-':
			sawDash = true
		}
	}
	if sawSlash && sawDash {
		result.add(path, "mixes MSVC-style (/) and GCC/Clang-style (-) flags; move compiler-specific flags under [compiler.<name>]")
	}
}

// ValidateFlagForCompiler reports whether flag is syntactically plausible
// for the target compiler's spelling convention (spec.md §4.4).
func ValidateFlagForCompiler(flag string, target compiler.Compiler) error {
	if len(flag) == 0 {
		return fmt.Errorf("empty flag")
	}
	if target == compiler.MSVC && flag[0] == '-' {
		return fmt.Errorf("flag %q uses GCC/Clang spelling under an MSVC-only section", flag)
	}
	if target != compiler.MSVC && flag[0] == '/' {
		return fmt.Errorf("flag %q uses MSVC spelling under a %s-only section", flag, target)
	}
	return nil
}
