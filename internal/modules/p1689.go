package modules

// Dependencies is the root of a clang-scan-deps "-format=p1689" document
// (P1689R5, the standard module-dependency wire format).
type Dependencies struct {
	Version int    `json:"version"`
	Rules   []Rule `json:"rules"`
}

// Rule describes one compiled translation unit: what module it provides
// and what module/header dependencies it requires.
type Rule struct {
	PrimaryOutput string     `json:"primary-output"`
	Provides      []Provides `json:"provides,omitempty"`
	Requires      []Requires `json:"requires,omitempty"`
}

// Provides names a module interface this rule's primary-output defines.
type Provides struct {
	LogicalName string `json:"logical-name"`
}

// Requires names a module this rule's primary-output imports, resolved
// (when known) to the source file that provides it.
type Requires struct {
	LogicalName string `json:"logical-name"`
	SourcePath  string `json:"source-path,omitempty"`
}

// Merge appends other's rules onto d, used to combine the results of
// multiple sharded clang-scan-deps invocations into one document.
func (d *Dependencies) Merge(other Dependencies) {
	d.Rules = append(d.Rules, other.Rules...)
}
