package manifest

// BaseFields is the common settings record carried by library/profile/
// compiler-leaf/platform-leaf nodes (spec.md §3.3). Every node embedding
// BaseFields additionally carries a FieldToggles describing which fields
// that node type actually loads/serializes/merges — the Go expression of
// the C++ source's per-derived-type `enable_*` compile-time constants
// (spec.md §9 "Design notes: compile-time field toggles").
type BaseFields struct {
	Sources []SourceFile
	Modules []SourceFile

	Include   StringSet
	Libs      StringSet
	Defines   StringSet
	Undefines StringSet
	CFlags    StringSet
	CXXFlags  StringSet
	AFlags    StringSet
	LFlags    StringSet

	Dependencies DependencyMap
}

// NewBaseFields returns an empty, fully initialized BaseFields.
func NewBaseFields() BaseFields {
	return BaseFields{
		Include:      NewStringSet(),
		Libs:         NewStringSet(),
		Defines:      NewStringSet(),
		Undefines:    NewStringSet(),
		CFlags:       NewStringSet(),
		CXXFlags:     NewStringSet(),
		AFlags:       NewStringSet(),
		LFlags:       NewStringSet(),
		Dependencies: make(DependencyMap),
	}
}

// FieldToggles mirrors the C++ `enable_modules`, `enable_compilers`, ...
// per-derived-type template constants (spec.md §3.3, §9): a table-driven
// description of which BaseFields members (and which sub-trees) a given
// node type actually uses, rather than a compile-time specialization.
type FieldToggles struct {
	Modules, Sources                                bool
	Include, Defines, Undefines                     bool
	CFlags, CXXFlags, AFlags, LFlags                bool
	Libs, Dependencies                               bool
	Compilers, Platforms                             bool
}

// AllFields is the toggle set used by the plain BaseFields-only leaves
// (CompilerConfig, PlatformConfig): everything except nested
// compiler/platform sub-trees, which those leaves do not themselves carry.
var AllFields = FieldToggles{
	Modules: true, Sources: true,
	Include: true, Defines: true, Undefines: true,
	CFlags: true, CXXFlags: true, AFlags: true, LFlags: true,
	Libs: true, Dependencies: true,
}

// LibraryToggles matches spec.md §3.7: Library enables its compiler/
// platform sub-trees.
var LibraryToggles = func() FieldToggles {
	t := AllFields
	t.Compilers = true
	t.Platforms = true
	return t
}()

// ProfileToggles matches spec.md §3.7: Profile enables its compiler/
// platform sub-trees.
var ProfileToggles = LibraryToggles

// BuildToggles matches spec.md §3.7: Build disables compiler/platform
// sub-trees because compiler/platform selection is global to the run.
var BuildToggles = func() FieldToggles {
	t := AllFields
	t.Compilers = false
	t.Platforms = false
	return t
}()

// Merge applies the field-wise merge algebra of spec.md §4.2 to two
// BaseFields values, honoring which fields this node type actually
// carries. Set fields union; sequence fields (sources, modules) append
// left-to-right, preserving order and allowing duplicates at this level
// (duplicates are only a problem if they'd collide as plan-level output
// paths, which the build-plan compiler's object registry catches).
//
// The actual field-by-field work happens in mergeBaseFields (merge.go)
// via mergo.WithAppendSlice/WithTransformers; Dependencies is merged
// separately since its (name, version)-keyed semantics (a matching entry
// gets the enabled features unioned in, a new version is kept beside the
// old ones) don't fit either of those two mergo hooks.
func (b *BaseFields) Merge(other BaseFields, t FieldToggles) {
	if err := mergeBaseFields(b, other, t); err != nil {
		// mergo only errors here on a dst/src type mismatch, which two
		// BaseFields values sharing one Go type cannot produce.
		panic("manifest: BaseFields merge: " + err.Error())
	}
	if t.Dependencies {
		b.Dependencies.Merge(other.Dependencies)
	}
}

// Clone deep-copies a BaseFields value.
func (b BaseFields) Clone() BaseFields {
	out := BaseFields{
		Sources:      append([]SourceFile(nil), b.Sources...),
		Modules:      append([]SourceFile(nil), b.Modules...),
		Include:      b.Include.Clone(),
		Libs:         b.Libs.Clone(),
		Defines:      b.Defines.Clone(),
		Undefines:    b.Undefines.Clone(),
		CFlags:       b.CFlags.Clone(),
		CXXFlags:     b.CXXFlags.Clone(),
		AFlags:       b.AFlags.Clone(),
		LFlags:       b.LFlags.Clone(),
		Dependencies: b.Dependencies.Clone(),
	}
	return out
}

// CompilerConfig is a compiler-specific leaf of BaseFields (spec.md §3.4).
type CompilerConfig struct {
	BaseFields
}

// PlatformConfig is a platform-specific leaf of BaseFields (spec.md §3.4).
type PlatformConfig struct {
	BaseFields
}

// Compilers holds the three compiler-keyed leaves; merging is field-wise
// set-union on the matching key, other keys untouched (spec.md §3.4).
type Compilers struct {
	Clang CompilerConfig
	GCC   CompilerConfig
	MSVC  CompilerConfig
}

// NewCompilers returns an empty, initialized Compilers.
func NewCompilers() Compilers {
	return Compilers{
		Clang: CompilerConfig{NewBaseFields()},
		GCC:   CompilerConfig{NewBaseFields()},
		MSVC:  CompilerConfig{NewBaseFields()},
	}
}

func (c *Compilers) Merge(other Compilers) {
	c.Clang.Merge(other.Clang.BaseFields, AllFields)
	c.GCC.Merge(other.GCC.BaseFields, AllFields)
	c.MSVC.Merge(other.MSVC.BaseFields, AllFields)
}

// ByCompiler returns the leaf BaseFields for the named compiler key.
func (c *Compilers) ByCompiler(name string) *BaseFields {
	switch name {
	case "clang":
		return &c.Clang.BaseFields
	case "gcc":
		return &c.GCC.BaseFields
	case "msvc":
		return &c.MSVC.BaseFields
	default:
		return nil
	}
}

// Platforms holds the three platform-keyed leaves (spec.md §3.4).
type Platforms struct {
	Windows PlatformConfig
	Linux   PlatformConfig
	Apple   PlatformConfig
}

// NewPlatforms returns an empty, initialized Platforms.
func NewPlatforms() Platforms {
	return Platforms{
		Windows: PlatformConfig{NewBaseFields()},
		Linux:   PlatformConfig{NewBaseFields()},
		Apple:   PlatformConfig{NewBaseFields()},
	}
}

func (p *Platforms) Merge(other Platforms) {
	p.Windows.Merge(other.Windows.BaseFields, AllFields)
	p.Linux.Merge(other.Linux.BaseFields, AllFields)
	p.Apple.Merge(other.Apple.BaseFields, AllFields)
}

// ByPlatform returns the leaf BaseFields for the named platform key.
func (p *Platforms) ByPlatform(name string) *BaseFields {
	switch name {
	case "windows":
		return &p.Windows.BaseFields
	case "linux":
		return &p.Linux.BaseFields
	case "apple":
		return &p.Apple.BaseFields
	default:
		return nil
	}
}

// BaseConfig is BaseFields plus the optional compiler/platform sub-trees
// (spec.md §4.2's BaseConfig<Derived> equivalent), shared by Library,
// Build and Profile.
type BaseConfig struct {
	BaseFields
	Compilers Compilers
	Platforms Platforms
}

// NewBaseConfig returns an empty, initialized BaseConfig.
func NewBaseConfig() BaseConfig {
	return BaseConfig{
		BaseFields: NewBaseFields(),
		Compilers:  NewCompilers(),
		Platforms:  NewPlatforms(),
	}
}

// Merge applies BaseFields.Merge plus, when enabled by t, the
// compiler/platform sub-tree merges.
func (b *BaseConfig) Merge(other BaseConfig, t FieldToggles) {
	b.BaseFields.Merge(other.BaseFields, t)
	if t.Compilers {
		b.Compilers.Merge(other.Compilers)
	}
	if t.Platforms {
		b.Platforms.Merge(other.Platforms)
	}
}

// Clone deep-copies a BaseConfig value.
func (b BaseConfig) Clone() BaseConfig {
	return BaseConfig{
		BaseFields: b.BaseFields.Clone(),
		Compilers:  Compilers{Clang: CompilerConfig{b.Compilers.Clang.BaseFields.Clone()}, GCC: CompilerConfig{b.Compilers.GCC.BaseFields.Clone()}, MSVC: CompilerConfig{b.Compilers.MSVC.BaseFields.Clone()}},
		Platforms:  Platforms{Windows: PlatformConfig{b.Platforms.Windows.BaseFields.Clone()}, Linux: PlatformConfig{b.Platforms.Linux.BaseFields.Clone()}, Apple: PlatformConfig{b.Platforms.Apple.BaseFields.Clone()}},
	}
}
