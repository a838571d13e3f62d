package manifest

import (
	"reflect"

	"dario.cat/mergo"
)

// stringSetType is looked up once so mergeTransformers.Transformer doesn't
// pay reflect.TypeOf on every field mergo visits.
var stringSetType = reflect.TypeOf(StringSet{})

// mergeTransformers gives mergo a set-union rule for StringSet fields,
// since mergo's own default map-merge (copy in missing keys, leave
// existing ones) happens to match set union already but StringSet's zero
// value is a nil map, which mergo's default treats as "unset, overwrite
// wholesale" rather than "empty set, union in". The transformer allocates
// the destination set on first merge instead of relying on the zero value.
type mergeTransformers struct{}

func (mergeTransformers) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != stringSetType {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if !dst.CanSet() {
			return nil
		}
		add, _ := src.Interface().(StringSet)
		if len(add) == 0 {
			return nil
		}
		have, _ := dst.Interface().(StringSet)
		if have == nil {
			have = NewStringSet()
		}
		for k := range add {
			have[k] = struct{}{}
		}
		dst.Set(reflect.ValueOf(have))
		return nil
	}
}

// mergeBaseFields applies spec.md §4.2's merge algebra to the fields t
// marks as active: sequence fields (Sources, Modules) append left-to-
// right via mergo.WithAppendSlice, set fields union via mergeTransformers,
// and Dependencies is left out of the mergo pass entirely — DependencyMap
// keys on name *and* version: a later entry for an already-present
// (name, version) unions its enabled features into the existing one, and
// a new version sits beside the old ones (DependencyMap.Merge's Put),
// which has no ready-made mergo option, so it stays hand-rolled.
//
// Fields t does not mark active for this node type are zeroed on a copy
// of other first, so mergo never touches them: a BaseFields.Merge caller
// for a node type that doesn't carry, say, Modules must not pick up a
// Modules entry from other even if other happens to carry one.
func mergeBaseFields(b *BaseFields, other BaseFields, t FieldToggles) error {
	masked := other
	masked.Dependencies = nil
	if !t.Sources {
		masked.Sources = nil
	}
	if !t.Modules {
		masked.Modules = nil
	}
	if !t.Include {
		masked.Include = nil
	}
	if !t.Defines {
		masked.Defines = nil
	}
	if !t.Undefines {
		masked.Undefines = nil
	}
	if !t.CFlags {
		masked.CFlags = nil
	}
	if !t.CXXFlags {
		masked.CXXFlags = nil
	}
	if !t.AFlags {
		masked.AFlags = nil
	}
	if !t.LFlags {
		masked.LFlags = nil
	}
	if !t.Libs {
		masked.Libs = nil
	}

	return mergo.Merge(b, masked, mergo.WithAppendSlice, mergo.WithTransformers(mergeTransformers{}))
}
