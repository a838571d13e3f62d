package manifest

import "testing"

func TestMergeBaseFieldsUnionsSetsAndAppendsSlices(t *testing.T) {
	a := NewBaseFields()
	a.Include.Add("a")
	a.Sources = []SourceFile{{Path: "a.cpp"}}

	b := NewBaseFields()
	b.Include.Add("b")
	b.Sources = []SourceFile{{Path: "b.cpp"}}

	if err := mergeBaseFields(&a, b, AllFields); err != nil {
		t.Fatalf("mergeBaseFields: %v", err)
	}

	if got := a.Include.Slice(); len(got) != 2 {
		t.Errorf("expected Include to union to 2 entries, got %v", got)
	}
	if len(a.Sources) != 2 || a.Sources[0].Path != "a.cpp" || a.Sources[1].Path != "b.cpp" {
		t.Errorf("expected Sources to append in order, got %v", a.Sources)
	}
}

func TestMergeBaseFieldsSkipsMaskedFields(t *testing.T) {
	a := NewBaseFields()
	b := NewBaseFields()
	b.Libs.Add("pthread")

	toggles := AllFields
	toggles.Libs = false

	if err := mergeBaseFields(&a, b, toggles); err != nil {
		t.Fatalf("mergeBaseFields: %v", err)
	}
	if a.Libs.Has("pthread") {
		t.Error("expected Libs to be masked out of the merge")
	}
}

func TestMergeBaseFieldsKeepsInitializedSetWhenSourceEmpty(t *testing.T) {
	a := NewBaseFields()
	b := NewBaseFields()

	if err := mergeBaseFields(&a, b, AllFields); err != nil {
		t.Fatalf("mergeBaseFields: %v", err)
	}
	if a.Defines == nil {
		t.Error("merge should not nil out an already-initialized set")
	}
}
