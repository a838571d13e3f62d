package resolve

import (
	"os"
	"strings"
	"testing"

	"github.com/oarkflow/muuk/internal/manifest"
	"github.com/oarkflow/muuk/internal/muukerr"
)

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

// memLoader serves manifest text from memory, keyed by "name@version",
// so tests can exercise the resolver without touching disk.
type memLoader struct {
	docs map[string]string
}

func (m *memLoader) Load(dir, name, version string) (*manifest.Package, error) {
	doc, ok := m.docs[name+"@"+version]
	if !ok {
		return nil, muukerr.New(muukerr.ManifestNotFound, "no manifest registered for %s@%s", name, version).At(dir)
	}
	return manifest.Load([]byte(doc), name, version, dir)
}

func mustLoadBase(t *testing.T, doc string) *manifest.Package {
	t.Helper()
	pkg, err := manifest.Load([]byte(doc), "app", "1.0.0", ".")
	if err != nil {
		t.Fatalf("loading base manifest: %v", err)
	}
	return pkg
}

const mathlibToml = `
[package]
name = "mathlib"
version = "1.0.0"

[library]
sources = ["src/add.cpp"]
defines = ["MATHLIB_BUILD"]
`

const baseToml = `
[package]
name = "app"
version = "1.0.0"

[dependencies]
mathlib = "1.0.0"

[build.app]
sources = ["src/main.cpp"]

[build.app.dependencies]
mathlib = "1.0.0"
`

func newTestResolver(docs map[string]string) *Resolver {
	return NewResolver(&memLoader{docs: docs}, "deps")
}

func TestResolveMergesDependencySettingsIntoBuild(t *testing.T) {
	base := mustLoadBase(t, baseToml)
	r := newTestResolver(map[string]string{"mathlib@1.0.0": mathlibToml})

	graph, err := r.Resolve(base)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	mathlib := graph.Find("mathlib", "1.0.0")
	if mathlib == nil {
		t.Fatal("expected mathlib to be resolved")
	}

	build := graph.Builds["app"]
	if build == nil {
		t.Fatal("expected build 'app' present")
	}
	if !build.Defines.Has("MATHLIB_BUILD") {
		t.Errorf("expected build to inherit mathlib's defines, got %v", build.Defines.Slice())
	}
}

func TestResolveOrderListsDependencyBeforeDependent(t *testing.T) {
	base := mustLoadBase(t, baseToml)
	r := newTestResolver(map[string]string{"mathlib@1.0.0": mathlibToml})

	graph, err := r.Resolve(base)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	idxMathlib, idxApp := -1, -1
	for i, ref := range graph.Order {
		switch ref.Name {
		case "mathlib":
			idxMathlib = i
		case "app":
			idxApp = i
		}
	}
	if idxMathlib == -1 || idxApp == -1 {
		t.Fatalf("expected both app and mathlib in resolved order, got %+v", graph.Order)
	}
	if idxMathlib > idxApp {
		t.Errorf("expected mathlib resolved before app (post-order), got order %+v", graph.Order)
	}
}

const featureDepToml = `
[package]
name = "app"
version = "1.0.0"

[dependencies]
widgets = { version = "2.0.0", features = ["gui"] }

[build.app]
sources = ["src/main.cpp"]

[build.app.dependencies]
widgets = "2.0.0"
`

const widgetsToml = `
[package]
name = "widgets"
version = "2.0.0"

[library]
sources = ["src/widget.cpp"]

[features]
gui = { define = ["WIDGETS_GUI"] }
`

func TestResolveActivatesRequestedFeatures(t *testing.T) {
	base := mustLoadBase(t, featureDepToml)
	r := newTestResolver(map[string]string{"widgets@2.0.0": widgetsToml})

	graph, err := r.Resolve(base)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	widgets := graph.Find("widgets", "2.0.0")
	if widgets == nil {
		t.Fatal("expected widgets resolved")
	}
	if !widgets.Library.Defines.Has("WIDGETS_GUI") {
		t.Errorf("expected 'gui' feature's define applied to widgets, got %v", widgets.Library.Defines.Slice())
	}
}

func TestResolveMissingDependencyReturnsManifestNotFoundError(t *testing.T) {
	base := mustLoadBase(t, baseToml)
	r := newTestResolver(nil) // mathlib manifest never registered

	_, err := r.Resolve(base)
	if err == nil {
		t.Fatal("expected an error for an unresolvable dependency")
	}
}

func TestResolveSkipsSelfDependency(t *testing.T) {
	const selfDepToml = `
[package]
name = "app"
version = "1.0.0"

[dependencies]
app = "1.0.0"

[build.app]
sources = ["src/main.cpp"]
`
	base := mustLoadBase(t, selfDepToml)
	r := newTestResolver(nil)

	if _, err := r.Resolve(base); err != nil {
		t.Fatalf("expected self-dependency to be skipped without error, got %v", err)
	}
}

func TestWriteLockfileOmitsBasePackage(t *testing.T) {
	base := mustLoadBase(t, baseToml)
	r := newTestResolver(map[string]string{"mathlib@1.0.0": mathlibToml})
	graph, err := r.Resolve(base)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	dir := t.TempDir() + "/muuk.lock"
	if err := graph.WriteLockfile(dir); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}

	data, err := readFile(dir)
	if err != nil {
		t.Fatalf("reading lockfile: %v", err)
	}
	if strings.Contains(data, `name = "app"`) {
		t.Errorf("expected base package omitted from muuk.lock, got:\n%s", data)
	}
	if !strings.Contains(data, `name = "mathlib"`) {
		t.Errorf("expected mathlib entry present, got:\n%s", data)
	}
}
