// Package lockfmt renders and parses the build-plan cache document
// (muuk.lock.toml, spec.md §4.5.6) that internal/resolve writes and
// internal/plan reads back. It wraps go-toml/v2's struct-tag-driven
// Marshal/Unmarshal and then post-processes the marshaled bytes for the
// one formatting rule go-toml has no tag for: forcing specific top-level
// string arrays onto one line per element, the way the original writer
// set toml::array_format::multiline on sources/modules/outputs arrays.
// Grounded on the teacher's own hand-rolled-formatting-atop-a-generic-
// marshaler pattern (internal/config/config.go's yaml.Marshal callers
// post-trimming/re-indenting the result before writing it to disk).
package lockfmt

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// FlagsEntry is the common c/cxx/a/l-flag and define/include/lib set
// every cache record (library, build, profile) carries, flattened into
// its parent table by go-toml's anonymous-field embedding.
type FlagsEntry struct {
	Include   []string `toml:"include,omitempty"`
	Libs      []string `toml:"libs,omitempty"`
	Defines   []string `toml:"defines,omitempty"`
	Undefines []string `toml:"undefines,omitempty"`
	CFlags    []string `toml:"cflags,omitempty"`
	CXXFlags  []string `toml:"cxxflags,omitempty"`
	AFlags    []string `toml:"aflags,omitempty"`
	LFlags    []string `toml:"lflags,omitempty"`
}

// SourceEntry is one `sources`/`modules` array element.
type SourceEntry struct {
	Path   string   `toml:"path"`
	CFlags []string `toml:"cflags,omitempty"`
}

// ExternalEntry is an `[[external]]` record, or a library's nested
// `external` table — rendered inline when nested, per spec.md §4.5.6
// ("tables that are purely inline ... use one-line table format").
type ExternalEntry struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version,omitempty"`
	Type    string   `toml:"type"`
	Args    []string `toml:"args,omitempty"`
	Outputs []string `toml:"outputs,omitempty"`
	Path    string   `toml:"path,omitempty"`
}

// LibraryEntry is one `[[library]]` record: a fully-merged package's
// effective build settings.
type LibraryEntry struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Path    string `toml:"path"`

	FlagsEntry

	Sources []SourceEntry `toml:"sources,omitempty"`
	Modules []SourceEntry `toml:"modules,omitempty"`

	LinkType string `toml:"link_type,omitempty"`
	Profiles []string `toml:"profiles,omitempty"`

	External *ExternalEntry `toml:"external,omitempty"`
}

// BuildEntry is one `[[build]]` record.
type BuildEntry struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`

	FlagsEntry

	Sources  []SourceEntry `toml:"sources,omitempty"`
	LinkType string        `toml:"link_type,omitempty"`
	Profiles []string      `toml:"profiles,omitempty"`
}

// ProfileEntry is one `[profile.<name>]` record: the fully-resolved
// (inherits already applied) effective profile settings.
type ProfileEntry struct {
	CFlags      []string `toml:"cflags,omitempty"`
	CXXFlags    []string `toml:"cxxflags,omitempty"`
	LFlags      []string `toml:"lflags,omitempty"`
	Defines     []string `toml:"defines,omitempty"`
	CxxStandard string   `toml:"cxx_standard,omitempty"`
}

// CacheDocument is the whole muuk.lock.toml tree.
type CacheDocument struct {
	Library  []LibraryEntry          `toml:"library,omitempty"`
	External []ExternalEntry         `toml:"external,omitempty"`
	Build    []BuildEntry            `toml:"build,omitempty"`
	Profile  map[string]ProfileEntry `toml:"profile,omitempty"`
}

// multilineKeys are the array-valued keys spec.md §4.5.6 requires one
// element per line for, regardless of what go-toml's default compact
// array rendering would produce.
var multilineKeys = []string{"sources", "modules", "outputs", "include", "cflags", "cxxflags", "lflags", "defines"}

// MarshalCache renders doc as TOML and forces multilineKeys onto
// multiple lines.
func MarshalCache(doc CacheDocument) ([]byte, error) {
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling lock cache: %w", err)
	}
	return ForceMultilineArrays(data, multilineKeys...), nil
}

// UnmarshalCache parses a muuk.lock.toml document.
func UnmarshalCache(data []byte) (CacheDocument, error) {
	var doc CacheDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return CacheDocument{}, fmt.Errorf("parsing lock cache: %w", err)
	}
	return doc, nil
}

// arrayLineRe matches one `key = [ ...single line... ]` assignment,
// capturing the key and its inline element list.
var arrayLineRe = regexp.MustCompile(`(?m)^([ \t]*)([A-Za-z0-9_.-]+) = \[(.*)\]\s*$`)

// ForceMultilineArrays rewrites every single-line `key = [a, b, c]`
// assignment whose key is in keys into muuk's multiline array style:
//
//	key = [
//	    a,
//	    b,
//	    c,
//	]
//
// Arrays already spanning multiple lines, or for keys not listed, are
// left untouched.
func ForceMultilineArrays(doc []byte, keys ...string) []byte {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	return arrayLineRe.ReplaceAllFunc(doc, func(match []byte) []byte {
		groups := arrayLineRe.FindSubmatch(match)
		indent, key, body := string(groups[1]), string(groups[2]), string(groups[3])
		if !want[key] {
			return match
		}
		elems := splitTopLevel(body)
		if len(elems) == 0 {
			return match
		}

		var buf bytes.Buffer
		fmt.Fprintf(&buf, "%s%s = [\n", indent, key)
		for _, el := range elems {
			fmt.Fprintf(&buf, "%s    %s,\n", indent, el)
		}
		fmt.Fprintf(&buf, "%s]", indent)
		return buf.Bytes()
	})
}

// splitTopLevel splits a TOML inline array's body on commas that are not
// inside a quoted string, trimming whitespace from each element.
func splitTopLevel(body string) []string {
	var out []string
	var cur bytes.Buffer
	inString := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '"' && (i == 0 || body[i-1] != '\\'):
			inString = !inString
			cur.WriteByte(c)
		case c == ',' && !inString:
			if s := trimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if s := trimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
