// Package scaffold renders a brand-new muuk project (muuk.toml, a
// starter source tree, a LICENSE file) for `muuk init`, grounded on
// original_source/src/muukinitializer.cpp's init_project/generate_license,
// reusing the teacher's text/template Context pattern (funcs map,
// struct-to-map data binding) rather than hand-concatenating strings.
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"
)

// Options describes the project muuk init should scaffold.
type Options struct {
	ProjectName string
	Author      string
	Version     string
	License     string
	IncludePath string
}

// WithDefaults fills in the same defaults init_project applies when the
// operator leaves a prompt blank.
func (o Options) WithDefaults() Options {
	if o.Version == "" {
		o.Version = "0.1.0"
	}
	if o.License == "" {
		o.License = "MIT"
	}
	if o.IncludePath == "" {
		o.IncludePath = "include/"
	}
	return o
}

const manifestTemplate = `[package]
name = "{{.ProjectName}}"
author = "{{.Author}}"
version = "{{.Version}}"
license = "{{.License}}"

[scripts]
hello = "echo Hello, Muuk!"

[clean]
patterns = ["*.obj", "*.lib", "*.pdb", "*.o", "*.a", "*.so", "*.dll", "*.exe"]

[library.{{.ProjectName}}]
include = ["{{.IncludePath}}"]
libs = []
sources = ["src/{{.ProjectName}}.cpp"]

[build.bin]
cflags = ["/std:c++20", "/utf-8", "/EHsc", "/FS"]
sources = ["src/main.cpp"]

[build.bin.dependencies]
{{.ProjectName}} = "{{.Version}}"

[profile.debug]
cflags = ["-g", "-O0", "-DDEBUG", "-Wall"]

[profile.release]
cflags = ["-O3", "-DNDEBUG", "-march=native"]

[profile.tests]
cflags = ["-g", "-O0", "-DTESTING", "-Wall"]

[platform.windows]
cflags = ["/I."]

[platform.linux]
cflags = ["-pthread", "-rdynamic"]

[platform.macos]
cflags = ["-stdlib=libc++", "-mmacosx-version-min=10.13"]
`

const mainCppTemplate = `#include <iostream>

int main() {
    std::cout << "{{.ProjectName}} was here." << std::endl;
    return 0;
}
`

const headerTemplate = `#pragma once

void hello_{{.ProjectName}}();
`

var licenseTemplates = map[string]string{
	"MIT": `MIT License

Copyright (c) {{.Year}} {{.Author}}

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`,
	"UNLICENSED": `Unlicensed

All rights reserved. {{.Author}} reserves all rights to the software.
`,
}

func render(tmplText string, data any) (string, error) {
	t, err := template.New("scaffold").Parse(tmplText)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Init scaffolds a new project rooted at dir: muuk.toml, src/main.cpp,
// src/<name>.cpp, include/<name>.h, and a LICENSE file. Existing files
// are not overwritten silently — Init fails if muuk.toml already exists.
func Init(dir string, opts Options) error {
	opts = opts.WithDefaults()
	if opts.ProjectName == "" {
		return fmt.Errorf("scaffold: project name is required")
	}

	manifestPath := filepath.Join(dir, "muuk.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("scaffold: %s already exists", manifestPath)
	}

	for _, d := range []string{"src", opts.IncludePath} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("scaffold: creating %s: %w", d, err)
		}
	}

	manifest, err := render(manifestTemplate, opts)
	if err != nil {
		return fmt.Errorf("scaffold: rendering muuk.toml: %w", err)
	}
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		return err
	}

	mainCpp, err := render(mainCppTemplate, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "main.cpp"), []byte(mainCpp), 0o644); err != nil {
		return err
	}

	libCpp, err := render(fmt.Sprintf("#include \"%s.h\"\n\nvoid hello_{{.ProjectName}}() {}\n", opts.ProjectName), opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "src", opts.ProjectName+".cpp"), []byte(libCpp), 0o644); err != nil {
		return err
	}

	header, err := render(headerTemplate, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, opts.IncludePath, opts.ProjectName+".h"), []byte(header), 0o644); err != nil {
		return err
	}

	return writeLicense(dir, opts)
}

func writeLicense(dir string, opts Options) error {
	tmplText, ok := licenseTemplates[opts.License]
	if !ok {
		tmplText = licenseTemplates["UNLICENSED"]
	}
	data := struct {
		Options
		Year int
	}{Options: opts, Year: time.Now().Year()}

	text, err := render(tmplText, data)
	if err != nil {
		return fmt.Errorf("scaffold: rendering LICENSE: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "LICENSE"), []byte(text), 0o644)
}
