// Package script runs a named entry from a manifest's [scripts] table
// (spec.md's `muuk run <script> [args...]`), grounded on the teacher's
// internal/hook lifecycle-command runner: same shell-selection and
// os/exec plumbing, stripped of the release-pipeline template/condition
// machinery that command has no use for here.
package script

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Runner executes a manifest's declared scripts in a given working
// directory.
type Runner struct {
	WorkDir string
}

// NewRunner returns a Runner rooted at workDir.
func NewRunner(workDir string) *Runner {
	return &Runner{WorkDir: workDir}
}

// Run looks up name in scripts and executes it, appending extraArgs.
// Mirrors the teacher's hook.Runner.Run shell-selection logic (SHELL env
// var, falling back to powershell.exe on Windows and /bin/sh elsewhere).
func (r *Runner) Run(ctx context.Context, scripts map[string]string, name string, extraArgs []string) error {
	cmdline, ok := scripts[name]
	if !ok {
		return fmt.Errorf("script: no script named %q", name)
	}
	if len(extraArgs) > 0 {
		cmdline = cmdline + " " + strings.Join(extraArgs, " ")
	}

	log.Info("running script", "name", name, "cmd", cmdline)

	shell := os.Getenv("SHELL")
	if shell == "" {
		if runtime.GOOS == "windows" {
			shell = "powershell.exe"
		} else {
			shell = "/bin/sh"
		}
	}

	var c *exec.Cmd
	if runtime.GOOS == "windows" {
		c = exec.CommandContext(ctx, shell, "-Command", cmdline)
	} else {
		c = exec.CommandContext(ctx, shell, "-c", cmdline)
	}
	c.Dir = r.WorkDir
	c.Env = os.Environ()
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin

	if err := c.Run(); err != nil {
		return fmt.Errorf("script %q failed: %w", name, err)
	}
	return nil
}

// List returns the names of every declared script, sorted, for `muuk
// run` with no argument to print available scripts.
func List(scripts map[string]string) []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
