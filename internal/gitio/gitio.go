// Package gitio wraps the git CLI for the operations muuk's dependency
// fetcher needs: resolving a ref to a commit, and cloning a repository
// pinned at that commit. Adapted from the teacher's internal/git package,
// which shelled out to git for release metadata; here the same run()
// helper drives clone/fetch/checkout instead of describe/log.
package gitio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// commitSHAPattern matches a full 40-hex-character git commit hash
// (spec.md §4.4 step 4's "<version> looks like a 40-hex-character commit
// SHA" test).
var commitSHAPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// IsCommitSHA reports whether ref is shaped like a full commit hash
// rather than a tag or branch name.
func IsCommitSHA(ref string) bool {
	return commitSHAPattern.MatchString(ref)
}

// Client runs git subcommands. It is a thin struct (rather than free
// functions) so internal/fetch can substitute a fake in tests.
type Client struct{}

// NewClient returns a Client that shells out to the system git binary.
func NewClient() *Client { return &Client{} }

// ResolveRef resolves ref (a tag or branch) on a remote repository to its
// full commit hash via `git ls-remote`, without cloning anything; a ref
// that is already a full 40-hex commit SHA is returned as-is. Used by the
// fetcher to pin a version string to a concrete commit before it does any
// filesystem work.
func (c *Client) ResolveRef(ctx context.Context, repoURL, ref string) (string, error) {
	if IsCommitSHA(ref) {
		return ref, nil
	}
	out, err := run(ctx, "", "ls-remote", repoURL, ref)
	if err != nil {
		return "", fmt.Errorf("resolving %s@%s: %w", repoURL, ref, err)
	}
	line := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if line == "" {
		return "", fmt.Errorf("ref %q not found on %s", ref, repoURL)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("unexpected ls-remote output for %s@%s: %q", repoURL, ref, line)
	}
	return fields[0], nil
}

// CloneAt materializes repoURL at commit into destDir, picking its
// clone strategy from ref (the dependency's original, unresolved version
// string) per spec.md §4.4 step 4: when ref is a 40-hex commit SHA, a
// plain `--branch <sha>` shallow clone only works on hosts that serve
// arbitrary reachable commits, so it attempts a shallow, branch-less
// clone followed by `git checkout <commit>`, falling back to a full
// clone + checkout only if that fails. When ref names a tag or branch,
// hosts universally support fetching it directly, so it always takes
// the cheap `--depth 1 --branch <ref>` path.
func (c *Client) CloneAt(ctx context.Context, repoURL, ref, commit, destDir string) error {
	if !IsCommitSHA(ref) {
		if _, err := run(ctx, "", "clone", "--depth", "1", "--branch", ref, repoURL, destDir); err != nil {
			return fmt.Errorf("cloning %s@%s: %w", repoURL, ref, err)
		}
		return nil
	}

	if err := cloneShallowBranchless(ctx, repoURL, commit, destDir); err == nil {
		return nil
	}
	if err := os.RemoveAll(destDir); err != nil {
		return fmt.Errorf("clearing partial clone of %s: %w", destDir, err)
	}
	if _, err := run(ctx, "", "clone", repoURL, destDir); err != nil {
		return fmt.Errorf("cloning %s: %w", repoURL, err)
	}
	if _, err := run(ctx, destDir, "checkout", commit); err != nil {
		return fmt.Errorf("checking out %s in %s: %w", commit, destDir, err)
	}
	return nil
}

// cloneShallowBranchless performs the shallow, branch-less clone + checkout
// attempt for a SHA-pinned dependency: a depth-1 clone of the default
// branch, then an explicit checkout of commit, which only succeeds when
// commit is reachable within that shallow history.
func cloneShallowBranchless(ctx context.Context, repoURL, commit, destDir string) error {
	if _, err := run(ctx, "", "clone", "--depth", "1", "--no-checkout", repoURL, destDir); err != nil {
		return fmt.Errorf("shallow clone of %s: %w", repoURL, err)
	}
	if _, err := run(ctx, destDir, "checkout", commit); err != nil {
		return fmt.Errorf("checking out %s in shallow clone of %s: %w", commit, destDir, err)
	}
	return nil
}

// CurrentCommit returns the checked-out commit hash in dir.
func (c *Client) CurrentCommit(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
