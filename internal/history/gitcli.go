package history

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GitCLI answers history queries by shelling out to git in a local checkout.
// It requires full history; a shallow clone fails CheckComplete.
type GitCLI struct {
	dir    string
	remote string
}

// NewGitCLI returns a provider over the repository at dir. remote names the
// remote whose tracking refs are preferred when resolving branches.
func NewGitCLI(dir, remote string) *GitCLI {
	return &GitCLI{dir: dir, remote: remote}
}

// git runs a git query in the repository and returns trimmed stdout.
func (g *GitCLI) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(output)), nil
}

// CheckComplete fails when the checkout is a shallow clone. Reachability and
// merge-base answers are meaningless without full history.
func (g *GitCLI) CheckComplete(ctx context.Context) error {
	out, err := g.git(ctx, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return err
	}
	if out == "true" {
		return fmt.Errorf("%w: %s is a shallow clone, fetch full history first", ErrShallowHistory, g.dir)
	}
	return nil
}

// Fetch refreshes the branch from the remote so the head resolved afterwards
// is current, not a stale local tracking ref.
func (g *GitCLI) Fetch(ctx context.Context, branch string) error {
	cmd := exec.CommandContext(ctx, "git", "fetch", g.remote, branch)
	cmd.Dir = g.dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git fetch %s %s: %w: %s", g.remote, branch, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ResolveRef resolves a revision to a full commit SHA, peeling annotated
// tags to their target commit.
func (g *GitCLI) ResolveRef(ctx context.Context, ref string) (string, error) {
	out, err := g.git(ctx, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRefNotFound, ref, err)
	}
	return out, nil
}

// ResolveBranch resolves a branch head, trying the remote-tracking ref first
// and falling back to the local ref for repositories without a remote.
func (g *GitCLI) ResolveBranch(ctx context.Context, branch string) (string, error) {
	for _, ref := range []string{
		"refs/remotes/" + g.remote + "/" + branch,
		"refs/heads/" + branch,
	} {
		if out, err := g.git(ctx, "rev-parse", "--verify", ref+"^{commit}"); err == nil {
			return out, nil
		}
	}
	return "", fmt.Errorf("%w: branch %s", ErrRefNotFound, branch)
}

// Tags lists every tag with its peeled commit SHA. for-each-ref reports the
// peeled target in a third column for annotated tags only.
func (g *GitCLI) Tags(ctx context.Context) ([]Tag, error) {
	out, err := g.git(ctx, "for-each-ref", "refs/tags",
		"--format=%(refname:short) %(objectname) %(*objectname)")
	if err != nil {
		return nil, err
	}
	var tags []Tag
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		commit := fields[1]
		if len(fields) >= 3 {
			commit = fields[2]
		}
		tags = append(tags, Tag{Name: fields[0], Commit: commit})
	}
	return tags, nil
}

// IsAncestor reports whether ancestor is reachable from descendant using
// git's own ancestry test. Exit status 1 means "not an ancestor"; any other
// failure is a real error.
func (g *GitCLI) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "merge-base", "--is-ancestor", ancestor, descendant)
	cmd.Dir = g.dir
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("git merge-base --is-ancestor %s %s: %w", ancestor, descendant, err)
}

// MergeBase returns the nearest common ancestor of a and b. Exit status 1
// means the histories are unrelated, reported as an empty SHA.
func (g *GitCLI) MergeBase(ctx context.Context, a, b string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "merge-base", a, b)
	cmd.Dir = g.dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("git merge-base %s %s: %w", a, b, err)
	}
	// --all could return several bases on criss-cross merges; the plain form
	// already picks one deterministically.
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(string(output)), "\n", 2)[0]), nil
}
