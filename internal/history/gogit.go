package history

import (
	"context"
	"errors"
	"fmt"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGit answers history queries in-process via go-git, with no dependency on
// a git binary.
type GoGit struct {
	repo   *gitlib.Repository
	remote string
}

// OpenGoGit opens the repository at path, walking up to find .git the way
// git itself does.
func OpenGoGit(path, remote string) (*GoGit, error) {
	repo, err := gitlib.PlainOpenWithOptions(path, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &GoGit{repo: repo, remote: remote}, nil
}

// CheckComplete fails when the repository records shallow grafts.
func (g *GoGit) CheckComplete(ctx context.Context) error {
	shallow, err := g.repo.Storer.Shallow()
	if err != nil {
		return fmt.Errorf("read shallow state: %w", err)
	}
	if len(shallow) > 0 {
		return fmt.Errorf("%w: repository has %d shallow roots, fetch full history first", ErrShallowHistory, len(shallow))
	}
	return nil
}

// Fetch refreshes tracking refs from the remote.
func (g *GoGit) Fetch(ctx context.Context, branch string) error {
	err := g.repo.FetchContext(ctx, &gitlib.FetchOptions{RemoteName: g.remote})
	if err != nil && !errors.Is(err, gitlib.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch %s: %w", g.remote, err)
	}
	return nil
}

// ResolveRef resolves a revision to a full commit SHA, peeling annotated
// tags to their target commit.
func (g *GoGit) ResolveRef(ctx context.Context, ref string) (string, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRefNotFound, ref, err)
	}
	commit, err := g.peelToCommit(*hash)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRefNotFound, ref, err)
	}
	return commit.String(), nil
}

// ResolveBranch resolves a branch head, remote-tracking ref first.
func (g *GoGit) ResolveBranch(ctx context.Context, branch string) (string, error) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewRemoteReferenceName(g.remote, branch),
		plumbing.NewBranchReferenceName(branch),
	} {
		ref, err := g.repo.Reference(name, true)
		if err == nil && ref.Type() == plumbing.HashReference {
			return ref.Hash().String(), nil
		}
	}
	return "", fmt.Errorf("%w: branch %s", ErrRefNotFound, branch)
}

// Tags iterates refs/tags, peeling annotated tags to their commits. Tags
// that do not ultimately point at a commit are skipped.
func (g *GoGit) Tags(ctx context.Context) ([]Tag, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	var tags []Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		commit, err := g.peelToCommit(ref.Hash())
		if err != nil {
			return nil
		}
		tags = append(tags, Tag{Name: ref.Name().Short(), Commit: commit.String()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (g *GoGit) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	anc, err := g.commit(ancestor)
	if err != nil {
		return false, err
	}
	desc, err := g.commit(descendant)
	if err != nil {
		return false, err
	}
	ok, err := anc.IsAncestor(desc)
	if err != nil {
		return false, fmt.Errorf("ancestry %s..%s: %w", ancestor, descendant, err)
	}
	return ok, nil
}

// MergeBase returns the nearest common ancestor of a and b, or "" when the
// histories are unrelated.
func (g *GoGit) MergeBase(ctx context.Context, a, b string) (string, error) {
	ca, err := g.commit(a)
	if err != nil {
		return "", err
	}
	cb, err := g.commit(b)
	if err != nil {
		return "", err
	}
	bases, err := ca.MergeBase(cb)
	if err != nil {
		return "", fmt.Errorf("merge-base %s %s: %w", a, b, err)
	}
	if len(bases) == 0 {
		return "", nil
	}
	return bases[0].Hash.String(), nil
}

func (g *GoGit) commit(sha string) (*object.Commit, error) {
	commit, err := g.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("%w: commit %s: %v", ErrRefNotFound, sha, err)
	}
	return commit, nil
}

// peelToCommit follows annotated tag objects until a commit is reached.
// Lightweight tags point directly at a commit; annotated tags can nest.
func (g *GoGit) peelToCommit(hash plumbing.Hash) (plumbing.Hash, error) {
	if _, err := g.repo.CommitObject(hash); err == nil {
		return hash, nil
	}
	cur := hash
	for range 8 {
		tag, err := g.repo.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("object %s is not a commit or tag", cur)
		}
		switch tag.TargetType {
		case plumbing.CommitObject:
			return tag.Target, nil
		case plumbing.TagObject:
			cur = tag.Target
		default:
			return plumbing.ZeroHash, fmt.Errorf("tag %s targets a %s, not a commit", tag.Name, tag.TargetType)
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("tag chain from %s too deep", hash)
}
