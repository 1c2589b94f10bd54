// Package history provides read-only queries over a repository's commit and
// tag history: ref resolution, tag enumeration, reachability, and merge-base
// computation. Providers back these queries with the git CLI, go-git, the
// GitHub API, or a synthetic in-memory graph.
package history

import (
	"context"
	"errors"
)

var (
	// ErrShallowHistory indicates the available history is truncated (for
	// example a shallow clone) and cannot answer reachability queries.
	ErrShallowHistory = errors.New("shallow history")

	// ErrRefNotFound indicates a ref, branch, or SHA did not resolve.
	ErrRefNotFound = errors.New("ref not found")
)

// Tag is a tag name paired with the commit it points at. Annotated tags are
// peeled to their target commit.
type Tag struct {
	Name   string
	Commit string
}

// Provider answers history queries against a single repository snapshot.
// Providers never mutate repository state.
type Provider interface {
	// CheckComplete fails with ErrShallowHistory when the provider cannot
	// see full history.
	CheckComplete(ctx context.Context) error

	// ResolveRef resolves a SHA, tag, or other revision to a full commit SHA.
	ResolveRef(ctx context.Context, ref string) (string, error)

	// ResolveBranch resolves a branch name to its current head commit SHA,
	// preferring the remote-tracking ref when one exists.
	ResolveBranch(ctx context.Context, branch string) (string, error)

	// Tags returns every tag in the repository with peeled commit SHAs.
	Tags(ctx context.Context) ([]Tag, error)

	// IsAncestor reports whether ancestor is reachable from descendant.
	// A commit is considered its own ancestor.
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)

	// MergeBase returns the nearest common ancestor of a and b, or an empty
	// string when the two histories are unrelated.
	MergeBase(ctx context.Context, a, b string) (string, error)
}

// Fetcher is implemented by providers that can refresh a branch from the
// remote before it is resolved.
type Fetcher interface {
	Fetch(ctx context.Context, branch string) error
}
