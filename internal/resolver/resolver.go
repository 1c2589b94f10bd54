// Package resolver finds the release tag for a triggering commit: the
// highest strict MAJOR.MINOR.PATCH tag whose commit is contained in the
// history of that commit.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/sergeknystautas/trunkgate/internal/history"
	"github.com/sergeknystautas/trunkgate/internal/relver"
)

// ErrNoReleaseTag is returned when no strict release tag is reachable from
// the triggering commit. Publication must not proceed without one.
var ErrNoReleaseTag = errors.New("no release tag reachable from commit")

// Resolution is the selected release tag and the commit it points at.
type Resolution struct {
	Tag    string
	Commit string
}

// Resolve returns the highest release tag reachable from sha. History must
// be complete; a shallow clone is a precondition failure, not a lookup miss.
func Resolve(ctx context.Context, p history.Provider, sha string) (*Resolution, error) {
	if err := p.CheckComplete(ctx); err != nil {
		return nil, err
	}
	head, err := p.ResolveRef(ctx, sha)
	if err != nil {
		return nil, err
	}

	tags, err := p.Tags(ctx)
	if err != nil {
		return nil, err
	}

	// Candidates: strict MAJOR.MINOR.PATCH tags contained in the history of
	// the triggering commit. Everything else is excluded, not sorted last.
	var candidates []string
	commits := make(map[string]string, len(tags))
	for _, t := range tags {
		if !relver.IsRelease(t.Name) {
			continue
		}
		reachable, err := p.IsAncestor(ctx, t.Commit, head)
		if err != nil {
			return nil, fmt.Errorf("check reachability of tag %s: %w", t.Name, err)
		}
		if !reachable {
			continue
		}
		candidates = append(candidates, t.Name)
		commits[t.Name] = t.Commit
	}

	best, ok := relver.Max(candidates)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoReleaseTag, head)
	}
	return &Resolution{Tag: best, Commit: commits[best]}, nil
}
