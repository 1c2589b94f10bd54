// Package gate verifies that a release tag's commit and the trunk head share
// a fast-forward relationship before publication is allowed. The check fails
// closed: any divergence aborts the pipeline.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sergeknystautas/trunkgate/internal/history"
)

var (
	// ErrDiverged indicates the tag and trunk histories have no
	// fast-forward relationship.
	ErrDiverged = errors.New("tag and trunk histories have diverged")

	// ErrTrunkNotFound indicates the trunk branch head could not be resolved.
	ErrTrunkNotFound = errors.New("trunk branch not found")

	// ErrTagAheadOfTrunk is returned in strict mode when the tag commit has
	// not been reached by trunk yet.
	ErrTagAheadOfTrunk = errors.New("release tag is ahead of trunk")
)

// Outcome classifies the relationship between a tag commit and trunk head.
type Outcome string

const (
	// TrunkAdvanced: the merge-base is the tag commit itself; trunk has
	// moved forward past the tag. The normal post-release state.
	TrunkAdvanced Outcome = "trunk_advanced"
	// TagAhead: the merge-base is the trunk head; the tag commit is at or
	// ahead of trunk.
	TagAhead Outcome = "tag_ahead"
	// Diverged: the merge-base is neither endpoint; the histories split.
	Diverged Outcome = "diverged"
)

// Decide applies the fast-forward rule to three commit SHAs. It is a pure
// function so it can be exercised against synthetic graphs without I/O.
func Decide(mergeBase, tagCommit, trunkHead string) Outcome {
	switch {
	case mergeBase == "":
		return Diverged
	case mergeBase == tagCommit:
		return TrunkAdvanced
	case mergeBase == trunkHead:
		return TagAhead
	default:
		return Diverged
	}
}

// Gate checks release tags against a trunk branch.
type Gate struct {
	Provider history.Provider
	// Trunk is the integration branch name, e.g. "main".
	Trunk string
	// RequireReachableFromTrunk tightens the gate so a tag commit trunk has
	// not reached yet is rejected. Off by default: a tag at or ahead of
	// trunk passes.
	RequireReachableFromTrunk bool
}

// Result records the commits examined and the outcome.
type Result struct {
	TagCommit string
	TrunkHead string
	MergeBase string
	Outcome   Outcome
}

// Check re-resolves the trunk head, computes the merge-base against the tag
// commit, and applies the fast-forward rule. The returned Result is set even
// when the gate fails, so callers can report what was compared.
func (g *Gate) Check(ctx context.Context, tagCommit string) (*Result, error) {
	trunkHead, err := g.Provider.ResolveBranch(ctx, g.Trunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTrunkNotFound, g.Trunk, err)
	}

	base, err := g.Provider.MergeBase(ctx, tagCommit, trunkHead)
	if err != nil {
		return nil, fmt.Errorf("merge-base of %s and %s: %w", tagCommit, trunkHead, err)
	}

	res := &Result{
		TagCommit: tagCommit,
		TrunkHead: trunkHead,
		MergeBase: base,
		Outcome:   Decide(base, tagCommit, trunkHead),
	}

	switch res.Outcome {
	case Diverged:
		return res, fmt.Errorf("%w: merge-base %s matches neither tag commit %s nor trunk head %s",
			ErrDiverged, orNone(base), tagCommit, trunkHead)
	case TagAhead:
		if g.RequireReachableFromTrunk && tagCommit != trunkHead {
			return res, fmt.Errorf("%w: trunk %s head %s has not reached tag commit %s",
				ErrTagAheadOfTrunk, g.Trunk, trunkHead, tagCommit)
		}
	}
	return res, nil
}

func orNone(sha string) string {
	if sha == "" {
		return "(none)"
	}
	return sha
}
