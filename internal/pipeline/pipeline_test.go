package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sergeknystautas/trunkgate/internal/gate"
	"github.com/sergeknystautas/trunkgate/internal/history"
	"github.com/sergeknystautas/trunkgate/internal/resolver"
)

// trunkGraph builds A -> B -> C on main with main at C.
func trunkGraph() *history.Graph {
	g := history.NewGraph()
	g.AddCommit("A")
	g.AddCommit("B", "A")
	g.AddCommit("C", "B")
	g.SetBranch("main", "C")
	return g
}

func testClock() func() time.Time {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestRunPublishable(t *testing.T) {
	// Commits A -> B -> C on trunk, tag 1.0.0 on B, trunk head at C. A run
	// triggered by B resolves 1.0.0 and passes the gate since the merge-base
	// of B and C is B itself.
	g := trunkGraph()
	g.AddTag("1.0.0", "B")

	p := &Pipeline{Provider: g, Trunk: "main", Clock: testClock()}
	rep, err := p.Run(context.Background(), "B")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if rep.State != StatePublishable {
		t.Errorf("final state = %q, want %q", rep.State, StatePublishable)
	}
	if !rep.Publishable {
		t.Error("report not marked publishable")
	}
	if rep.Tag != "1.0.0" || rep.TagCommit != "B" {
		t.Errorf("tag = %s (%s), want 1.0.0 (B)", rep.Tag, rep.TagCommit)
	}
	if rep.TrunkHead != "C" || rep.MergeBase != "B" {
		t.Errorf("trunk head %s / merge-base %s, want C / B", rep.TrunkHead, rep.MergeBase)
	}
	if rep.RunID == "" {
		t.Error("missing run id")
	}
	if rep.FinishedAt.Before(rep.StartedAt) {
		t.Error("finished before started")
	}

	want := []string{StateTriggered, StateTagResolved, StateAncestryVerified, StatePublishable}
	if len(rep.Transitions) != len(want) {
		t.Fatalf("transitions = %d, want %d", len(rep.Transitions), len(want))
	}
	for i, s := range want {
		if rep.Transitions[i].To != s {
			t.Errorf("transition %d = %q, want %q", i, rep.Transitions[i].To, s)
		}
	}
}

func TestRunTagResolutionFailed(t *testing.T) {
	g := trunkGraph() // no tags at all

	p := &Pipeline{Provider: g, Trunk: "main", Clock: testClock()}
	rep, err := p.Run(context.Background(), "B")
	if !errors.Is(err, resolver.ErrNoReleaseTag) {
		t.Fatalf("Run error = %v, want ErrNoReleaseTag", err)
	}
	if rep.State != StateTagResolutionFailed {
		t.Errorf("final state = %q, want %q", rep.State, StateTagResolutionFailed)
	}
	if rep.Publishable {
		t.Error("failed run marked publishable")
	}
	if rep.Error == "" {
		t.Error("report missing error message")
	}
}

func TestRunAncestryCheckFailed(t *testing.T) {
	// Tag on a branch that diverged from trunk after A.
	g := history.NewGraph()
	g.AddCommit("A")
	g.AddCommit("B", "A")
	g.AddCommit("C", "B")
	g.AddCommit("D", "A")
	g.SetBranch("main", "C")
	g.AddTag("1.0.0", "D")

	p := &Pipeline{Provider: g, Trunk: "main", Clock: testClock()}
	rep, err := p.Run(context.Background(), "D")
	if !errors.Is(err, gate.ErrDiverged) {
		t.Fatalf("Run error = %v, want ErrDiverged", err)
	}
	if rep.State != StateAncestryCheckFailed {
		t.Errorf("final state = %q, want %q", rep.State, StateAncestryCheckFailed)
	}
	if rep.Tag != "1.0.0" {
		t.Errorf("tag = %q, want 1.0.0 (resolution succeeded before the gate)", rep.Tag)
	}
	if rep.Publishable {
		t.Error("diverged run marked publishable")
	}
	// The gate fails closed but still reports what it compared.
	if rep.TrunkHead != "C" || rep.MergeBase != "A" {
		t.Errorf("trunk head %s / merge-base %s, want C / A", rep.TrunkHead, rep.MergeBase)
	}
}

func TestRunShallowHistoryFailsFast(t *testing.T) {
	g := history.NewGraph()
	g.AddCommit("B", "A") // truncated
	g.SetBranch("main", "B")
	g.AddTag("1.0.0", "B")

	p := &Pipeline{Provider: g, Trunk: "main", Clock: testClock()}
	rep, err := p.Run(context.Background(), "B")
	if !errors.Is(err, history.ErrShallowHistory) {
		t.Fatalf("Run error = %v, want ErrShallowHistory", err)
	}
	if rep.State != StateTagResolutionFailed {
		t.Errorf("final state = %q, want %q", rep.State, StateTagResolutionFailed)
	}
}
