package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/sergeknystautas/trunkgate/internal/history"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		mergeBase string
		tagCommit string
		trunkHead string
		want      Outcome
	}{
		{"trunk advanced past tag", "B", "B", "C", TrunkAdvanced},
		{"tag ahead of trunk", "C", "D", "C", TagAhead},
		{"same commit", "C", "C", "C", TrunkAdvanced},
		{"diverged", "A", "B", "C", Diverged},
		{"no common ancestor", "", "B", "C", Diverged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.mergeBase, tt.tagCommit, tt.trunkHead)
			if got != tt.want {
				t.Errorf("Decide(%q, %q, %q) = %v, want %v",
					tt.mergeBase, tt.tagCommit, tt.trunkHead, got, tt.want)
			}
		})
	}
}

// gateGraph builds:
//
//	A -> B -> C        (main at C)
//	      \-> D -> E   (feature at E)
func gateGraph() *history.Graph {
	g := history.NewGraph()
	g.AddCommit("A")
	g.AddCommit("B", "A")
	g.AddCommit("C", "B")
	g.AddCommit("D", "B")
	g.AddCommit("E", "D")
	g.SetBranch("main", "C")
	g.SetBranch("feature", "E")
	return g
}

func TestGateCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("trunk advanced past tag passes", func(t *testing.T) {
		g := &Gate{Provider: gateGraph(), Trunk: "main"}
		res, err := g.Check(ctx, "B")
		if err != nil {
			t.Fatalf("Check(B) error: %v", err)
		}
		if res.Outcome != TrunkAdvanced {
			t.Errorf("outcome = %v, want TrunkAdvanced", res.Outcome)
		}
		if res.MergeBase != "B" || res.TrunkHead != "C" {
			t.Errorf("result = %+v, want merge-base B, trunk head C", res)
		}
	})

	t.Run("tag at trunk head passes", func(t *testing.T) {
		g := &Gate{Provider: gateGraph(), Trunk: "main"}
		res, err := g.Check(ctx, "C")
		if err != nil {
			t.Fatalf("Check(C) error: %v", err)
		}
		if res.Outcome != TrunkAdvanced {
			t.Errorf("outcome = %v, want TrunkAdvanced", res.Outcome)
		}
	})

	t.Run("tag ahead of trunk passes by default", func(t *testing.T) {
		graph := gateGraph()
		graph.SetBranch("main", "B") // trunk lags behind the tag on C
		g := &Gate{Provider: graph, Trunk: "main"}
		res, err := g.Check(ctx, "C")
		if err != nil {
			t.Fatalf("Check(C) with lagging trunk error: %v", err)
		}
		if res.Outcome != TagAhead {
			t.Errorf("outcome = %v, want TagAhead", res.Outcome)
		}
	})

	t.Run("tag ahead of trunk fails in strict mode", func(t *testing.T) {
		graph := gateGraph()
		graph.SetBranch("main", "B")
		g := &Gate{Provider: graph, Trunk: "main", RequireReachableFromTrunk: true}
		_, err := g.Check(ctx, "C")
		if !errors.Is(err, ErrTagAheadOfTrunk) {
			t.Errorf("Check error = %v, want ErrTagAheadOfTrunk", err)
		}
	})

	t.Run("same commit passes in strict mode", func(t *testing.T) {
		g := &Gate{Provider: gateGraph(), Trunk: "main", RequireReachableFromTrunk: true}
		if _, err := g.Check(ctx, "C"); err != nil {
			t.Errorf("Check(C) strict error: %v, want nil", err)
		}
	})

	t.Run("tag merged into trunk passes", func(t *testing.T) {
		// Feature branched from trunk head C, tagged commit B on the
		// feature, merged back as M. The merge-base of B and M is B, so
		// trunk has advanced past the tag.
		graph := history.NewGraph()
		graph.AddCommit("A")
		graph.AddCommit("C", "A")
		graph.AddCommit("B", "C")
		graph.AddCommit("M", "C", "B")
		graph.SetBranch("main", "M")
		g := &Gate{Provider: graph, Trunk: "main"}
		res, err := g.Check(ctx, "B")
		if err != nil {
			t.Fatalf("Check(B) with merged trunk error: %v", err)
		}
		if res.Outcome != TrunkAdvanced {
			t.Errorf("outcome = %v, want TrunkAdvanced", res.Outcome)
		}
		if res.MergeBase != "B" {
			t.Errorf("merge-base = %q, want B", res.MergeBase)
		}
	})

	t.Run("diverged histories fail closed", func(t *testing.T) {
		g := &Gate{Provider: gateGraph(), Trunk: "main"}
		res, err := g.Check(ctx, "E")
		if !errors.Is(err, ErrDiverged) {
			t.Fatalf("Check(E) error = %v, want ErrDiverged", err)
		}
		if res == nil || res.Outcome != Diverged {
			t.Errorf("result = %+v, want Diverged outcome", res)
		}
	})

	t.Run("missing trunk branch", func(t *testing.T) {
		g := &Gate{Provider: gateGraph(), Trunk: "release"}
		_, err := g.Check(ctx, "B")
		if !errors.Is(err, ErrTrunkNotFound) {
			t.Errorf("Check error = %v, want ErrTrunkNotFound", err)
		}
	})
}
