package history

import (
	"context"
	"fmt"
)

// Graph is an in-memory commit graph: commit ids with parent links, plus
// tags and branch heads. It implements Provider with no I/O, which makes it
// the substrate for unit-testing resolution and gating logic against
// synthetic histories.
type Graph struct {
	parents  map[string][]string
	tags     []Tag
	branches map[string]string
}

// NewGraph returns an empty commit graph.
func NewGraph() *Graph {
	return &Graph{
		parents:  make(map[string][]string),
		branches: make(map[string]string),
	}
}

// AddCommit records a commit and its parent ids. Parents may be added later;
// a parent that is never added marks the graph as truncated.
func (g *Graph) AddCommit(id string, parents ...string) {
	g.parents[id] = parents
}

// AddTag attaches a tag name to a commit id.
func (g *Graph) AddTag(name, commit string) {
	g.tags = append(g.tags, Tag{Name: name, Commit: commit})
}

// SetBranch points a branch name at a commit id.
func (g *Graph) SetBranch(name, commit string) {
	g.branches[name] = commit
}

// CheckComplete fails when any commit references a parent that is not in the
// graph, the in-memory analogue of a shallow clone.
func (g *Graph) CheckComplete(ctx context.Context) error {
	for id, parents := range g.parents {
		for _, p := range parents {
			if _, ok := g.parents[p]; !ok {
				return fmt.Errorf("%w: commit %s has unknown parent %s", ErrShallowHistory, id, p)
			}
		}
	}
	return nil
}

// ResolveRef resolves a commit id, tag name, or branch name.
func (g *Graph) ResolveRef(ctx context.Context, ref string) (string, error) {
	if _, ok := g.parents[ref]; ok {
		return ref, nil
	}
	if head, ok := g.branches[ref]; ok {
		return head, nil
	}
	for _, t := range g.tags {
		if t.Name == ref {
			return t.Commit, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrRefNotFound, ref)
}

// ResolveBranch resolves a branch name to its head commit.
func (g *Graph) ResolveBranch(ctx context.Context, branch string) (string, error) {
	head, ok := g.branches[branch]
	if !ok {
		return "", fmt.Errorf("%w: branch %s", ErrRefNotFound, branch)
	}
	return head, nil
}

// Tags returns all tags in insertion order.
func (g *Graph) Tags(ctx context.Context) ([]Tag, error) {
	out := make([]Tag, len(g.tags))
	copy(out, g.tags)
	return out, nil
}

// IsAncestor walks parent links from descendant with a memoized visited set.
func (g *Graph) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	if _, ok := g.parents[ancestor]; !ok {
		return false, fmt.Errorf("%w: %s", ErrRefNotFound, ancestor)
	}
	if _, ok := g.parents[descendant]; !ok {
		return false, fmt.Errorf("%w: %s", ErrRefNotFound, descendant)
	}
	ancestors := g.ancestorSet(descendant)
	return ancestors[ancestor], nil
}

// MergeBase returns the best common ancestor of a and b: a commit both can
// reach that no other common ancestor descends from. The first commit in
// a's ancestor set found while walking from b is not enough — when a itself
// was merged into b's history, that walk reaches the fork point through the
// merge's first parent before it reaches a. Returns "" when the histories
// share no commit.
func (g *Graph) MergeBase(ctx context.Context, a, b string) (string, error) {
	if _, ok := g.parents[a]; !ok {
		return "", fmt.Errorf("%w: %s", ErrRefNotFound, a)
	}
	if _, ok := g.parents[b]; !ok {
		return "", fmt.Errorf("%w: %s", ErrRefNotFound, b)
	}
	ofA := g.ancestorSet(a)
	ofB := g.ancestorSet(b)
	common := map[string]bool{}
	for id := range ofA {
		if ofB[id] {
			common[id] = true
		}
	}

	// Walk from b in breadth-first order so ties (criss-cross merges) pick
	// the common ancestor nearest to b deterministically.
	visited := map[string]bool{}
	queue := []string{b}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		if common[id] && !g.descendsFromWithin(id, common) {
			return id, nil
		}
		queue = append(queue, g.parents[id]...)
	}
	return "", nil
}

// descendsFromWithin reports whether some other member of the set is a
// strict descendant of id, which disqualifies id as a best common ancestor.
func (g *Graph) descendsFromWithin(id string, set map[string]bool) bool {
	for other := range set {
		if other == id {
			continue
		}
		if g.ancestorSet(other)[id] {
			return true
		}
	}
	return false
}

// ancestorSet returns every commit reachable from id, including id itself.
func (g *Graph) ancestorSet(id string) map[string]bool {
	set := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set[cur] {
			continue
		}
		set[cur] = true
		stack = append(stack, g.parents[cur]...)
	}
	return set
}
