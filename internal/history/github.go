package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v60/github"
)

// GitHub answers history queries through the GitHub API, so the gate can run
// without a local full clone. The API always sees full history.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHub returns a provider for owner/repo using the given client.
func NewGitHub(client *github.Client, owner, repo string) *GitHub {
	return &GitHub{client: client, owner: owner, repo: repo}
}

// ParseRepo splits an "owner/repo" string, tolerating URL forms.
func ParseRepo(s string) (owner, repo string, err error) {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, ".git")
	s = strings.TrimSuffix(s, "/")

	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse GitHub repo from %q", s)
	}
	return parts[0], parts[1], nil
}

// CheckComplete is a no-op: the API serves unabridged history.
func (g *GitHub) CheckComplete(ctx context.Context) error {
	return nil
}

// ResolveRef resolves a SHA, branch, or tag through the commits API.
func (g *GitHub) ResolveRef(ctx context.Context, ref string) (string, error) {
	sha, _, err := g.client.Repositories.GetCommitSHA1(ctx, g.owner, g.repo, ref, "")
	if err != nil {
		return "", fmt.Errorf("%w: %s in %s/%s: %v", ErrRefNotFound, ref, g.owner, g.repo, err)
	}
	return sha, nil
}

// ResolveBranch resolves a branch to its current head, fetched live.
func (g *GitHub) ResolveBranch(ctx context.Context, branch string) (string, error) {
	sha, _, err := g.client.Repositories.GetCommitSHA1(ctx, g.owner, g.repo, "heads/"+branch, "")
	if err != nil {
		return "", fmt.Errorf("%w: branch %s in %s/%s: %v", ErrRefNotFound, branch, g.owner, g.repo, err)
	}
	return sha, nil
}

// Tags pages through the repository's tags. The API reports the peeled
// commit SHA for annotated tags.
func (g *GitHub) Tags(ctx context.Context) ([]Tag, error) {
	var all []Tag
	opts := &github.ListOptions{PerPage: 100}
	for {
		tags, resp, err := g.client.Repositories.ListTags(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list tags for %s/%s: %w", g.owner, g.repo, err)
		}
		for _, t := range tags {
			all = append(all, Tag{Name: t.GetName(), Commit: t.GetCommit().GetSHA()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// IsAncestor maps the compare API's status onto an ancestry answer. With
// base=ancestor and head=descendant, "ahead" means head moved forward along
// base's line and "identical" means the same commit; both imply ancestry.
func (g *GitHub) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	cmp, _, err := g.client.Repositories.CompareCommits(ctx, g.owner, g.repo, ancestor, descendant, nil)
	if err != nil {
		return false, fmt.Errorf("compare %s...%s in %s/%s: %w", ancestor, descendant, g.owner, g.repo, err)
	}
	return ancestorFromStatus(cmp.GetStatus()), nil
}

// MergeBase uses the merge_base_commit the compare API reports.
func (g *GitHub) MergeBase(ctx context.Context, a, b string) (string, error) {
	cmp, _, err := g.client.Repositories.CompareCommits(ctx, g.owner, g.repo, a, b, nil)
	if err != nil {
		if isNotFound(err) {
			// No common history.
			return "", nil
		}
		return "", fmt.Errorf("compare %s...%s in %s/%s: %w", a, b, g.owner, g.repo, err)
	}
	return cmp.GetMergeBaseCommit().GetSHA(), nil
}

func ancestorFromStatus(status string) bool {
	return status == "ahead" || status == "identical"
}

// isNotFound reports whether err is an API response with status 404.
func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) &&
		errResp.Response != nil &&
		errResp.Response.StatusCode == http.StatusNotFound
}
