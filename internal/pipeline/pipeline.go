// Package pipeline drives the publish gate end to end: resolve the release
// tag for the triggering commit, then verify the tag's trunk ancestry. Only
// a run that ends in StatePublishable may be followed by a publish step.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sergeknystautas/trunkgate/internal/gate"
	"github.com/sergeknystautas/trunkgate/internal/history"
	"github.com/sergeknystautas/trunkgate/internal/report"
	"github.com/sergeknystautas/trunkgate/internal/resolver"
)

// Pipeline states. Failure states are terminal.
const (
	StateTriggered           = "TRIGGERED"
	StateTagResolved         = "TAG_RESOLVED"
	StateAncestryVerified    = "ANCESTRY_VERIFIED"
	StatePublishable         = "PUBLISHABLE"
	StateTagResolutionFailed = "TAG_RESOLUTION_FAILED"
	StateAncestryCheckFailed = "ANCESTRY_CHECK_FAILED"
)

// Pipeline runs the resolver and the ancestry gate in sequence. It performs
// a single synchronous pass; failures are genuine precondition violations
// and are never retried.
type Pipeline struct {
	Provider history.Provider
	// Trunk is the integration branch name.
	Trunk string
	// RequireReachableFromTrunk tightens the gate; see gate.Gate.
	RequireReachableFromTrunk bool
	// Clock supplies timestamps; defaults to time.Now.
	Clock func() time.Time
	// Logger receives progress logs; defaults to the standard logger.
	Logger *log.Logger
}

// Run executes the pipeline for the commit that triggered the workflow.
// The report is returned even when the run fails, so callers can still emit
// it; the error carries the fatal condition.
func (p *Pipeline) Run(ctx context.Context, triggerSHA string) (*report.Report, error) {
	now := p.Clock
	if now == nil {
		now = time.Now
	}
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := report.New(triggerSHA, p.Trunk, now())
	r.Mark(StateTriggered, now())

	res, err := resolver.Resolve(ctx, p.Provider, triggerSHA)
	if err != nil {
		r.Error = err.Error()
		r.Mark(StateTagResolutionFailed, now())
		r.FinishedAt = now()
		return r, err
	}
	r.Tag = res.Tag
	r.TagCommit = res.Commit
	r.Mark(StateTagResolved, now())
	logger.Info("release tag resolved", "tag", res.Tag, "commit", res.Commit)

	g := &gate.Gate{
		Provider:                  p.Provider,
		Trunk:                     p.Trunk,
		RequireReachableFromTrunk: p.RequireReachableFromTrunk,
	}
	check, err := g.Check(ctx, res.Commit)
	if check != nil {
		r.TrunkHead = check.TrunkHead
		r.MergeBase = check.MergeBase
	}
	if err != nil {
		r.Error = err.Error()
		r.Mark(StateAncestryCheckFailed, now())
		r.FinishedAt = now()
		return r, err
	}
	r.Mark(StateAncestryVerified, now())
	logger.Info("trunk ancestry verified",
		"trunk", p.Trunk, "head", check.TrunkHead,
		"merge_base", check.MergeBase, "outcome", string(check.Outcome))

	r.Publishable = true
	r.Mark(StatePublishable, now())
	r.FinishedAt = now()
	return r, nil
}
