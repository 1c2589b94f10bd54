// Package report renders the outcome of a gate run for machines (JSON, CI
// step outputs) and for humans (log summary).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transition is one state change of the publish pipeline.
type Transition struct {
	To string    `json:"to"`
	At time.Time `json:"at"`
}

// Report is the full record of a single gate run.
type Report struct {
	RunID       string       `json:"run_id"`
	TriggerSHA  string       `json:"trigger_sha"`
	TrunkBranch string       `json:"trunk_branch"`
	Tag         string       `json:"tag,omitempty"`
	TagCommit   string       `json:"tag_commit,omitempty"`
	TrunkHead   string       `json:"trunk_head,omitempty"`
	MergeBase   string       `json:"merge_base,omitempty"`
	State       string       `json:"state"`
	Publishable bool         `json:"publishable"`
	Error       string       `json:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Transitions []Transition `json:"transitions"`
}

// New returns a report with a fresh run ID.
func New(triggerSHA, trunkBranch string, now time.Time) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		TriggerSHA:  triggerSHA,
		TrunkBranch: trunkBranch,
		StartedAt:   now,
	}
}

// Mark records a state transition and updates the current state.
func (r *Report) Mark(state string, at time.Time) {
	r.State = state
	r.Transitions = append(r.Transitions, Transition{To: state, At: at})
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Summary renders a short human-readable account of the run.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %s\n", r.RunID, r.State)
	fmt.Fprintf(&b, "  trigger: %s\n", r.TriggerSHA)
	if r.Tag != "" {
		fmt.Fprintf(&b, "  tag: %s (%s)\n", r.Tag, r.TagCommit)
	}
	if r.TrunkHead != "" {
		fmt.Fprintf(&b, "  trunk: %s @ %s\n", r.TrunkBranch, r.TrunkHead)
	}
	if r.MergeBase != "" {
		fmt.Fprintf(&b, "  merge-base: %s\n", r.MergeBase)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "  error: %s\n", r.Error)
	}
	return b.String()
}

// WriteStepOutputs appends the run's outputs to the file named by
// $GITHUB_OUTPUT so later workflow steps can consume them. A missing
// variable means the run is not on a CI host; that is not an error.
func (r *Report) WriteStepOutputs() error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open step output file: %w", err)
	}
	defer f.Close()
	return r.WriteStepOutputsTo(f)
}

// WriteStepOutputsTo writes the key=value step outputs to w.
func (r *Report) WriteStepOutputsTo(w io.Writer) error {
	lines := []string{
		"tag=" + r.Tag,
		fmt.Sprintf("publishable=%t", r.Publishable),
		"run_id=" + r.RunID,
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("write step outputs: %w", err)
	}
	return nil
}
