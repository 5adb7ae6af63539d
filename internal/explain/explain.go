// Package explain derives, from a plan and the alternatives the search
// retained, the per-action rationale and rejected candidates for
// presentation. It is read-only and never affects planning or execution.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/planner"
)

// AltReport is one rejected alternative at a decision point.
type AltReport struct {
	// Action is the rejected instance identity.
	Action string

	// CostDelta is how much worse its priority was than the chosen
	// edge's.
	CostDelta float64
}

// StepReport explains one chosen action.
type StepReport struct {
	// Action is the instance identity.
	Action string

	// Rationale is the catalog's declared justification.
	Rationale string

	// Cost is the actual cost charged for the step.
	Cost float64

	// Alternatives are the rejected candidates, worst-delta last.
	Alternatives []AltReport
}

// Report is the full plan explanation.
type Report struct {
	// Goal describes the target condition.
	Goal string

	// Summary is the plan's one-line description.
	Summary string

	// TotalCost is the plan's estimated cost.
	TotalCost float64

	// Steps explains each action in order.
	Steps []StepReport

	// Notes carries the planner's free-text justification.
	Notes []string

	// RangeDiff is an optional upstream comparison ("" when
	// unavailable).
	RangeDiff string
}

// Build assembles the explanation for a completed or candidate plan.
func Build(p *planner.Plan) *Report {
	report := &Report{
		Goal:      p.Goal.Describe(),
		Summary:   p.Describe(),
		TotalCost: p.TotalCost,
		Notes:     append([]string(nil), p.Notes...),
	}
	for _, step := range p.Steps {
		sr := StepReport{
			Action:    step.Action.ID(),
			Rationale: step.Action.Rationale,
			Cost:      step.Action.Cost,
		}
		for _, alt := range step.Alternatives {
			sr.Alternatives = append(sr.Alternatives, AltReport{
				Action:    alt.Action.ID(),
				CostDelta: alt.Priority - step.Priority,
			})
		}
		report.Steps = append(report.Steps, sr)
	}
	return report
}

// RangeDiff summarizes how local commits relate to the upstream's via
// git range-diff. Failures yield an empty summary, never an error that
// would block explanation.
func RangeDiff(ctx context.Context, git gitx.Runner, upstream string) string {
	if upstream == "" {
		return ""
	}
	result, err := git.Run(ctx, "git", "range-diff", upstream+"...HEAD")
	if err != nil || result.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(result.Stdout)
}

// Render formats the report as indented text lines.
func (r *Report) Render() []string {
	lines := []string{
		fmt.Sprintf("goal: %s", r.Goal),
		r.Summary,
	}
	for i, step := range r.Steps {
		lines = append(lines, fmt.Sprintf("%d. %s (cost %.2f): %s",
			i+1, step.Action, step.Cost, step.Rationale))
		for _, alt := range step.Alternatives {
			lines = append(lines, fmt.Sprintf("   rejected %s (+%.2f)",
				alt.Action, alt.CostDelta))
		}
	}
	lines = append(lines, r.Notes...)
	return lines
}
