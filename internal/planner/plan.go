// Package planner performs goal-directed best-first search over the
// abstract repository-state space, producing an ordered action sequence.
// The search works purely on declared effects; it never touches a live
// repository.
package planner

import (
	"fmt"
	"strings"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/state"
)

// Alternative is a candidate edge that was applicable at a decision point
// but not chosen, retained for the explainer.
type Alternative struct {
	// Action is the rejected instance.
	Action catalog.Instance

	// Priority is the f-value (g + cost + heuristic) its successor
	// would have had.
	Priority float64
}

// Step is one planned action with its predicted outcome.
type Step struct {
	// Action is the chosen instance.
	Action catalog.Instance

	// Predicted is the state the effect function forecasts.
	Predicted state.RepoState

	// Priority is the f-value (g + cost + heuristic) the chosen
	// successor had, the baseline for alternative cost deltas.
	Priority float64

	// Alternatives are the capped rejected candidates at this decision
	// point, ordered by priority.
	Alternatives []Alternative
}

// Plan is an ordered action sequence. It is a proposal: the executor may
// discard the remainder and request a new one.
type Plan struct {
	// Goal is the specification the plan drives toward.
	Goal state.GoalSpec

	// Start is the state the plan was computed from.
	Start state.RepoState

	// Steps are the planned actions in order.
	Steps []Step

	// TotalCost is the accumulated actual cost of all steps.
	TotalCost float64

	// Notes carries free-text justification (heuristic breakdown,
	// search statistics).
	Notes []string
}

// Empty reports a plan with no steps (goal already satisfied).
func (p *Plan) Empty() bool { return len(p.Steps) == 0 }

// ActionIDs lists the step identities in order.
func (p *Plan) ActionIDs() []string {
	ids := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		ids = append(ids, s.Action.ID())
	}
	return ids
}

// Describe renders a one-line summary.
func (p *Plan) Describe() string {
	if p.Empty() {
		return "no actions required"
	}
	return fmt.Sprintf("%d actions, estimated cost %.2f: %s",
		len(p.Steps), p.TotalCost, strings.Join(p.ActionIDs(), " → "))
}

// PlanningError reports an unreachable goal. It carries the best partial
// state reached so the caller can present how far the search got.
type PlanningError struct {
	// Goal is the unsatisfied specification.
	Goal state.GoalSpec

	// BestState is the expanded state with the lowest heuristic.
	BestState state.RepoState

	// Expanded is the number of states expanded before giving up.
	Expanded int
}

// Error implements the error interface.
func (e *PlanningError) Error() string {
	return fmt.Sprintf("goal %q unreachable under the action catalog (expanded %d states)",
		e.Goal.Describe(), e.Expanded)
}
