package planner

import (
	"fmt"

	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/state"
)

// Heuristic computes an admissible lower bound on the remaining cost from
// a state to the goal. Each term is bounded by the cheapest action able to
// discharge it; config.Validate enforces the weight relations.
type Heuristic struct {
	weights config.Weights
	costs   config.Costs
}

// NewHeuristic builds the heuristic from the resolved weight and cost
// tables.
func NewHeuristic(weights config.Weights, costs config.Costs) Heuristic {
	return Heuristic{weights: weights, costs: costs}
}

// Contribution is one labelled heuristic term, kept for the explainer.
type Contribution struct {
	// Label names the term.
	Label string

	// Value is the term's share of the estimate.
	Value float64
}

// Estimate returns the lower bound from s to the goal.
func (h Heuristic) Estimate(s state.RepoState, g state.GoalSpec) float64 {
	total := 0.0
	for _, c := range h.Contributions(s, g) {
		total += c.Value
	}
	return total
}

// Contributions returns the estimate broken into labelled terms.
func (h Heuristic) Contributions(s state.RepoState, g state.GoalSpec) []Contribution {
	var out []Contribution
	add := func(label string, value float64) {
		if value > 0 {
			out = append(out, Contribution{Label: label, Value: value})
		}
	}

	nontrivial, trivial := 0, 0
	for _, c := range s.Conflicts {
		if c.Trivial() {
			trivial++
		} else {
			nontrivial++
		}
	}
	conflictTerm := h.weights.Conflict * float64(nontrivial)
	if trivial > 0 {
		conflictTerm += h.weights.Trivial
	}

	if s.OperationInProgress() {
		// Aborting discharges the in-progress operation and every
		// conflict at once, so it floors this whole group.
		term := conflictTerm + h.weights.Progress
		floor := h.costs.AbortRebase
		if s.MergeInProgress && (!s.RebaseInProgress || h.costs.AbortMerge < floor) {
			floor = h.costs.AbortMerge
		}
		if term > floor {
			term = floor
		}
		add("conflicts and in-progress operation", term)
	} else {
		add("outstanding conflicts", conflictTerm)
		if !s.WorktreeClean && len(s.Conflicts) == 0 {
			add("dirty worktree", h.weights.Clean)
		}
	}

	// A rebase already in flight clears the divergence when continued, so
	// the divergence term only applies outside one.
	if g.NeedsSync() && s.Behind > 0 && !s.RebaseInProgress {
		magnitude := s.Behind
		if magnitude > config.DivergenceCap {
			magnitude = config.DivergenceCap
		}
		add("divergence magnitude", h.weights.Divergence*float64(magnitude))
		add("staleness", h.weights.Staleness*s.Staleness())
	}

	if g.NeedsPush() && (s.Ahead > 0 || s.Unpushed) {
		add("unpublished commits", h.weights.Push)
	}
	if g.RequireTests && s.Tests != state.TestsPass {
		add("required test pass", h.weights.Tests)
	}
	return out
}

// Describe renders the contributions as a single note line.
func (h Heuristic) Describe(s state.RepoState, g state.GoalSpec) string {
	contributions := h.Contributions(s, g)
	if len(contributions) == 0 {
		return "heuristic 0.00 (goal conditions already hold)"
	}
	total := 0.0
	detail := ""
	for i, c := range contributions {
		total += c.Value
		if i > 0 {
			detail += ", "
		}
		detail += fmt.Sprintf("%s %.2f", c.Label, c.Value)
	}
	return fmt.Sprintf("heuristic %.2f (%s)", total, detail)
}
