package engine

import (
	"context"
	"fmt"
)

// Plan observes the repository and computes an action sequence without
// executing it.
func (e *Engine) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	goal, err := e.goalSpec(req.GoalMode)
	if err != nil {
		return nil, err
	}

	root, _, observer, err := e.repo(req.CWD)
	if err != nil {
		return nil, err
	}

	st, err := observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to observe repository: %w", err)
	}
	if goal.NeedsSync() && st.Ref.Upstream == "" {
		return nil, fmt.Errorf("%w: goal %q needs one", ErrNoUpstream, goal.Describe())
	}

	_, search := e.search()
	plan, err := search.Plan(st, goal)
	if err != nil {
		return nil, err
	}

	return &PlanResult{RepoRoot: root, State: st, Plan: plan}, nil
}
