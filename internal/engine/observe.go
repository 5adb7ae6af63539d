package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/gitmend/internal/state"
)

// Observe captures the current repository state without planning or
// mutating anything.
func (e *Engine) Observe(ctx context.Context, req *ObserveRequest) (*ObserveResult, error) {
	root, _, observer, err := e.repo(req.CWD)
	if err != nil {
		return nil, err
	}

	st, err := observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to observe repository: %w", err)
	}

	return &ObserveResult{RepoRoot: root, State: st}, nil
}

// goalSpec resolves the goal: the configured one, with an optional
// per-request mode override.
func (e *Engine) goalSpec(modeOverride string) (state.GoalSpec, error) {
	goal := e.cfg.GoalSpec()
	if modeOverride != "" {
		goal.Mode = state.GoalMode(modeOverride)
	}
	if err := goal.Validate(); err != nil {
		return state.GoalSpec{}, err
	}
	return goal, nil
}
