package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/gitmend/internal/explain"
	"github.com/danieljhkim/gitmend/internal/llm"
)

// Explain computes a plan and derives the per-step rationale and
// rejected alternatives.
func (e *Engine) Explain(ctx context.Context, req *ExplainRequest) (*ExplainResult, error) {
	goal, err := e.goalSpec(req.GoalMode)
	if err != nil {
		return nil, err
	}

	root, runner, observer, err := e.repo(req.CWD)
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

	report := explain.Build(plan)
	if req.WithRangeDiff {
		report.RangeDiff = explain.RangeDiff(ctx, runner, st.Ref.Upstream)
	}

	return &ExplainResult{RepoRoot: root, State: st, Plan: plan, Report: report}, nil
}

// Doctor checks advisory readiness: credentials, client construction,
// and (unless mocked) a provider round trip.
func (e *Engine) Doctor(ctx context.Context, req *DoctorRequest) (*DoctorResult, error) {
	opts, err := e.llmOptions("", "", req.LLMModel, req.MockLLM)
	if err != nil {
		return nil, err
	}
	return &DoctorResult{Report: llm.Doctor(ctx, opts)}, nil
}
