package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/gitmend/internal/executor"
	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/llm"
)

// Run drives the full recovery loop. Without Confirm the run is
// simulated: mutations are recorded as command descriptors and the plan
// is walked over predicted states.
func (e *Engine) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	goal, err := e.goalSpec(req.GoalMode)
	if err != nil {
		return nil, err
	}

	root, real, observer, err := e.repo(req.CWD)
	if err != nil {
		return nil, err
	}

	opts, err := e.llmOptions(req.LLMMode, req.LLMSafety, req.LLMModel, req.MockLLM)
	if err != nil {
		return nil, err
	}

	var mutator gitx.Runner = real
	if !req.Confirm {
		mutator = gitx.NewSimulateRunner()
		// A simulated run must not let the advisory pass mutate either.
		if opts.Mode == llm.ModeAuto {
			opts.Mode = llm.ModeSuggest
		}
	}

	result := &RunResult{RepoRoot: root, Simulated: !req.Confirm}

	// Advisory pass: observe and plan once up front so suggestions and
	// hints exist before mutation. Its failures never block the run.
	if opts.Enabled() {
		st, err := observer.Observe(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to observe repository: %w", err)
		}
		if goal.NeedsSync() && st.Ref.Upstream == "" {
			return nil, fmt.Errorf("%w: goal %q needs one", ErrNoUpstream, goal.Describe())
		}
		_, search := e.search()
		preview, err := search.Plan(st, goal)
		if err == nil {
			result.Advisory = llm.Assist(ctx, opts, mutator, st, preview)
		}
	}

	_, search := e.search()
	exec := executor.New(mutator, observer, search, e.cfg, e.clock)
	run, err := exec.Run(ctx, goal)
	result.Run = run
	return result, err
}
