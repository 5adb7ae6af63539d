// Package executor applies planned actions one at a time against the live
// repository, re-observes after every mutation, and replans on divergence.
// It is the only place real mutation happens; in simulate mode it records
// the command descriptors it would have issued instead.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/clock"
	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/planner"
	"github.com/danieljhkim/gitmend/internal/state"
)

// Phase is the executor's control-loop state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePlanning   Phase = "planning"
	PhaseExecuting  Phase = "executing"
	PhaseObserving  Phase = "observing"
	PhaseReplanning Phase = "replanning"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Outcome classifies one trace entry.
type Outcome string

const (
	// OutcomeApplied means the action ran and the observation matched
	// the prediction.
	OutcomeApplied Outcome = "applied"

	// OutcomeSimulated means the action was recorded, not executed.
	OutcomeSimulated Outcome = "simulated"

	// OutcomeMismatch means the action ran but reality diverged from
	// the prediction.
	OutcomeMismatch Outcome = "mismatch"

	// OutcomeFailed means the action's tool invocation failed.
	OutcomeFailed Outcome = "failed"
)

// Sentinel failures for terminal run states.
var (
	// ErrReplanLimit indicates the bounded replan counter was exceeded.
	ErrReplanLimit = errors.New("replan limit exceeded")

	// ErrInterrupted indicates cancellation honored between actions.
	ErrInterrupted = errors.New("interrupted between actions")
)

// TraceEntry records one action attempt for the reporting boundary.
type TraceEntry struct {
	// Action is the action name.
	Action string

	// Params are the resolved action parameters.
	Params catalog.Params

	// Commands are the descriptors issued (or recorded in simulate
	// mode), in order.
	Commands []string

	// Predicted is the state the planner forecast after this action.
	Predicted state.RepoState

	// Observed is the state seen after execution. In simulate mode it
	// equals the prediction.
	Observed state.RepoState

	// Outcome classifies the attempt.
	Outcome Outcome

	// Detail carries failure output when the outcome is failed.
	Detail string

	// At is the attempt timestamp.
	At time.Time
}

// RunResult is the terminal report of one control-loop run.
type RunResult struct {
	// Phase is the terminal phase (completed or failed).
	Phase Phase

	// Goal is the specification the run drove toward.
	Goal state.GoalSpec

	// FinalState is the last observed state.
	FinalState state.RepoState

	// Plan is the last plan computed.
	Plan *planner.Plan

	// Replans counts how often the remainder of a plan was discarded.
	Replans int

	// Trace is the structured execution trace.
	Trace []TraceEntry

	// BackupRef is the restorable reference point created before the
	// first mutating action ("" when no mutation was attempted).
	BackupRef string

	// Failures is the accumulated failure history.
	Failures []string
}

// Observer yields fresh repository states.
type Observer interface {
	Observe(ctx context.Context) (state.RepoState, error)
}

// Planner computes plans from observed states.
type Planner interface {
	Plan(start state.RepoState, goal state.GoalSpec) (*planner.Plan, error)
}

// Executor drives the Planning → Executing → Observing loop.
type Executor struct {
	git      gitx.Runner
	observer Observer
	planner  Planner
	cfg      config.Config
	clock    clock.Clock
}

// New wires an executor. The runner decides confirm versus simulate mode;
// the observer must always be backed by a real runner.
func New(git gitx.Runner, observer Observer, plan Planner, cfg config.Config, clk clock.Clock) *Executor {
	return &Executor{git: git, observer: observer, planner: plan, cfg: cfg, clock: clk}
}

// Run executes the control loop until the goal holds, the goal is proven
// unreachable, or the replan bound is exceeded. The returned RunResult is
// populated even when err is non-nil.
func (e *Executor) Run(ctx context.Context, goal state.GoalSpec) (*RunResult, error) {
	result := &RunResult{Phase: PhasePlanning, Goal: goal}
	backupName := fmt.Sprintf("refs/gitmend/backup/%s-%s",
		e.clock.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8])

	// An observation failure before any plan exists is fatal.
	current, err := e.observer.Observe(ctx)
	if err != nil {
		result.Phase = PhaseFailed
		return result, err
	}

	// The observer cannot know past test runs; the loop carries the
	// last result forward and invalidates it when history changes.
	rememberedTests := state.TestsUnknown
	current.Tests = rememberedTests
	result.FinalState = current

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			result.Phase = PhaseReplanning
			if result.Replans > e.cfg.MaxReplans {
				result.Phase = PhaseFailed
				return result, fmt.Errorf("%w: %d replans for goal %q",
					ErrReplanLimit, result.Replans, goal.Describe())
			}
		}

		plan, err := e.planner.Plan(current, goal)
		if err != nil {
			result.Phase = PhaseFailed
			return result, err
		}
		result.Plan = plan

		if plan.Empty() {
			result.Phase = PhaseCompleted
			result.FinalState = current
			return result, nil
		}

		if result.BackupRef == "" {
			// Restorable reference point, injected ahead of the plan so
			// any prefix of work can be undone.
			entry, err := e.applyCommands(ctx, "backup-ref", nil,
				[][]string{{"git", "update-ref", backupName, "HEAD"}}, current)
			result.Trace = append(result.Trace, entry)
			if err != nil {
				result.Failures = append(result.Failures, err.Error())
				result.Phase = PhaseFailed
				return result, err
			}
			result.BackupRef = backupName
		}

		next, replan, err := e.executeSteps(ctx, result, plan, &rememberedTests)
		if err != nil {
			result.Phase = PhaseFailed
			return result, err
		}
		current = next
		result.FinalState = current

		if !replan && goal.Satisfied(current) {
			result.Phase = PhaseCompleted
			return result, nil
		}
		if !replan && e.git.SimulateMode() {
			// Simulated walks cannot converge further than the plan's
			// own predictions.
			result.Phase = PhaseCompleted
			return result, nil
		}
		result.Replans++
	}
}

// executeSteps applies plan steps until completion, a mismatch, or a
// failure. It returns the state to continue from and whether replanning
// is needed.
func (e *Executor) executeSteps(ctx context.Context, result *RunResult, plan *planner.Plan, rememberedTests *state.TestResult) (state.RepoState, bool, error) {
	current := plan.Start
	for _, step := range plan.Steps {
		// Cancellation is honored between actions, never mid-mutation.
		if ctx.Err() != nil {
			return current, false, fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
		}

		result.Phase = PhaseExecuting
		commands, err := e.commandsFor(step.Action, current)
		if err != nil {
			result.Failures = append(result.Failures, err.Error())
			return current, false, err
		}

		entry, err := e.applyCommands(ctx, step.Action.Name, step.Action.Params, commands, step.Predicted)
		if err != nil {
			result.Trace = append(result.Trace, entry)
			result.Failures = append(result.Failures, err.Error())
			// Action and timeout failures both route into replanning.
			observed, oerr := e.reobserve(ctx, *rememberedTests)
			if oerr != nil {
				result.Failures = append(result.Failures, oerr.Error())
				return current, false, oerr
			}
			return observed, true, nil
		}

		if e.git.SimulateMode() {
			entry.Outcome = OutcomeSimulated
			entry.Observed = step.Predicted
			result.Trace = append(result.Trace, entry)
			current = step.Predicted
			continue
		}

		result.Phase = PhaseObserving
		e.noteTests(step.Action.Name, rememberedTests)
		observed, oerr := e.reobserve(ctx, *rememberedTests)
		if oerr != nil {
			// Mid-execution observation failure triggers replanning,
			// but without a fresh state there is nothing to replan
			// from.
			result.Failures = append(result.Failures, oerr.Error())
			return current, false, oerr
		}
		entry.Observed = observed

		if observed.Equal(step.Predicted) {
			entry.Outcome = OutcomeApplied
			result.Trace = append(result.Trace, entry)
			current = observed
			continue
		}
		entry.Outcome = OutcomeMismatch
		result.Trace = append(result.Trace, entry)
		return observed, true, nil
	}
	return current, false, nil
}

// applyCommands runs one action's command sequence through the facade.
func (e *Executor) applyCommands(ctx context.Context, action string, params catalog.Params, commands [][]string, predicted state.RepoState) (TraceEntry, error) {
	entry := TraceEntry{
		Action:    action,
		Params:    params,
		Predicted: predicted,
		At:        e.clock.Now(),
	}
	for _, argv := range commands {
		descriptor := gitx.FormatCommand(argv[0], argv[1:])
		entry.Commands = append(entry.Commands, descriptor)

		result, err := e.git.Run(ctx, argv[0], argv[1:]...)
		if err != nil {
			entry.Outcome = OutcomeFailed
			entry.Detail = err.Error()
			return entry, fmt.Errorf("action %s: %s: %w", action, descriptor, err)
		}
		if result.ExitCode != 0 {
			entry.Outcome = OutcomeFailed
			entry.Detail = result.Stderr
			return entry, fmt.Errorf("action %s: %s exited %d: %s",
				action, descriptor, result.ExitCode, firstLine(result.Stderr))
		}
	}
	return entry, nil
}

// reobserve fetches a fresh state and overlays the remembered test
// result.
func (e *Executor) reobserve(ctx context.Context, tests state.TestResult) (state.RepoState, error) {
	observed, err := e.observer.Observe(ctx)
	if err != nil {
		return state.RepoState{}, err
	}
	observed.Tests = tests
	return observed, nil
}

// noteTests updates the carried test result: a test run that reached this
// point succeeded, and history-changing actions invalidate earlier runs.
func (e *Executor) noteTests(action string, remembered *state.TestResult) {
	switch action {
	case catalog.ActionRunTests:
		*remembered = state.TestsPass
	case catalog.ActionRebase, catalog.ActionContinueRebase, catalog.ActionAbortRebase,
		catalog.ActionContinueMerge, catalog.ActionAbortMerge:
		*remembered = state.TestsUnknown
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
