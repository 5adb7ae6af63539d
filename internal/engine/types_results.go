package engine

import (
	"github.com/danieljhkim/gitmend/internal/executor"
	"github.com/danieljhkim/gitmend/internal/explain"
	"github.com/danieljhkim/gitmend/internal/llm"
	"github.com/danieljhkim/gitmend/internal/planner"
	"github.com/danieljhkim/gitmend/internal/state"
)

// ObserveResult represents the observed repository state.
type ObserveResult struct {
	// RepoRoot is the discovered repository root
	RepoRoot string

	// State is the observed state
	State state.RepoState
}

// PlanResult represents a computed plan.
type PlanResult struct {
	// RepoRoot is the discovered repository root
	RepoRoot string

	// State is the state the plan was computed from
	State state.RepoState

	// Plan is the computed action sequence
	Plan *planner.Plan
}

// RunResult represents the outcome of one recovery run.
type RunResult struct {
	// RepoRoot is the discovered repository root
	RepoRoot string

	// Simulated reports whether mutations were recorded, not executed
	Simulated bool

	// Run is the executor's terminal report
	Run *executor.RunResult

	// Advisory is the LLM pass summary (nil when the mode is off)
	Advisory *llm.Summary
}

// ExplainResult represents a plan explanation.
type ExplainResult struct {
	// RepoRoot is the discovered repository root
	RepoRoot string

	// State is the state the plan was computed from
	State state.RepoState

	// Plan is the explained plan
	Plan *planner.Plan

	// Report is the per-step explanation
	Report *explain.Report
}

// DoctorResult represents advisory readiness.
type DoctorResult struct {
	// Report is the diagnostic breakdown
	Report *llm.DoctorReport
}
