package engine

// ObserveRequest represents a request to observe the repository state.
type ObserveRequest struct {
	// CWD is the current working directory
	CWD string
}

// PlanRequest represents a request to compute a plan without executing.
type PlanRequest struct {
	// CWD is the current working directory
	CWD string

	// GoalMode overrides the configured goal when non-empty
	GoalMode string
}

// RunRequest represents a request to run the recovery loop.
type RunRequest struct {
	// CWD is the current working directory
	CWD string

	// GoalMode overrides the configured goal when non-empty
	GoalMode string

	// Confirm executes real mutations; without it the run is simulated
	Confirm bool

	// LLMMode overrides the configured advisory mode when non-empty
	LLMMode string

	// LLMSafety overrides the configured safety level when non-empty
	LLMSafety string

	// LLMModel overrides the configured advisory model when non-empty
	LLMModel string

	// MockLLM skips advisory network calls
	MockLLM bool
}

// ExplainRequest represents a request to explain the current plan.
type ExplainRequest struct {
	// CWD is the current working directory
	CWD string

	// GoalMode overrides the configured goal when non-empty
	GoalMode string

	// WithRangeDiff includes an upstream range-diff in the report
	WithRangeDiff bool
}

// DoctorRequest represents a request to check advisory readiness.
type DoctorRequest struct {
	// LLMModel overrides the configured advisory model when non-empty
	LLMModel string

	// MockLLM skips the provider round trip
	MockLLM bool
}
