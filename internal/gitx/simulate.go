package gitx

import "context"

// SimulateRunner records every invocation and returns synthetic success
// without touching the repository. The recorded descriptors preserve the
// ordering and parameters real execution would have used.
type SimulateRunner struct {
	recorded []string
}

// NewSimulateRunner creates an empty SimulateRunner.
func NewSimulateRunner() *SimulateRunner {
	return &SimulateRunner{}
}

// Run records the command and reports success.
func (r *SimulateRunner) Run(_ context.Context, name string, args ...string) (Result, error) {
	r.recorded = append(r.recorded, FormatCommand(name, args))
	return Result{ExitCode: 0}, nil
}

// SimulateMode always reports true.
func (r *SimulateRunner) SimulateMode() bool { return true }

// Recorded returns the command descriptors in invocation order.
func (r *SimulateRunner) Recorded() []string {
	return append([]string(nil), r.recorded...)
}
