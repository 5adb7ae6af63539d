package observe

import "fmt"

// ObservationError reports a tool invocation that failed or produced
// unparseable output. The raw output is preserved; the observer never
// returns a partially populated state instead.
type ObservationError struct {
	// Op names the observation step that failed.
	Op string

	// Output is the raw tool output, when any was captured.
	Output string

	// Err is the underlying cause, when the invocation itself failed.
	Err error
}

// Error implements the error interface.
func (e *ObservationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("observation failed during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("observation failed during %s: unparseable output", e.Op)
}

// Unwrap exposes the underlying cause.
func (e *ObservationError) Unwrap() error { return e.Err }
