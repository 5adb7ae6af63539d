package gitx

import (
	"context"
	"fmt"
)

// ScriptedRunner replays canned results for tests, keyed by the rendered
// command line. Repeated calls for the same command consume queued results
// in order; the last queued result repeats so idempotent re-observation
// can be exercised.
type ScriptedRunner struct {
	responses map[string][]Result
	errs      map[string]error
	calls     []string
	strict    bool
}

// NewScriptedRunner creates a runner with no scripted commands. Unknown
// commands succeed with empty output unless Strict is set.
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{
		responses: make(map[string][]Result),
		errs:      make(map[string]error),
	}
}

// Strict makes unknown commands an error instead of an empty success.
func (r *ScriptedRunner) Strict() *ScriptedRunner {
	r.strict = true
	return r
}

// Script queues a result for the given command line.
func (r *ScriptedRunner) Script(command string, result Result) *ScriptedRunner {
	r.responses[command] = append(r.responses[command], result)
	return r
}

// ScriptError makes the given command line fail at the invocation level,
// as a spawn failure or timeout would.
func (r *ScriptedRunner) ScriptError(command string, err error) *ScriptedRunner {
	r.errs[command] = err
	return r
}

// Run replays the scripted result for the command.
func (r *ScriptedRunner) Run(_ context.Context, name string, args ...string) (Result, error) {
	command := FormatCommand(name, args)
	r.calls = append(r.calls, command)

	if err, ok := r.errs[command]; ok {
		return Result{}, err
	}
	queue, ok := r.responses[command]
	if !ok {
		if r.strict {
			return Result{}, fmt.Errorf("unscripted command: %s", command)
		}
		return Result{ExitCode: 0}, nil
	}
	result := queue[0]
	if len(queue) > 1 {
		r.responses[command] = queue[1:]
	}
	return result, nil
}

// SimulateMode always reports false; scripted runs stand in for real ones.
func (r *ScriptedRunner) SimulateMode() bool { return false }

// Calls returns every command line seen, in order.
func (r *ScriptedRunner) Calls() []string {
	return append([]string(nil), r.calls...)
}
