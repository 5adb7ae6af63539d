// Package gitx provides the tool facade the observer and executor depend
// on: it executes declared commands with a timeout, captures exit status
// and output, and supports a simulate mode that records intended commands
// without mutating anything.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout indicates a command exceeded its deadline. A timeout is a
// failure, never a hang.
var ErrTimeout = errors.New("command timed out")

// Result captures one command invocation.
type Result struct {
	// ExitCode is the process exit status.
	ExitCode int

	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string
}

// Runner executes external commands for the observer and executor. A
// non-zero exit is reported through Result, not through the error return;
// the error return covers spawn failures and timeouts.
type Runner interface {
	// Run executes name with args in the repository directory.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// SimulateMode reports whether invocations are recorded instead of
	// executed.
	SimulateMode() bool
}

// CommandRunner runs real commands with a mandatory timeout.
type CommandRunner struct {
	// Dir is the working directory for every command.
	Dir string

	// Timeout bounds each invocation. Zero falls back to a minute.
	Timeout time.Duration
}

// NewCommandRunner creates a CommandRunner rooted at dir.
func NewCommandRunner(dir string, timeout time.Duration) *CommandRunner {
	return &CommandRunner{Dir: dir, Timeout: timeout}
}

// Run executes the command, capturing output and exit status.
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("%w: %s", ErrTimeout, FormatCommand(name, args))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
		return Result{}, fmt.Errorf("failed to run %s: %w", FormatCommand(name, args), err)
	}

	return Result{ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// SimulateMode always reports false for real execution.
func (r *CommandRunner) SimulateMode() bool { return false }

// FormatCommand renders a command line for logs and traces.
func FormatCommand(name string, args []string) string {
	parts := append([]string{name}, args...)
	for i, part := range parts {
		if strings.ContainsAny(part, " \t") {
			parts[i] = fmt.Sprintf("%q", part)
		}
	}
	return strings.Join(parts, " ")
}
