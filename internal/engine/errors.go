package engine

import "errors"

var (
	// ErrNotInRepo indicates the current directory is not in a git repository.
	ErrNotInRepo = errors.New("not in a git repository")

	// ErrNoUpstream indicates the goal needs an upstream and none is set.
	ErrNoUpstream = errors.New("no upstream configured")
)
