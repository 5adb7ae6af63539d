package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/observe"
	"github.com/danieljhkim/gitmend/internal/state"
)

// commandsFor maps a planned action instance onto the concrete command
// sequence to issue. This is the execution side of the catalog: the
// declared effects predict, these commands realize.
func (e *Executor) commandsFor(inst catalog.Instance, current state.RepoState) ([][]string, error) {
	switch inst.Name {
	case catalog.ActionFetch:
		return [][]string{{"git", "fetch", "--all", "--prune"}}, nil

	case catalog.ActionStash:
		return [][]string{{"git", "stash", "push", "--include-untracked",
			"--message", "gitmend: parked before recovery"}}, nil

	case catalog.ActionResolveTrivial:
		var commands [][]string
		for _, path := range splitPaths(inst.Params["paths"]) {
			side := e.trivialSide(current, path)
			commands = append(commands,
				[]string{"git", "checkout", "--" + side, "--", path},
				[]string{"git", "add", "--", path},
			)
		}
		if len(commands) == 0 {
			return nil, fmt.Errorf("resolve-trivial: no paths resolved")
		}
		return commands, nil

	case catalog.ActionResolvePath:
		path := inst.Params["path"]
		resolution := inst.Params["resolution"]
		if path == "" || (resolution != string(state.ResolveOurs) && resolution != string(state.ResolveTheirs)) {
			return nil, fmt.Errorf("resolve-path: unusable parameters %s", inst.Params)
		}
		return [][]string{
			{"git", "checkout", "--" + resolution, "--", path},
			{"git", "add", "--", path},
		}, nil

	case catalog.ActionRebase:
		if current.Ref.Upstream == "" {
			return nil, fmt.Errorf("rebase: no upstream configured")
		}
		argv := []string{"git"}
		if e.cfg.EnableRerere {
			argv = append(argv, "-c", "rerere.enabled=true")
		}
		if e.cfg.ConflictStyle != "" {
			argv = append(argv, "-c", "merge.conflictStyle="+e.cfg.ConflictStyle)
		}
		argv = append(argv, "rebase", current.Ref.Upstream)
		return [][]string{argv}, nil

	case catalog.ActionContinueRebase:
		return [][]string{{"git", "-c", "core.editor=true", "rebase", "--continue"}}, nil

	case catalog.ActionAbortRebase:
		return [][]string{{"git", "rebase", "--abort"}}, nil

	case catalog.ActionContinueMerge:
		return [][]string{{"git", "-c", "core.editor=true", "merge", "--continue"}}, nil

	case catalog.ActionAbortMerge:
		return [][]string{{"git", "merge", "--abort"}}, nil

	case catalog.ActionRunTests:
		if e.cfg.TestCommand == "" {
			return nil, fmt.Errorf("run-tests: no test command configured")
		}
		return [][]string{{"sh", "-c", e.cfg.TestCommand}}, nil

	case catalog.ActionPushWithLease:
		return [][]string{{"git", "push", "--force-with-lease"}}, nil

	default:
		return nil, fmt.Errorf("unknown action %q", inst.Name)
	}
}

// splitPaths splits a NUL-joined path list. Paths may contain spaces;
// NUL is the delimiter because git forbids it in filenames.
func splitPaths(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, "\x00")
}

// trivialSide picks the side to keep for a trivially conflicted path: the
// superset side from a fresh marker scan, falling back to the observed
// hint, then to theirs.
func (e *Executor) trivialSide(current state.RepoState, path string) string {
	content, err := os.ReadFile(filepath.Join(current.RepoPath, path))
	if err == nil {
		summary := observe.ScanMarkers(content)
		if summary.PreferredSide == state.ResolveOurs || summary.PreferredSide == state.ResolveTheirs {
			return string(summary.PreferredSide)
		}
	}
	for _, conflict := range current.Conflicts {
		if conflict.Path == path &&
			(conflict.Hint == state.ResolveOurs || conflict.Hint == state.ResolveTheirs) {
			return string(conflict.Hint)
		}
	}
	return string(state.ResolveTheirs)
}
