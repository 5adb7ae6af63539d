// Package observe reconstructs the abstract repository state from live
// tool output: machine-readable status, in-progress operation probes, a
// non-destructive merge preview, and conflict marker scans. Observation
// never mutates the repository.
package observe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danieljhkim/gitmend/internal/clock"
	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/state"
)

// fetchFreshness is how recently FETCH_HEAD must have been touched for
// remote refs to count as fresh.
const fetchFreshness = 5 * time.Minute

// Observer produces RepoState values from a live repository.
type Observer struct {
	git      gitx.Runner
	repoPath string
	clock    clock.Clock
}

// New creates an Observer over the repository at repoPath. The runner
// must be a real (non-simulating) one: observation depends on ground
// truth.
func New(git gitx.Runner, repoPath string, clk clock.Clock) *Observer {
	return &Observer{git: git, repoPath: repoPath, clock: clk}
}

// Observe builds a complete RepoState or fails with *ObservationError.
func (o *Observer) Observe(ctx context.Context) (state.RepoState, error) {
	s := state.RepoState{
		RepoPath:   o.repoPath,
		Tests:      state.TestsUnknown,
		ObservedAt: o.clock.Now(),
	}

	status, err := o.run(ctx, "status", "status", "--porcelain=v2", "--branch")
	if err != nil {
		return state.RepoState{}, err
	}
	parsed, perr := parseStatus(status.Stdout)
	if perr != nil {
		return state.RepoState{}, &ObservationError{Op: "status", Output: status.Stdout, Err: perr}
	}
	s.Ref = parsed.ref
	s.Ahead = parsed.ahead
	s.Behind = parsed.behind
	s.WorktreeClean = parsed.clean
	s.StagedChanges = parsed.staged
	s.Unpushed = parsed.ahead > 0

	s.RebaseInProgress, err = o.refExists(ctx, "REBASE_HEAD")
	if err != nil {
		return state.RepoState{}, err
	}
	s.MergeInProgress, err = o.refExists(ctx, "MERGE_HEAD")
	if err != nil {
		return state.RepoState{}, err
	}

	stash, err := o.run(ctx, "stash list", "stash", "list")
	if err != nil {
		return state.RepoState{}, err
	}
	s.StashCount = countLines(stash.Stdout)

	s.FreshlyFetched = o.fetchedRecently(ctx)

	for _, path := range parsed.conflicted {
		s.Conflicts = append(s.Conflicts, o.inspectConflict(path))
	}

	if preview, err := o.previewMerge(ctx, s); err != nil {
		return state.RepoState{}, err
	} else {
		s.PreviewConflicts = preview
	}

	return s, nil
}

// run executes a read-only git command, converting both invocation
// failures and non-zero exits into observation failures.
func (o *Observer) run(ctx context.Context, op string, args ...string) (gitx.Result, error) {
	result, err := o.git.Run(ctx, "git", args...)
	if err != nil {
		return gitx.Result{}, &ObservationError{Op: op, Err: err}
	}
	if result.ExitCode != 0 {
		return gitx.Result{}, &ObservationError{Op: op, Output: result.Stdout + result.Stderr}
	}
	return result, nil
}

// refExists probes a symbolic operation ref such as REBASE_HEAD. A
// non-zero exit means absent, not failure.
func (o *Observer) refExists(ctx context.Context, ref string) (bool, error) {
	result, err := o.git.Run(ctx, "git", "rev-parse", "--verify", "--quiet", ref)
	if err != nil {
		return false, &ObservationError{Op: "rev-parse " + ref, Err: err}
	}
	return result.ExitCode == 0, nil
}

// fetchedRecently reports whether FETCH_HEAD was updated within the
// freshness window. Missing FETCH_HEAD simply means not fresh.
func (o *Observer) fetchedRecently(ctx context.Context) bool {
	result, err := o.git.Run(ctx, "git", "rev-parse", "--git-dir")
	if err != nil || result.ExitCode != 0 {
		return false
	}
	gitDir := strings.TrimSpace(result.Stdout)
	if gitDir == "" {
		return false
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(o.repoPath, gitDir)
	}
	info, err := os.Stat(filepath.Join(gitDir, "FETCH_HEAD"))
	if err != nil {
		return false
	}
	return o.clock.Now().Sub(info.ModTime()) < fetchFreshness
}

// inspectConflict reads the conflicted file and derives hunk count,
// triviality, and classification. Unreadable content is treated as a
// binary conflict needing judgement.
func (o *Observer) inspectConflict(path string) state.Conflict {
	content, err := os.ReadFile(filepath.Join(o.repoPath, path))
	if err != nil {
		return state.Conflict{Path: path, Type: state.ConflictBinary, Hunks: 1}
	}
	ctype := ClassifyPath(path, content)
	if ctype == state.ConflictBinary {
		return state.Conflict{Path: path, Type: ctype, Hunks: 1}
	}
	summary := ScanMarkers(content)
	conflict := state.Conflict{
		Path:       path,
		Type:       ctype,
		Hunks:      summary.Hunks,
		Triviality: summary.Triviality(),
	}
	if conflict.Hunks == 0 {
		// Markers absent: likely a modify/delete or already-edited file.
		conflict.Hunks = 1
	}
	if summary.Triviality() >= 1.0 {
		conflict.Hint = summary.PreferredSide
	}
	return conflict
}

// previewMerge runs a dry merge against the upstream, producing only an
// ephemeral tree, to predict conflicts before any real rebase is
// attempted.
func (o *Observer) previewMerge(ctx context.Context, s state.RepoState) ([]state.Conflict, error) {
	if s.Ref.Upstream == "" || s.Behind == 0 || len(s.Conflicts) > 0 || s.OperationInProgress() {
		return nil, nil
	}

	result, err := o.git.Run(ctx, "git",
		"merge-tree", "--write-tree", "--name-only", "--no-messages",
		"HEAD", s.Ref.Upstream)
	if err != nil {
		return nil, &ObservationError{Op: "merge preview", Err: err}
	}
	switch result.ExitCode {
	case 0:
		return nil, nil
	case 1:
		return parsePreview(result.Stdout), nil
	default:
		return nil, &ObservationError{Op: "merge preview", Output: result.Stdout + result.Stderr}
	}
}

// parsePreview reads merge-tree --name-only output: the first line is the
// written tree OID, the remaining non-empty lines are conflicted paths.
func parsePreview(output string) []state.Conflict {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	var conflicts []state.Conflict
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		path := strings.TrimSpace(line)
		conflicts = append(conflicts, state.Conflict{
			Path:  path,
			Type:  ClassifyPath(path, nil),
			Hunks: 1,
		})
	}
	return conflicts
}

func countLines(s string) int {
	count := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
