// Package state defines the immutable value model describing an observed
// repository condition. A RepoState is the planning node: the planner's
// search graph, the executor's predicted-vs-observed comparison, and the
// reporting boundary all operate on structural equality of these values.
package state

import (
	"fmt"
	"strings"
	"time"
)

// ConflictType classifies the content of a conflicted path.
type ConflictType string

const (
	// ConflictText is a plain text conflict.
	ConflictText ConflictType = "text"

	// ConflictStructured is structured data (JSON, YAML, TOML).
	ConflictStructured ConflictType = "structured"

	// ConflictLockfile is a generated lockfile.
	ConflictLockfile ConflictType = "lockfile"

	// ConflictBinary is binary content with no parseable markers.
	ConflictBinary ConflictType = "binary"
)

// Resolution names a conflict resolution strategy.
type Resolution string

const (
	ResolveOurs        Resolution = "ours"
	ResolveTheirs      Resolution = "theirs"
	ResolveManual      Resolution = "manual"
	ResolveMergeDriver Resolution = "merge-driver"
)

// TestResult is the tri-state outcome of the last test run.
type TestResult string

const (
	TestsUnknown TestResult = "unknown"
	TestsPass    TestResult = "pass"
	TestsFail    TestResult = "fail"
)

// Risk classifies how dangerous further automation is from a state.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// RefInfo identifies the checked out branch and its tracking target.
// Produced fresh by each observation.
type RefInfo struct {
	// Branch is the checked out branch name ("" when detached).
	Branch string

	// Upstream is the tracking branch ("" when none is configured).
	Upstream string

	// Commit is the current HEAD commit identifier.
	Commit string
}

// Conflict describes one conflicted path.
type Conflict struct {
	// Path is the repository-relative path.
	Path string

	// Type is the content classification.
	Type ConflictType

	// Hunks is the number of conflict hunks found in the file.
	Hunks int

	// Triviality is the fraction of hunks with no semantic divergence
	// (one side a strict superset of the other, or whitespace-only).
	Triviality float64

	// Hint is an optional preferred resolution ("" when none).
	Hint Resolution
}

// Trivial reports whether every hunk of the conflict is trivially
// resolvable.
func (c Conflict) Trivial() bool {
	return c.Triviality >= 1.0
}

// Difficulty scores the conflict between 0 (trivial) and roughly the hunk
// count (every hunk needs judgement).
func (c Conflict) Difficulty() float64 {
	if c.Hunks == 0 {
		return 1.0
	}
	return float64(c.Hunks) * (1.0 - c.Triviality)
}

// RepoState is the observed condition of a repository. Values are never
// mutated after construction: effect functions and the observer always
// build new values via Clone.
type RepoState struct {
	// RepoPath is the absolute path of the repository worktree.
	RepoPath string

	// Ref is the branch position at observation time.
	Ref RefInfo

	// Ahead is the number of local commits not on the upstream.
	Ahead int

	// Behind is the number of upstream commits not reachable locally.
	Behind int

	// WorktreeClean reports no unstaged or untracked changes.
	WorktreeClean bool

	// StagedChanges reports staged but uncommitted changes.
	StagedChanges bool

	// RebaseInProgress reports a rebase stopped midway.
	RebaseInProgress bool

	// MergeInProgress reports an uncommitted merge.
	MergeInProgress bool

	// StashCount is the number of stash entries.
	StashCount int

	// Conflicts is the ordered set of currently conflicted paths.
	Conflicts []Conflict

	// PreviewConflicts is the hypothetical conflict set a merge preview
	// predicts for integrating the upstream. Empty when the preview ran
	// clean or was not applicable.
	PreviewConflicts []Conflict

	// FreshlyFetched reports that remote refs were updated recently.
	FreshlyFetched bool

	// Tests is the last known test outcome.
	Tests TestResult

	// Unpushed reports local commits missing from the upstream.
	Unpushed bool

	// ObservedAt is the observation timestamp. Excluded from Key so that
	// re-observations of an unchanged repository compare equal.
	ObservedAt time.Time
}

// Clone returns a deep copy safe to modify before publishing.
func (s RepoState) Clone() RepoState {
	out := s
	out.Conflicts = append([]Conflict(nil), s.Conflicts...)
	out.PreviewConflicts = append([]Conflict(nil), s.PreviewConflicts...)
	return out
}

// Key returns the structural identity of the state. Two states with equal
// keys are the same planning node. All fields participate except
// ObservedAt.
func (s RepoState) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s|%d|%d|%t|%t|%t|%t|%d|%t|%s|%t|",
		s.RepoPath, s.Ref.Branch, s.Ref.Upstream, s.Ref.Commit,
		s.Ahead, s.Behind, s.WorktreeClean, s.StagedChanges,
		s.RebaseInProgress, s.MergeInProgress, s.StashCount,
		s.FreshlyFetched, s.Tests, s.Unpushed)
	writeConflicts(&b, s.Conflicts)
	b.WriteString("~")
	writeConflicts(&b, s.PreviewConflicts)
	return b.String()
}

func writeConflicts(b *strings.Builder, conflicts []Conflict) {
	for _, c := range conflicts {
		// The path is quoted so separator bytes inside a filename
		// cannot collide with the record delimiters.
		fmt.Fprintf(b, "%q:%s:%d:%.3f:%s;", c.Path, c.Type, c.Hunks, c.Triviality, c.Hint)
	}
}

// Equal reports structural equality (same Key).
func (s RepoState) Equal(other RepoState) bool {
	return s.Key() == other.Key()
}

// OperationInProgress reports a rebase or merge stopped midway.
func (s RepoState) OperationInProgress() bool {
	return s.RebaseInProgress || s.MergeInProgress
}

// ConflictDifficulty aggregates the difficulty of all current conflicts.
func (s RepoState) ConflictDifficulty() float64 {
	total := 0.0
	for _, c := range s.Conflicts {
		total += c.Difficulty()
	}
	return total
}

// Staleness scores how far the local view lags the remote: one unit when
// remote refs have not been fetched recently, plus a capped per-commit
// term for the tracked divergence.
func (s RepoState) Staleness() float64 {
	score := 0.0
	if !s.FreshlyFetched {
		score += 1.0
	}
	behind := s.Behind
	if behind > 10 {
		behind = 10
	}
	return score + 0.2*float64(behind)
}

// RiskLevel derives a coarse risk classification for display and for the
// cost model's penalty term.
func (s RepoState) RiskLevel() Risk {
	difficulty := s.ConflictDifficulty()
	switch {
	case s.OperationInProgress() && difficulty > 2.0:
		return RiskHigh
	case s.OperationInProgress() || difficulty > 0:
		return RiskMedium
	case !s.WorktreeClean && s.Behind > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Summary renders a one-line human description of the state.
func (s RepoState) Summary() string {
	parts := []string{fmt.Sprintf("branch %s", s.Ref.Branch)}
	if s.Ahead > 0 || s.Behind > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d / behind %d", s.Ahead, s.Behind))
	}
	if len(s.Conflicts) > 0 {
		parts = append(parts, fmt.Sprintf("%d conflicted", len(s.Conflicts)))
	}
	if s.RebaseInProgress {
		parts = append(parts, "rebase in progress")
	}
	if s.MergeInProgress {
		parts = append(parts, "merge in progress")
	}
	if !s.WorktreeClean {
		parts = append(parts, "dirty tree")
	}
	return strings.Join(parts, ", ")
}
