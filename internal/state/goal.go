package state

import "fmt"

// GoalMode selects the terminal condition a run drives toward.
type GoalMode string

const (
	// GoalResolveOnly requires a conflict-free repository with no
	// operation in progress and a clean worktree.
	GoalResolveOnly GoalMode = "resolve-only"

	// GoalRebaseToUpstream additionally requires the branch to contain
	// every upstream commit.
	GoalRebaseToUpstream GoalMode = "rebase-to-upstream"

	// GoalPushWithLease additionally requires local work to be published
	// with a lease-protected push.
	GoalPushWithLease GoalMode = "push-with-lease"
)

// GoalSpec is the immutable target condition for one run.
type GoalSpec struct {
	// Mode is the target mode.
	Mode GoalMode

	// RequireTests demands a passing test run in the goal state.
	RequireTests bool

	// RequireLeasePush demands publication even outside push mode.
	RequireLeasePush bool
}

// Validate reports an error for an unknown mode.
func (g GoalSpec) Validate() error {
	switch g.Mode {
	case GoalResolveOnly, GoalRebaseToUpstream, GoalPushWithLease:
		return nil
	default:
		return fmt.Errorf("unknown goal mode %q", g.Mode)
	}
}

// NeedsSync reports whether the goal requires the branch to be caught up
// with its upstream.
func (g GoalSpec) NeedsSync() bool {
	return g.Mode == GoalRebaseToUpstream || g.Mode == GoalPushWithLease || g.RequireLeasePush
}

// NeedsPush reports whether the goal requires local commits published.
func (g GoalSpec) NeedsPush() bool {
	return g.Mode == GoalPushWithLease || g.RequireLeasePush
}

// Satisfied is the goal predicate over a repository state.
func (g GoalSpec) Satisfied(s RepoState) bool {
	if len(s.Conflicts) > 0 || s.OperationInProgress() || !s.WorktreeClean {
		return false
	}
	if g.NeedsSync() && s.Behind > 0 {
		return false
	}
	if g.NeedsPush() && (s.Ahead > 0 || s.Unpushed) {
		return false
	}
	if g.RequireTests && s.Tests != TestsPass {
		return false
	}
	return true
}

// Describe renders the goal for reports.
func (g GoalSpec) Describe() string {
	desc := string(g.Mode)
	if g.RequireTests {
		desc += ", tests must pass"
	}
	if g.NeedsPush() && g.Mode != GoalPushWithLease {
		desc += ", lease push required"
	}
	return desc
}
