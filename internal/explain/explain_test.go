package explain

import (
	"context"
	"strings"
	"testing"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/planner"
	"github.com/danieljhkim/gitmend/internal/state"
)

func conflictedPlan(t *testing.T) *planner.Plan {
	t.Helper()
	cfg := config.Default()
	search := planner.NewSearch(catalog.New(cfg), cfg.Weights)

	s := state.RepoState{
		RepoPath: "/repo",
		Ref:      state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Conflicts: []state.Conflict{
			{Path: "a.txt", Type: state.ConflictText, Hunks: 1, Hint: state.ResolveOurs},
			{Path: "b.txt", Type: state.ConflictText, Hunks: 1, Hint: state.ResolveOurs},
		},
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
	}
	plan, err := search.Plan(s, state.GoalSpec{Mode: state.GoalResolveOnly})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	return plan
}

func TestBuildReport(t *testing.T) {
	plan := conflictedPlan(t)
	report := Build(plan)

	if report.Goal != "resolve-only" {
		t.Errorf("Goal = %q", report.Goal)
	}
	if len(report.Steps) != len(plan.Steps) {
		t.Fatalf("Steps = %d, want %d", len(report.Steps), len(plan.Steps))
	}

	first := report.Steps[0]
	if first.Rationale == "" {
		t.Error("step should carry the catalog rationale")
	}
	if len(first.Alternatives) == 0 {
		t.Fatal("the other conflicted path should appear as an alternative")
	}
	for _, alt := range first.Alternatives {
		if alt.CostDelta < 0 {
			t.Errorf("alternative %s has negative delta %v; it would have been chosen",
				alt.Action, alt.CostDelta)
		}
	}
}

func TestRenderIsReadable(t *testing.T) {
	report := Build(conflictedPlan(t))
	lines := report.Render()

	if len(lines) < 3 {
		t.Fatalf("Render() = %v", lines)
	}
	if !strings.Contains(lines[0], "resolve-only") {
		t.Errorf("first line = %q, want the goal", lines[0])
	}
	if !strings.HasPrefix(lines[2], "1. resolve-path") {
		t.Errorf("step line = %q", lines[2])
	}
}

func TestRangeDiffFailuresAreSilent(t *testing.T) {
	runner := gitx.NewScriptedRunner().
		Script("git range-diff origin/main...HEAD", gitx.Result{ExitCode: 128, Stderr: "fatal"})

	if got := RangeDiff(context.Background(), runner, "origin/main"); got != "" {
		t.Errorf("RangeDiff() = %q, want empty on failure", got)
	}
	if got := RangeDiff(context.Background(), runner, ""); got != "" {
		t.Errorf("RangeDiff() without upstream = %q, want empty", got)
	}
}

func TestRangeDiffTrims(t *testing.T) {
	runner := gitx.NewScriptedRunner().
		Script("git range-diff origin/main...HEAD", gitx.Result{Stdout: "1: abc = 1: def subject\n\n"})

	got := RangeDiff(context.Background(), runner, "origin/main")
	if got != "1: abc = 1: def subject" {
		t.Errorf("RangeDiff() = %q", got)
	}
}
