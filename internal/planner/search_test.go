package planner

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/state"
)

func newSearch(cfg config.Config) *Search {
	return NewSearch(catalog.New(cfg), cfg.Weights)
}

func TestPlanGoalAlreadySatisfied(t *testing.T) {
	cfg := config.Default()
	s := state.RepoState{
		RepoPath:      "/repo",
		Ref:           state.RefInfo{Branch: "main", Upstream: "origin/main"},
		WorktreeClean: true,
		Tests:         state.TestsUnknown,
	}

	plan, err := newSearch(cfg).Plan(s, state.GoalSpec{Mode: state.GoalRebaseToUpstream})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if !plan.Empty() {
		t.Errorf("plan = %v, want empty", plan.ActionIDs())
	}
	if len(plan.Notes) == 0 || !strings.Contains(plan.Notes[0], "already satisfied") {
		t.Errorf("Notes = %v", plan.Notes)
	}
}

func TestPlanRuledLockfileConflict(t *testing.T) {
	cfg := config.Default()
	cfg.StrategyRules = []config.StrategyRule{{Pattern: "package-lock.json", Resolution: "theirs"}}

	s := state.RepoState{
		RepoPath: "/repo",
		Ref:      state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Conflicts: []state.Conflict{
			{Path: "package-lock.json", Type: state.ConflictLockfile, Hunks: 1, Triviality: 1.0, Hint: state.ResolveTheirs},
		},
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
	}

	plan, err := newSearch(cfg).Plan(s, state.GoalSpec{Mode: state.GoalResolveOnly})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	want := []string{"resolve-path(path=package-lock.json,resolution=theirs)"}
	if got := plan.ActionIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("plan = %v, want %v (the rule outranks trivial resolution)", got, want)
	}
	if plan.TotalCost != cfg.Costs.ResolvePath {
		t.Errorf("TotalCost = %v, want %v", plan.TotalCost, cfg.Costs.ResolvePath)
	}
}

func TestPlanSingleRebaseForCleanDivergence(t *testing.T) {
	cfg := config.Default()
	s := state.RepoState{
		RepoPath:       "/repo",
		Ref:            state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Ahead:          3,
		Behind:         5,
		WorktreeClean:  true,
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
		Unpushed:       true,
	}

	plan, err := newSearch(cfg).Plan(s, state.GoalSpec{Mode: state.GoalRebaseToUpstream})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	if got := plan.ActionIDs(); !reflect.DeepEqual(got, []string{"rebase-onto-upstream"}) {
		t.Fatalf("plan = %v, want a single rebase", got)
	}
	// Base 5.0 plus the staleness surcharge 0.25 · (0.2 · 5).
	if plan.TotalCost != 5.25 {
		t.Errorf("TotalCost = %v, want 5.25", plan.TotalCost)
	}
	if plan.Steps[0].Predicted.Behind != 0 {
		t.Errorf("predicted state still behind: %+v", plan.Steps[0].Predicted)
	}
}

func TestPlanTestsRunAfterResolutionBeforePush(t *testing.T) {
	cfg := config.Default()
	cfg.TestCommand = "go test ./..."

	s := state.RepoState{
		RepoPath: "/repo",
		Ref:      state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Ahead:    2,
		Conflicts: []state.Conflict{
			{Path: "src/app.go", Type: state.ConflictText, Hunks: 1, Hint: state.ResolveOurs},
		},
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
		Unpushed:       true,
	}
	goal := state.GoalSpec{Mode: state.GoalPushWithLease, RequireTests: true}

	plan, err := newSearch(cfg).Plan(s, goal)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	want := []string{
		"resolve-path(path=src/app.go,resolution=ours)",
		"run-tests",
		"push-with-lease",
	}
	if got := plan.ActionIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("plan = %v, want %v", got, want)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	cfg := config.Default()
	s := state.RepoState{
		RepoPath: "/repo",
		Ref:      state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Conflicts: []state.Conflict{
			{Path: "b.txt", Type: state.ConflictText, Hunks: 1, Hint: state.ResolveOurs},
			{Path: "a.txt", Type: state.ConflictText, Hunks: 1, Hint: state.ResolveOurs},
		},
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
	}
	goal := state.GoalSpec{Mode: state.GoalResolveOnly}

	first, err := newSearch(cfg).Plan(s, goal)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := newSearch(cfg).Plan(s, goal)
		if err != nil {
			t.Fatalf("Plan() error on rerun: %v", err)
		}
		if !reflect.DeepEqual(first.ActionIDs(), again.ActionIDs()) {
			t.Fatalf("plans differ between runs:\n%v\n%v", first.ActionIDs(), again.ActionIDs())
		}
	}

	// Equal-cost instances break ties lexicographically by ID.
	if !strings.Contains(first.ActionIDs()[0], "a.txt") {
		t.Errorf("first step = %s, want the lexicographically smaller path", first.ActionIDs()[0])
	}
}

func TestPlanUnreachableGoal(t *testing.T) {
	cfg := config.Default()
	s := state.RepoState{
		RepoPath:       "/repo",
		Ref:            state.RefInfo{Branch: "main"}, // no upstream: rebase can never apply
		Behind:         3,
		WorktreeClean:  true,
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
	}

	_, err := newSearch(cfg).Plan(s, state.GoalSpec{Mode: state.GoalRebaseToUpstream})

	var perr *PlanningError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PlanningError", err)
	}
	if perr.BestState.RepoPath != "/repo" {
		t.Errorf("BestState not carried: %+v", perr.BestState)
	}
}

func TestPlanExpansionBound(t *testing.T) {
	cfg := config.Default()
	search := newSearch(cfg)
	search.MaxExpansions = 0

	s := state.RepoState{
		RepoPath:       "/repo",
		Ref:            state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Behind:         2,
		WorktreeClean:  true,
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
	}

	_, err := search.Plan(s, state.GoalSpec{Mode: state.GoalRebaseToUpstream})
	var perr *PlanningError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PlanningError at the expansion bound", err)
	}
	if perr.Expanded != 0 {
		t.Errorf("Expanded = %d, want 0", perr.Expanded)
	}
}

func TestPlanRetainsBoundedAlternatives(t *testing.T) {
	cfg := config.Default()
	s := state.RepoState{
		RepoPath: "/repo",
		Ref:      state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Tests:    state.TestsUnknown,
	}

	plan, err := newSearch(cfg).Plan(s, state.GoalSpec{Mode: state.GoalResolveOnly})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(plan.Steps) == 0 {
		t.Fatal("expected at least one step for a dirty tree")
	}

	step := plan.Steps[len(plan.Steps)-1]
	if step.Action.Name != catalog.ActionStash {
		t.Fatalf("final step = %s, want stash", step.Action.ID())
	}
	if len(step.Alternatives) > DefaultMaxAlternatives {
		t.Errorf("alternatives = %d, want at most %d", len(step.Alternatives), DefaultMaxAlternatives)
	}
	for _, alt := range step.Alternatives {
		if alt.Action.ID() == step.Action.ID() {
			t.Error("the chosen action must not appear among its own alternatives")
		}
		if alt.Priority < step.Priority {
			t.Errorf("alternative %s priority %v beats the chosen %v",
				alt.Action.ID(), alt.Priority, step.Priority)
		}
	}
}
