package state

import "testing"

func TestGoalSpecValidate(t *testing.T) {
	if err := (GoalSpec{Mode: GoalResolveOnly}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (GoalSpec{Mode: "merge-everything"}).Validate(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestGoalSpecSatisfied(t *testing.T) {
	clean := RepoState{WorktreeClean: true, Tests: TestsUnknown}

	tests := []struct {
		name  string
		goal  GoalSpec
		state RepoState
		want  bool
	}{
		{
			name:  "resolve-only on clean state",
			goal:  GoalSpec{Mode: GoalResolveOnly},
			state: clean,
			want:  true,
		},
		{
			name: "resolve-only with conflicts",
			goal: GoalSpec{Mode: GoalResolveOnly},
			state: RepoState{
				Conflicts: []Conflict{{Path: "a.txt", Hunks: 1}},
			},
			want: false,
		},
		{
			name:  "resolve-only with dirty tree",
			goal:  GoalSpec{Mode: GoalResolveOnly},
			state: RepoState{},
			want:  false,
		},
		{
			name:  "resolve-only ignores divergence",
			goal:  GoalSpec{Mode: GoalResolveOnly},
			state: RepoState{WorktreeClean: true, Behind: 5, Ahead: 2, Unpushed: true},
			want:  true,
		},
		{
			name:  "rebase goal blocked by behind",
			goal:  GoalSpec{Mode: GoalRebaseToUpstream},
			state: RepoState{WorktreeClean: true, Behind: 1},
			want:  false,
		},
		{
			name:  "rebase goal ignores ahead",
			goal:  GoalSpec{Mode: GoalRebaseToUpstream},
			state: RepoState{WorktreeClean: true, Ahead: 3, Unpushed: true},
			want:  true,
		},
		{
			name:  "push goal blocked by unpushed commits",
			goal:  GoalSpec{Mode: GoalPushWithLease},
			state: RepoState{WorktreeClean: true, Ahead: 3, Unpushed: true},
			want:  false,
		},
		{
			name:  "push goal satisfied once published",
			goal:  GoalSpec{Mode: GoalPushWithLease},
			state: clean,
			want:  true,
		},
		{
			name:  "require tests blocks unknown",
			goal:  GoalSpec{Mode: GoalResolveOnly, RequireTests: true},
			state: clean,
			want:  false,
		},
		{
			name:  "require tests accepts pass",
			goal:  GoalSpec{Mode: GoalResolveOnly, RequireTests: true},
			state: RepoState{WorktreeClean: true, Tests: TestsPass},
			want:  true,
		},
		{
			name:  "lease push flag promotes resolve-only",
			goal:  GoalSpec{Mode: GoalResolveOnly, RequireLeasePush: true},
			state: RepoState{WorktreeClean: true, Ahead: 1, Unpushed: true},
			want:  false,
		},
		{
			name:  "operation in progress never satisfies",
			goal:  GoalSpec{Mode: GoalResolveOnly},
			state: RepoState{WorktreeClean: true, RebaseInProgress: true},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.goal.Satisfied(tt.state); got != tt.want {
				t.Errorf("Satisfied() = %v, want %v", got, tt.want)
			}
		})
	}
}
