package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/gitmend/internal/engine"
	"github.com/danieljhkim/gitmend/internal/state"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Show the observed repository state",
	Long:  `Inspect the repository and display the state the planner would start from.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		result, err := eng.Observe(context.Background(), &engine.ObserveRequest{CWD: cwd})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		renderState(result.State)
		return nil
	},
}

func renderState(st state.RepoState) {
	PrintSection("Repository State")
	PrintLabelValue("Branch", st.Ref.Branch)
	PrintLabelValue("Upstream", orNone(st.Ref.Upstream))
	PrintLabelValue("Divergence", fmt.Sprintf("%d ahead, %d behind", st.Ahead, st.Behind))
	PrintLabelValue("Worktree", cleanliness(st))
	if st.RebaseInProgress {
		PrintLabelValue("In progress", "rebase")
	}
	if st.MergeInProgress {
		PrintLabelValue("In progress", "merge")
	}
	if st.StashCount > 0 {
		PrintLabelValue("Stashes", fmt.Sprintf("%d", st.StashCount))
	}
	PrintLabelValue("Risk", string(st.RiskLevel()))

	if len(st.Conflicts) > 0 {
		PrintSection("Conflicts")
		for _, c := range st.Conflicts {
			detail := fmt.Sprintf("%s (%s, %d hunks", c.Path, c.Type, c.Hunks)
			if c.Trivial() {
				detail += ", trivial"
			}
			detail += ")"
			PrintList([]string{detail}, 1)
		}
	}
	if len(st.PreviewConflicts) > 0 {
		PrintSection("Predicted Rebase Conflicts")
		for _, c := range st.PreviewConflicts {
			PrintList([]string{fmt.Sprintf("%s (%s)", c.Path, c.Type)}, 1)
		}
	}
	if len(st.Conflicts) == 0 && len(st.PreviewConflicts) == 0 {
		PrintEmptyState("no conflicts")
	}
}

func cleanliness(st state.RepoState) string {
	switch {
	case st.WorktreeClean && !st.StagedChanges:
		return "clean"
	case st.StagedChanges:
		return "staged changes"
	default:
		return "dirty"
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
