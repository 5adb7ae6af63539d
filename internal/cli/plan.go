package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/gitmend/internal/engine"
	"github.com/danieljhkim/gitmend/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a recovery plan without executing it",
	Long:  `Observe the repository and display the action sequence the planner would run.`,
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

		result, err := eng.Plan(context.Background(), &engine.PlanRequest{
			CWD:      cwd,
			GoalMode: goalMode,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		renderPlan(result.Plan)
		return nil
	},
}

func renderPlan(p *planner.Plan) {
	PrintSection("Plan")
	PrintLabelValue("Goal", p.Goal.Describe())
	if p.Empty() {
		PrintSuccess("goal already satisfied, no actions required")
		return
	}
	PrintLabelValue("Estimated cost", fmt.Sprintf("%.2f", p.TotalCost))
	PrintNumberedList(p.ActionIDs(), 1)
	for _, note := range p.Notes {
		PrintEmptyState(note)
	}
}
