package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/gitmend/internal/engine"
)

var explainRangeDiff bool

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain the plan: rationale, costs, and rejected alternatives",
	Long: `Compute a plan and show, per step, why the action was chosen, what it
costs, and which alternatives were rejected and by how much.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		result, err := eng.Explain(context.Background(), &engine.ExplainRequest{
			CWD:           cwd,
			GoalMode:      goalMode,
			WithRangeDiff: explainRangeDiff,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result.Report)
		}

		PrintSection("Explanation")
		for _, line := range result.Report.Render() {
			PrintInfo(line)
		}
		if result.Report.RangeDiff != "" {
			PrintSection("Range Diff")
			PrintInfo(result.Report.RangeDiff)
		}
		return nil
	},
}

func init() {
	explainCmd.Flags().BoolVar(&explainRangeDiff, "range-diff", false, "Include a git range-diff against the upstream")
}
