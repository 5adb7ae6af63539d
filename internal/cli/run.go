package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/gitmend/internal/engine"
	"github.com/danieljhkim/gitmend/internal/executor"
	"github.com/danieljhkim/gitmend/internal/llm"
)

var (
	runConfirm   bool
	runLLMMode   string
	runLLMSafety string
	runLLMModel  string
	runMockLLM   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the recovery loop (simulated unless --confirm)",
	Long: `Observe, plan, and execute until the goal holds or the replan bound is hit.

Without --confirm the run is a simulation: every mutating command is
recorded instead of executed and the plan is walked over its own
predictions. With --confirm the repository is mutated, with a backup
ref created before the first mutating action.`,
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

		// Interrupts are honored between actions, never mid-mutation.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		result, err := eng.Run(ctx, &engine.RunRequest{
			CWD:       cwd,
			GoalMode:  goalMode,
			Confirm:   runConfirm,
			LLMMode:   runLLMMode,
			LLMSafety: runLLMSafety,
			LLMModel:  runLLMModel,
			MockLLM:   runMockLLM,
		})
		if result != nil && jsonOutput {
			if jerr := outputJSON(result); jerr != nil {
				return jerr
			}
			return err
		}
		if result != nil {
			renderRun(result)
		}
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&runConfirm, "confirm", false, "Execute real mutations instead of simulating")
	runCmd.Flags().StringVar(&runLLMMode, "llm-mode", "", "Advisory mode override (off, explain, suggest, auto)")
	runCmd.Flags().StringVar(&runLLMSafety, "llm-safety", "", "Advisory safety override (cautious, balanced, experimental)")
	runCmd.Flags().StringVar(&runLLMModel, "llm-model", "", "Advisory model override")
	runCmd.Flags().BoolVar(&runMockLLM, "llm-mock", false, "Skip advisory network calls")
}

func renderRun(result *engine.RunResult) {
	if result.Simulated {
		PrintWarning("simulation only; pass --confirm to mutate the repository")
	}
	run := result.Run
	if run == nil {
		return
	}

	if len(run.Trace) > 0 {
		PrintSection("Execution Trace")
		for _, entry := range run.Trace {
			line := fmt.Sprintf("%s [%s]", entry.Action, entry.Outcome)
			if entry.Detail != "" {
				line += ": " + entry.Detail
			}
			PrintList([]string{line}, 1)
			for _, command := range entry.Commands {
				PrintEmptyState("  " + command)
			}
		}
	}

	if result.Advisory != nil {
		renderAdvisory(result.Advisory)
	}

	PrintSection("Result")
	PrintLabelValue("Phase", string(run.Phase))
	PrintLabelValue("Goal", run.Goal.Describe())
	PrintLabelValue("State", run.FinalState.Summary())
	PrintLabelValue("Replans", fmt.Sprintf("%d", run.Replans))
	if run.BackupRef != "" {
		PrintLabelValue("Backup ref", run.BackupRef)
	}
	for _, failure := range run.Failures {
		PrintWarning(failure)
	}

	switch run.Phase {
	case executor.PhaseCompleted:
		PrintSuccess("goal reached: " + run.Goal.Describe())
	case executor.PhaseFailed:
		PrintError("run failed")
	}
}

func renderAdvisory(summary *llm.Summary) {
	PrintSection("Advisory")
	PrintLabelValue("Mode", string(summary.Mode))
	if summary.Model != "" {
		PrintLabelValue("Model", summary.Model)
	}
	if summary.Hint != nil {
		PrintLabelValue("Plan hint", fmt.Sprintf("%s %+.1f%%: %s",
			summary.Hint.Action, summary.Hint.CostAdjustmentPct, summary.Hint.Note))
	}
	for _, suggestion := range summary.Suggestions {
		line := fmt.Sprintf("%s: %s (%s)", suggestion.Path, suggestion.Resolution, suggestion.Confidence)
		if suggestion.Applied {
			line += " [applied]"
		}
		if suggestion.Err != "" {
			line += " error: " + suggestion.Err
		}
		PrintList([]string{line}, 1)
	}
	if summary.Draft != nil {
		PrintLabelValue("Draft", summary.Draft.Title)
	}
	if summary.Calls > 0 {
		PrintLabelValue("Spend", fmt.Sprintf("%d calls, %d tokens, $%.4f",
			summary.Calls, summary.Tokens, summary.CostUSD))
	}
	for _, errMsg := range summary.Errors {
		PrintWarning("advisory degraded: " + errMsg)
	}
}
