package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/gitmend/internal/engine"
)

var (
	doctorModel string
	doctorMock  bool
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Advisory subsystem commands",
	Long:  `Commands for the optional LLM advisory subsystem.`,
}

var llmDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check advisory readiness",
	Long:  `Verify credentials, client construction, and provider connectivity.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Doctor(context.Background(), &engine.DoctorRequest{
			LLMModel: doctorModel,
			MockLLM:  doctorMock,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result.Report)
		}

		PrintSection("Advisory Doctor")
		if result.Report.Model != "" {
			PrintLabelValue("Model", result.Report.Model)
		}
		for _, check := range result.Report.Checks {
			if check.OK {
				PrintSuccess(check.Name + ": " + check.Detail)
			} else {
				PrintError(check.Name + ": " + check.Detail)
			}
		}
		if result.Report.OK() {
			PrintSuccess("advisory subsystem is ready")
		} else {
			PrintWarning("advisory subsystem is not ready; runs degrade to the base loop")
		}
		return nil
	},
}

func init() {
	llmDoctorCmd.Flags().StringVar(&doctorModel, "model", "", "Advisory model override")
	llmDoctorCmd.Flags().BoolVar(&doctorMock, "mock", false, "Skip the provider round trip")
	llmCmd.AddCommand(llmDoctorCmd)
}
