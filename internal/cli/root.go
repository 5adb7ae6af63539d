package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	repoDir    string
	configPath string
	goalMode   string

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// rootCmd is the root command for gitmend.
var rootCmd = &cobra.Command{
	Use:     "gitmend",
	Version: "dev",
	Short:   "Goal-directed git repository recovery",
	Long: `gitmend observes a broken or diverged git repository, plans the cheapest
safe action sequence toward a goal (resolved, rebased, or pushed), and
executes it step by step with re-observation and bounded replanning.

Runs are simulated by default; pass --confirm to mutate the repository.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// customHelpFunc returns a custom help function that colors group titles
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")

		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Additional Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

func init() {
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", "", "Repository directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a gitmend config file")
	rootCmd.PersistentFlags().StringVar(&goalMode, "goal", "", "Goal override (resolve-only, rebase-to-upstream, push-with-lease)")

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "recovery",
		Title: "Recovery Loop:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspection",
		Title: "Inspection:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	// CLI & Tooling commands
	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the gitmend CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Root().Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	completionCmd := &cobra.Command{
		Use:     "completion",
		Short:   "Generate the autocompletion script for the specified shell",
		GroupID: "cli-tooling",
		Long: `Generate the autocompletion script for gitmend for the specified shell.
See each sub-command's help for details on how to use the generated script.`,
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "bash",
		Short:                 "Generate the autocompletion script for bash",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenBashCompletion(os.Stdout)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "zsh",
		Short:                 "Generate the autocompletion script for zsh",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenZshCompletion(os.Stdout)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "fish",
		Short:                 "Generate the autocompletion script for fish",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenFishCompletion(os.Stdout, true)
		},
	})
	rootCmd.AddCommand(completionCmd)

	// Recovery Loop commands
	runCmd.GroupID = "recovery"
	rootCmd.AddCommand(runCmd)

	// Inspection commands
	observeCmd.GroupID = "inspection"
	planCmd.GroupID = "inspection"
	explainCmd.GroupID = "inspection"
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(explainCmd)

	// Advisory commands
	llmCmd.GroupID = "cli-tooling"
	rootCmd.AddCommand(llmCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
