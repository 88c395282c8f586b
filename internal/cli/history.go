package cli

import (
	"fmt"

	"github.com/ariel-frischer/rulesync/internal/state"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent rulesync actions",
	Long: `View a log of rulesync actions with timestamp, command, outcome and
workspace. Only the current workspace is shown unless --all is given.`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := state.DefaultPath()
		if err != nil {
			return err
		}
		return runHistoryWithStatePath(cmd, path)
	},
}

func init() {
	historyCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("all", "a", false, "Show entries for all workspaces")
	historyCmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().BoolP("clear", "c", false, "Clear all history")
}

// runHistoryWithStatePath runs the history command against a state file.
func runHistoryWithStatePath(cmd *cobra.Command, path string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	recorder := state.NewRecorder(path, nil)
	if clearFlag {
		if err := recorder.ClearHistory(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	s, err := recorder.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	filter := ""
	if !all {
		root, err := resolveRootForConfig()
		if err != nil {
			return err
		}
		filter = root
	}

	entries := s.Filter(filter, limit)
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		return nil
	}

	displayEntries(cmd, entries, all)
	return nil
}

// displayEntries formats and displays history entries.
func displayEntries(cmd *cobra.Command, entries []state.Entry, withWorkspace bool) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Timestamp.Local().Format("2006-01-02 15:04:05")

		outcome := entry.Action
		if outcome == "" {
			outcome = "-"
		}
		if entry.Error != "" {
			outcome = red("error: " + entry.Error)
		} else {
			outcome = green(outcome)
		}

		line := fmt.Sprintf("%s  %-14s  %s", cyan(timestamp), entry.Command, outcome)
		if withWorkspace {
			line += "  " + entry.Workspace
		}
		fmt.Fprintln(out, line)
	}
}
