package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ariel-frischer/rulesync/internal/build"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/rulesync"

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for rulesync",
	Example: `  # Show version info
  rulesync version

  # Plain output (for scripts)
  rulesync version --plain`,
	Args: argsWithUsage(cobra.NoArgs),
	Run: func(cmd *cobra.Command, args []string) {
		if versionPlain {
			printPlainVersion(cmd.OutOrStdout())
			return
		}
		printPrettyVersion(cmd.OutOrStdout())
	},
}

func init() {
	versionCmd.GroupID = GroupGettingStarted
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(out io.Writer) {
	fmt.Fprintf(out, "rulesync %s\n", build.Version)
	fmt.Fprintf(out, "commit: %s\n", build.Commit)
	fmt.Fprintf(out, "built: %s\n", build.BuildDate)
	fmt.Fprintf(out, "go: %s\n", runtime.Version())
	fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printPrettyVersion prints a styled version block
func printPrettyVersion(out io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintln(out)
	if build.IsDevBuild() {
		fmt.Fprintf(out, "  %s %s %s\n", cyan("rulesync"), build.Version, dim("(development build)"))
	} else {
		fmt.Fprintf(out, "  %s %s\n", cyan("rulesync"), build.Version)
	}
	fmt.Fprintln(out, "  "+dim("Instructions document sync for AI coding assistants"))
	fmt.Fprintln(out, "  "+dim(strings.Repeat("─", 44)))

	output.PrintField(out, "Commit", truncateCommit(build.Commit))
	output.PrintField(out, "Built", build.BuildDate)
	output.PrintField(out, "Go", runtime.Version())
	output.PrintField(out, "Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
	output.PrintField(out, "Source", SourceURL)
	fmt.Fprintln(out)
}

// truncateCommit shortens commit hash if it's too long
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
