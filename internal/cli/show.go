package cli

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/spf13/cobra"
)

var showPath bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the instructions document",
	Long: `Print the instructions document.

A missing or blank document is first materialized from the default template.
When the document cannot be read the default template is printed and a
warning goes to stderr; the command still succeeds.`,
	Example: `  # Print the current rules
  rulesync show

  # Print only the document path
  rulesync show --path`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRuntimeEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if showPath {
			fmt.Fprintln(cmd.OutOrStdout(), env.store.Path())
			return nil
		}

		text, err := env.store.Read()
		if err != nil {
			if !isFallback(err) {
				return err
			}
			output.PrintWarning(cmd.ErrOrStderr(), err.Error())
		}

		fmt.Fprint(cmd.OutOrStdout(), text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	showCmd.GroupID = GroupRules
	showCmd.Flags().BoolVar(&showPath, "path", false, "Print the document path instead of its content")
	rootCmd.AddCommand(showCmd)
}
