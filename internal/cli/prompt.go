package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminalFunc is a function variable for terminal detection, allowing test mocking.
var isTerminalFunc = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptYesNo asks question on the command's output and reads the answer
// from its input. Anything other than y/yes is a no.
func promptYesNo(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	reader := bufio.NewReader(cmd.InOrStdin())
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))

	return answer == "y" || answer == "yes"
}

// BoolFlagPair represents a pair of mutually exclusive boolean flags (--flag and --no-flag).
type BoolFlagPair struct {
	Positive string // Name of the enabling flag (e.g., "gitignore")
	Negative string // Name of the disabling flag (e.g., "no-gitignore")
}

// resolveBoolFlag resolves the value of a boolean flag pair.
// Returns:
//   - nil if neither flag was explicitly set (the config value applies)
//   - true if the positive flag was set
//   - false if the negative flag was set
func resolveBoolFlag(cmd *cobra.Command, positive, negative string) *bool {
	flags := cmd.Flags()

	positiveChanged := flags.Changed(positive)
	negativeChanged := flags.Changed(negative)

	if !positiveChanged && !negativeChanged {
		return nil
	}

	if positiveChanged {
		val := true
		return &val
	}

	val := false
	return &val
}

// checkMutuallyExclusiveFlags validates that no flag pair has both flags set.
func checkMutuallyExclusiveFlags(cmd *cobra.Command, pairs []BoolFlagPair) error {
	flags := cmd.Flags()

	for _, pair := range pairs {
		if flags.Changed(pair.Positive) && flags.Changed(pair.Negative) {
			return clierrors.InvalidFlagCombination(
				fmt.Sprintf("--%s and --%s", pair.Positive, pair.Negative),
				fmt.Sprintf("flags --%s and --%s are mutually exclusive", pair.Positive, pair.Negative),
			)
		}
	}

	return nil
}

// argsWithUsage turns positional argument validation failures into argument
// errors that carry the command's usage line.
func argsWithUsage(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
		}
		return nil
	}
}
