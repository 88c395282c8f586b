// Package output provides terminal output formatting utilities for the rulesync CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSuccess prints a green checkmark followed by message.
// Uses cyan for the path argument when one is given.
func PrintSuccess(out io.Writer, message string, path ...string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	if len(path) > 0 {
		fmt.Fprintf(out, "%s %s %s\n", green("✓"), message, cyan(strings.Join(path, " ")))
		return
	}
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintSkipped prints a dim dash followed by message, for no-op outcomes.
func PrintSkipped(out io.Writer, message string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", dim("-"), dim(message))
}

// PrintWarning prints a yellow warning line. Callers pass stderr.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("Warning:"), message)
}

// PrintSection prints a bold section header followed by a thin rule.
func PrintSection(out io.Writer, title string) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	width := GetTerminalWidth()
	if width > 60 {
		width = 60
	}
	lineLen := width - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Fprintf(out, "%s %s\n", bold(title), dim(strings.Repeat("─", lineLen)))
}

// PrintField prints an aligned "label: value" pair indented under a section.
func PrintField(out io.Writer, label, value string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "  %s %s\n", dim(fmt.Sprintf("%-18s", label+":")), value)
}

// YesNo renders a boolean for human-readable output.
func YesNo(v bool) string {
	if v {
		return color.New(color.FgGreen).Sprint("yes")
	}
	return color.New(color.FgYellow).Sprint("no")
}

// Check renders a present/absent marker.
func Check(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint("✓")
	}
	return color.New(color.FgRed).Sprint("✗")
}
