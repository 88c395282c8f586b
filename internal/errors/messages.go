package errors

import "fmt"

// Common error messages for the rulesync CLI.
// These templates keep wording and remediation consistent across commands.

// NoWorkspace creates an error when no workspace root could be resolved.
func NoWorkspace(path string) *CLIError {
	msg := "no workspace folder found"
	if path != "" {
		msg = fmt.Sprintf("workspace folder not found: %s", path)
	}
	return NewPrerequisiteError(
		msg,
		"Run rulesync from inside your project directory",
		"Or pass the project root explicitly: rulesync --workspace <dir> <command>",
		"Or set RULESYNC_WORKSPACE=<dir>",
	)
}

// InstructionsNotWritable creates an error when the instructions document cannot be written.
func InstructionsNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("failed to write instructions file %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure the .github/instructions directory is writable",
		"Retry with: rulesync sync",
	)
}

// IgnoreFileNotWritable creates an error when .gitignore cannot be updated.
func IgnoreFileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("failed to update %s", path),
		"Check file permissions: ls -la "+path,
		"Skip ignore file updates with: rulesync sync --no-gitignore",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load configuration",
		"Check the config file for YAML syntax errors",
		"Show the resolved config paths with: rulesync config path",
		"Remove the offending key to fall back to defaults",
	)
}

// InvalidReadErrorPolicy creates an error for an unknown on_read_error value.
func InvalidReadErrorPolicy(value string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("invalid on_read_error policy: %q", value),
		"Valid values: overwrite, preserve",
		"Example: RULESYNC_ON_READ_ERROR=preserve rulesync sync",
	)
}

// ResetNotConfirmed creates an error when reset is requested without confirmation
// in a non-interactive session.
func ResetNotConfirmed() *CLIError {
	return NewArgumentErrorWithUsage(
		"reset requires confirmation",
		"rulesync reset --yes",
		"Reset overwrites your custom rules with the default template",
		"Pass --yes (or set RULESYNC_YES=1) to confirm non-interactively",
	)
}

// EditorNotConfigured creates an error when neither $VISUAL nor $EDITOR is set.
func EditorNotConfigured(path string) *CLIError {
	return NewPrerequisiteError(
		"no editor configured",
		"Set the EDITOR environment variable (e.g., export EDITOR=vim)",
		"Or open the file directly: "+path,
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'rulesync <command> --help' to see valid options",
	)
}

// FileNotReadable creates an error when an input file cannot be read.
func FileNotReadable(path string, err error) *CLIError {
	return WrapWithMessage(err, Argument,
		fmt.Sprintf("cannot read input file %s", path),
		"Check that the file exists: ls -la "+path,
		"Or pipe content on stdin: rulesync save - < rules.md",
	)
}
