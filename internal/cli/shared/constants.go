// Package shared provides constants and types used across CLI subpackages.
package shared

import (
	"errors"
	"fmt"
)

// Command group IDs for the help output.
const (
	GroupGettingStarted = "getting-started"
	GroupRules          = "rules"
	GroupIgnore         = "ignore"
	GroupAutomation     = "automation"
	GroupConfiguration  = "configuration"
)

// Exit codes for the rulesync CLI.
const (
	// ExitSuccess indicates successful command execution.
	ExitSuccess = 0
	// ExitValidationFailed indicates the operation failed.
	ExitValidationFailed = 1
	// ExitInvalidArguments indicates invalid command arguments or flags.
	ExitInvalidArguments = 3
	// ExitMissingDependency indicates a missing workspace or other prerequisite.
	ExitMissingDependency = 4
)

// ExitError carries a process exit code once the error has been reported.
type ExitError struct {
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an ExitError for code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// ExitCode returns the exit code for err: 0 for nil, the carried code for an
// ExitError anywhere in the chain, and ExitValidationFailed otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitValidationFailed
}
