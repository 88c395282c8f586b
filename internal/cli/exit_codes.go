package cli

import "github.com/ariel-frischer/rulesync/internal/cli/shared"

// Exit codes for the rulesync CLI.
// These codes support scripting and CI/CD integration.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = shared.ExitSuccess

	// ExitValidationFailed indicates the operation failed
	ExitValidationFailed = shared.ExitValidationFailed

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = shared.ExitInvalidArguments

	// ExitMissingDependencies indicates a missing workspace or prerequisite
	ExitMissingDependencies = shared.ExitMissingDependency
)

// Command group IDs, re-exported for commands in this package.
const (
	GroupGettingStarted = shared.GroupGettingStarted
	GroupRules          = shared.GroupRules
	GroupIgnore         = shared.GroupIgnore
	GroupAutomation     = shared.GroupAutomation
	GroupConfiguration  = shared.GroupConfiguration
)
