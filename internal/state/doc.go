// Package state persists per-user rulesync state across invocations.
//
// The state file (state.yml in the user config directory) records whether the
// one-time welcome message was shown, the last action taken per workspace, and
// a bounded history of sync-type actions. Failing to record state never fails
// a command; callers log the error and continue.
package state
