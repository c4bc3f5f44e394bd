package cli

import (
	"errors"
	"fmt"

	"streamkit/internal/auth"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates a broadcaster login is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the login flow failed.
	ExitCodeAuthFailed = 3
	// ExitCodeSetupRequired indicates client credentials are not configured.
	ExitCodeSetupRequired = 4
)

// SetupRequiredError indicates the client credentials could not be resolved.
type SetupRequiredError struct {
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *SetupRequiredError) Error() string {
	return `failed to initiate login, check credential configuration

Set TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET (env mode), or configure
credentials.mode in ~/.config/streamkit/config.yaml.`
}

// Unwrap returns the underlying error.
func (e *SetupRequiredError) Unwrap() error {
	return e.Reason
}

// AuthRequiredError indicates the command needs a broadcaster login.
type AuthRequiredError struct {
	// Reason says what needed the login.
	Reason string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Login required: %s

To log in, run:
  streamkit login`, e.Reason)
}

// AuthFailedError indicates the login flow failed.
type AuthFailedError struct {
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Login failed: %v

To retry, run:
  streamkit login`, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// ExitCode determines the exit code for an error returned by a command.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var setupRequired *SetupRequiredError
	if errors.As(err, &setupRequired) || errors.Is(err, auth.ErrCredentialsMissing) {
		return ExitCodeSetupRequired
	}

	var authRequired *AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authFailed *AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}
