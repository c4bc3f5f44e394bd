package auth

import "errors"

var (
	// ErrCredentialsMissing means the credential source is not configured.
	// It is not retryable and surfaces to the user as "setup required".
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrUpstreamRejected means the token endpoint answered with a non-2xx status.
	ErrUpstreamRejected = errors.New("upstream rejected token request")

	// ErrPrivilegeInsufficient marks an expected 401/403 on a privileged endpoint
	// under a low-privilege token. Callers collapse it to an empty result.
	ErrPrivilegeInsufficient = errors.New("insufficient privilege")

	// ErrRefreshFailed means the stored refresh token was missing or rejected.
	// The stored session is cleared.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoCredentialsAvailable means neither tier could produce a token.
	ErrNoCredentialsAvailable = errors.New("no credentials available")
)
