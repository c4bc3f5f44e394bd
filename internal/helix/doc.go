// Package helix is a client for the platform REST API that manages its own tokens.
//
// Client lazily asks the auth Selector for a token on first use and keeps that
// selection for the rest of its epoch. A 401 ends the epoch that produced it and
// the request is retried exactly once with a fresh selection. CallNoRetry is for
// privileged endpoints that are expected to answer 401/403 under the app tier:
// those responses collapse to "no data" and never end the epoch.
package helix
