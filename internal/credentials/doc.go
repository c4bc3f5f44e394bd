// Package credentials resolves the platform client id and secret.
//
// Three variants are selected by a single configuration key:
//
//   - parameter-store: both values are read from AWS SSM Parameter Store
//   - delegated: only the client id is known locally; it is obtained from the
//     credential-exchange function and the secret stays server side
//   - env: TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET from the process environment
//
// Missing configuration is reported as ErrNotConfigured and is never a panic.
package credentials
