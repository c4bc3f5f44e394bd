// Package exchange implements the two delegated-secret backing contracts.
//
// In the delegated deployment the client secret never leaves the server side.
// The consumer asks a remote function to mint an app token (GET /credential-exchange)
// and to perform user-token grants on its behalf (POST /user-token-exchange).
//
// The package provides:
//   - Grant, a tagged union of AuthorizationCode and RefreshToken
//   - Client, which calls both endpoints
//   - CredentialHandler and UserTokenHandler, http.Handler implementations of
//     the two endpoints (mounting them is left to the caller)
package exchange
