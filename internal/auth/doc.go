// Package auth manages the two token tiers used to call the platform API.
//
// The APP tier is an app-only token minted with the client-credentials grant.
// It is always obtainable when credentials are configured and is never cached.
//
// The USER tier is a broadcaster token obtained with the authorization-code grant
// after interactive consent. It is persisted in a TokenStore, refreshed when it is
// within one hour of expiry and cleared when a refresh fails.
//
// Selector decides which tier backs an API session: a valid user token always wins,
// the app tier is the fallback.
//
// # Security
//
// Token values are never logged. Selections carry the token as a RedactedToken so
// that printing a selection cannot leak it.
package auth
