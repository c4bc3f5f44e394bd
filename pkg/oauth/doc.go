// Package oauth is the protocol client for the streaming platform's OAuth2 service.
//
// It speaks the three token grants used by streamkit (client credentials,
// authorization code and refresh token) through golang.org/x/oauth2, builds the
// interactive authorize URL, and calls the token introspection endpoint.
//
// The package holds no state: it never caches or stores tokens. Lifecycle decisions
// (when to refresh, which tier to use, where to persist) live in internal/auth.
//
// # Usage
//
//	c := oauth.NewClient(oauth.WithHTTPClient(httpClient))
//
//	appToken, err := c.ClientCredentials(ctx, clientID, clientSecret, scopes)
//	userToken, err := c.ExchangeCode(ctx, clientID, clientSecret, code, redirectURI)
//	refreshed, err := c.RefreshToken(ctx, clientID, clientSecret, userToken.RefreshToken)
//	info, err := c.Validate(ctx, userToken.AccessToken)
//
// Rejections by the OAuth service are reported as *UpstreamError.
package oauth
