package oauth

import (
	"fmt"
	"time"
)

// Token is the raw token payload returned by the upstream token endpoint.
// It is also the body forwarded unchanged by the user-token-exchange function.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// RefreshToken is used to obtain new access tokens. App tokens have none.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`

	// Scope is the granted scope set, in the order the platform returned it.
	Scope []string `json:"scope,omitempty"`

	// TokenType is typically "bearer".
	TokenType string `json:"token_type,omitempty"`
}

// ExpiresAt returns the absolute expiry of the token when it was issued at issuedAt.
// A token without expires_in yields the zero time.
func (t *Token) ExpiresAt(issuedAt time.Time) time.Time {
	if t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Validation is the introspection result of GET /oauth2/validate.
type Validation struct {
	ClientID  string   `json:"client_id"`
	Login     string   `json:"login,omitempty"`
	Scopes    []string `json:"scopes"`
	UserID    string   `json:"user_id,omitempty"`
	ExpiresIn int      `json:"expires_in"`
}

// UpstreamError is returned when the OAuth service answers with a non-2xx status.
type UpstreamError struct {
	// Op is the operation that failed, e.g. "client_credentials" or "validate".
	Op string

	// StatusCode is the HTTP status returned by the OAuth service.
	StatusCode int

	// Code is the OAuth error code from the response body, if any.
	Code string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("oauth %s rejected with status %d (%s)", e.Op, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("oauth %s rejected with status %d", e.Op, e.StatusCode)
}
