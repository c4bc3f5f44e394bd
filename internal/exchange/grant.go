package exchange

import (
	"errors"
	"fmt"
)

// Grant type identifiers used on the wire.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
)

// Grant is a user-token grant. It is either AuthorizationCode or RefreshToken.
type Grant interface {
	// GrantType returns the wire identifier of the grant.
	GrantType() string

	isGrant()
}

// AuthorizationCode exchanges a code returned on the redirect for a user token.
type AuthorizationCode struct {
	Code        string
	RedirectURI string
}

// GrantType implements Grant.
func (AuthorizationCode) GrantType() string { return GrantTypeAuthorizationCode }

func (AuthorizationCode) isGrant() {}

// RefreshToken obtains a new user token from a stored refresh token.
type RefreshToken struct {
	RefreshToken string
}

// GrantType implements Grant.
func (RefreshToken) GrantType() string { return GrantTypeRefreshToken }

func (RefreshToken) isGrant() {}

// UserTokenRequest is the JSON body of POST /user-token-exchange.
type UserTokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ErrMissingGrantType is returned when a request body carries no grant_type.
var ErrMissingGrantType = errors.New("missing grant_type in request body")

// EncodeGrant converts a grant into its wire representation.
func EncodeGrant(g Grant) UserTokenRequest {
	switch g := g.(type) {
	case AuthorizationCode:
		return UserTokenRequest{
			GrantType:   GrantTypeAuthorizationCode,
			Code:        g.Code,
			RedirectURI: g.RedirectURI,
		}
	case RefreshToken:
		return UserTokenRequest{
			GrantType:    GrantTypeRefreshToken,
			RefreshToken: g.RefreshToken,
		}
	default:
		return UserTokenRequest{}
	}
}

// Decode converts a wire request into a Grant and checks the fields the grant requires.
func (r UserTokenRequest) Decode() (Grant, error) {
	switch r.GrantType {
	case "":
		return nil, ErrMissingGrantType
	case GrantTypeAuthorizationCode:
		if r.Code == "" || r.RedirectURI == "" {
			return nil, errors.New("missing code or redirect_uri for authorization_code grant")
		}
		return AuthorizationCode{Code: r.Code, RedirectURI: r.RedirectURI}, nil
	case GrantTypeRefreshToken:
		if r.RefreshToken == "" {
			return nil, errors.New("missing refresh_token for refresh_token grant")
		}
		return RefreshToken{RefreshToken: r.RefreshToken}, nil
	default:
		return nil, fmt.Errorf("unsupported grant_type: %s", r.GrantType)
	}
}
