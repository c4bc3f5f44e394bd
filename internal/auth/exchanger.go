package auth

import (
	"context"
	"fmt"

	"streamkit/internal/credentials"
	"streamkit/internal/exchange"
	"streamkit/pkg/oauth"
)

// Exchanger performs a user-token grant.
type Exchanger interface {
	Exchange(ctx context.Context, grant exchange.Grant) (*oauth.Token, error)
}

// UserGranter performs the user-token grants upstream. *oauth.Client satisfies it.
type UserGranter interface {
	ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*oauth.Token, error)
	RefreshToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*oauth.Token, error)
}

// DirectExchanger performs grants with a locally held client secret.
type DirectExchanger struct {
	creds   credentials.Source
	granter UserGranter
}

// NewDirectExchanger creates an exchanger that talks to the token endpoint itself.
func NewDirectExchanger(creds credentials.Source, granter UserGranter) *DirectExchanger {
	return &DirectExchanger{creds: creds, granter: granter}
}

// Exchange implements Exchanger.
func (e *DirectExchanger) Exchange(ctx context.Context, grant exchange.Grant) (*oauth.Token, error) {
	cred, err := e.creds.Resolve(ctx, credentials.User)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialsMissing, err)
	}
	if !cred.HasSecret() {
		return nil, fmt.Errorf("%w: client secret is not available locally", ErrCredentialsMissing)
	}

	var tok *oauth.Token
	switch g := grant.(type) {
	case exchange.AuthorizationCode:
		tok, err = e.granter.ExchangeCode(ctx, cred.ClientID, cred.ClientSecret, g.Code, g.RedirectURI)
	case exchange.RefreshToken:
		tok, err = e.granter.RefreshToken(ctx, cred.ClientID, cred.ClientSecret, g.RefreshToken)
	default:
		return nil, fmt.Errorf("unsupported grant %T", grant)
	}
	if err != nil {
		return nil, classifyGrantError(err)
	}
	return tok, nil
}

// UserTokenExchanger is the delegated user-token-exchange call. *exchange.Client satisfies it.
type UserTokenExchanger interface {
	ExchangeUserToken(ctx context.Context, grant exchange.Grant) (*oauth.Token, error)
}

// DelegatedExchanger posts grants to the user-token-exchange function.
type DelegatedExchanger struct {
	client UserTokenExchanger
}

// NewDelegatedExchanger creates an exchanger backed by the exchange functions.
func NewDelegatedExchanger(client UserTokenExchanger) *DelegatedExchanger {
	return &DelegatedExchanger{client: client}
}

// Exchange implements Exchanger.
func (e *DelegatedExchanger) Exchange(ctx context.Context, grant exchange.Grant) (*oauth.Token, error) {
	tok, err := e.client.ExchangeUserToken(ctx, grant)
	if err != nil {
		return nil, classifyGrantError(err)
	}
	return tok, nil
}
