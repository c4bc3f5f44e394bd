package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streamkit/internal/credentials"
	"streamkit/internal/exchange"
	"streamkit/pkg/logging"
	"streamkit/pkg/oauth"
)

// AppScopes is the scope set requested for app tokens.
var AppScopes = []string{"user:read:email", "channel:read:subscriptions", "moderation:read"}

// AppToken is an app-only access token. It is never cached or persisted.
type AppToken struct {
	AccessToken RedactedToken
	ClientID    string
	Scope       []string
	ObtainedAt  time.Time
}

// AppTokenProvider mints app-only tokens. Every call is a network round trip.
type AppTokenProvider interface {
	Mint(ctx context.Context) (*AppToken, error)
}

// ClientCredentialsGranter performs the client-credentials grant. *oauth.Client satisfies it.
type ClientCredentialsGranter interface {
	ClientCredentials(ctx context.Context, clientID, clientSecret string, scopes []string) (*oauth.Token, error)
}

// DirectAppProvider mints app tokens with a locally held client secret.
type DirectAppProvider struct {
	creds   credentials.Source
	granter ClientCredentialsGranter
	now     func() time.Time
}

// NewDirectAppProvider creates an app provider that performs the grant itself.
func NewDirectAppProvider(creds credentials.Source, granter ClientCredentialsGranter) *DirectAppProvider {
	return &DirectAppProvider{creds: creds, granter: granter, now: time.Now}
}

// Mint implements AppTokenProvider.
func (p *DirectAppProvider) Mint(ctx context.Context) (*AppToken, error) {
	cred, err := p.creds.Resolve(ctx, credentials.App)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialsMissing, err)
	}
	if !cred.HasSecret() {
		return nil, fmt.Errorf("%w: client secret is not available locally", ErrCredentialsMissing)
	}

	tok, err := p.granter.ClientCredentials(ctx, cred.ClientID, cred.ClientSecret, AppScopes)
	if err != nil {
		return nil, classifyGrantError(err)
	}

	logging.Debug("AppToken", "Minted app token, expires_in=%d", tok.ExpiresIn)
	return &AppToken{
		AccessToken: NewRedactedToken(tok.AccessToken),
		ClientID:    cred.ClientID,
		Scope:       tok.Scope,
		ObtainedAt:  p.now(),
	}, nil
}

// AppTokenMinter is the delegated credential-exchange call. *exchange.Client satisfies it.
type AppTokenMinter interface {
	MintAppToken(ctx context.Context) (*exchange.CredentialResponse, error)
}

// DelegatedAppProvider asks the credential-exchange function to mint app tokens.
type DelegatedAppProvider struct {
	minter AppTokenMinter
	now    func() time.Time
}

// NewDelegatedAppProvider creates an app provider backed by the exchange functions.
func NewDelegatedAppProvider(minter AppTokenMinter) *DelegatedAppProvider {
	return &DelegatedAppProvider{minter: minter, now: time.Now}
}

// Mint implements AppTokenProvider.
func (p *DelegatedAppProvider) Mint(ctx context.Context) (*AppToken, error) {
	resp, err := p.minter.MintAppToken(ctx)
	if err != nil {
		return nil, classifyGrantError(err)
	}

	logging.Debug("AppToken", "Minted app token through credential exchange")
	return &AppToken{
		AccessToken: NewRedactedToken(resp.AccessToken),
		ClientID:    resp.ClientID,
		ObtainedAt:  p.now(),
	}, nil
}

// classifyGrantError maps a grant failure onto the auth error taxonomy.
func classifyGrantError(err error) error {
	var upstream *oauth.UpstreamError
	var remote *exchange.RemoteError
	switch {
	case errors.As(err, &upstream), errors.As(err, &remote):
		return fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	case errors.Is(err, credentials.ErrNotConfigured):
		return fmt.Errorf("%w: %w", ErrCredentialsMissing, err)
	default:
		return err
	}
}
