package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"streamkit/internal/credentials"
	"streamkit/internal/exchange"
	"streamkit/pkg/logging"
	"streamkit/pkg/oauth"
)

// UserScopes is the scope set requested during interactive login.
var UserScopes = []string{"user:read:email", "channel:read:subscriptions", "moderator:read:followers"}

// RefreshWindow is how long before expiry a user token is refreshed.
const RefreshWindow = time.Hour

// RefreshTimeout bounds a refresh. The refresh outlives the caller that started
// it so callers sharing the flight are not failed by its cancellation.
const RefreshTimeout = 15 * time.Second

// Redirect URIs registered for each deployment environment.
const (
	EnvironmentLocal      = "local"
	EnvironmentProduction = "production"

	LocalRedirectURI      = "https://localhost:3000"
	ProductionRedirectURI = "https://streamertheme.vercel.app"
)

// RedirectURI returns the fixed redirect URI of an environment.
func RedirectURI(environment string) (string, error) {
	switch environment {
	case EnvironmentLocal:
		return LocalRedirectURI, nil
	case EnvironmentProduction:
		return ProductionRedirectURI, nil
	default:
		return "", fmt.Errorf("unknown environment %q", environment)
	}
}

// SessionState is the lifecycle state of the stored user session.
type SessionState int

const (
	// LoggedOut means no usable session is stored.
	LoggedOut SessionState = iota
	// Valid means more than RefreshWindow remains before expiry.
	Valid
	// NearExpiry means the next ValidToken call will refresh.
	NearExpiry
)

func (s SessionState) String() string {
	switch s {
	case LoggedOut:
		return "logged out"
	case Valid:
		return "valid"
	case NearExpiry:
		return "near expiry"
	default:
		return "unknown"
	}
}

// AuthorizationURLBuilder builds the interactive authorize URL. *oauth.Client satisfies it.
type AuthorizationURLBuilder interface {
	AuthorizationURL(clientID, redirectURI, state string, scopes []string) string
}

// TokenValidator introspects an access token. *oauth.Client satisfies it.
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) (*oauth.Validation, error)
}

// UserProviderConfig holds the collaborators of a UserTokenProvider.
type UserProviderConfig struct {
	Credentials credentials.Source
	Exchanger   Exchanger
	URLBuilder  AuthorizationURLBuilder
	Validator   TokenValidator
	Store       TokenStore
	States      *StateStore

	// RedirectURI is the redirect registered for the deployment environment.
	RedirectURI string
}

// UserTokenProvider owns the broadcaster session: the authorization handshake,
// persistence, and refresh of the user token. It is the only writer of the TokenStore.
type UserTokenProvider struct {
	creds       credentials.Source
	exchanger   Exchanger
	urls        AuthorizationURLBuilder
	validator   TokenValidator
	store       TokenStore
	states      *StateStore
	redirectURI string

	now     func() time.Time
	refresh singleflight.Group
}

// NewUserTokenProvider creates a user token provider.
func NewUserTokenProvider(cfg UserProviderConfig) *UserTokenProvider {
	return &UserTokenProvider{
		creds:       cfg.Credentials,
		exchanger:   cfg.Exchanger,
		urls:        cfg.URLBuilder,
		validator:   cfg.Validator,
		store:       cfg.Store,
		states:      cfg.States,
		redirectURI: cfg.RedirectURI,
		now:         time.Now,
	}
}

// RedirectURI returns the redirect the provider registers in authorize requests.
func (p *UserTokenProvider) RedirectURI() string {
	return p.redirectURI
}

// AuthorizationURL builds the authorize URL for a new login and records its state.
func (p *UserTokenProvider) AuthorizationURL(ctx context.Context) (string, error) {
	cred, err := p.creds.Resolve(ctx, credentials.User)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialsMissing, err)
	}

	state, err := p.states.Generate()
	if err != nil {
		return "", err
	}

	return p.urls.AuthorizationURL(cred.ClientID, p.redirectURI, state, UserScopes), nil
}

// HandleRedirect completes a login from the query of the inbound redirect.
// It returns true only when a code was exchanged and the session persisted.
// An error redirect leaves the store untouched.
func (p *UserTokenProvider) HandleRedirect(ctx context.Context, query url.Values) bool {
	if errCode := query.Get("error"); errCode != "" {
		desc := query.Get("error_description")
		logging.Warn("UserToken", "Authorization failed: error=%s description=%s", errCode, desc)
		if strings.Contains(strings.ToLower(desc), "redirect") {
			logging.Warn("UserToken", "Check that %s is registered as an OAuth redirect URL for the application", p.redirectURI)
		}
		return false
	}

	if !p.states.Validate(query.Get("state")) {
		logging.Warn("UserToken", "Rejecting redirect with an unknown or expired state")
		return false
	}

	code := query.Get("code")
	if code == "" {
		logging.Warn("UserToken", "Redirect carried neither code nor error")
		return false
	}

	tok, err := p.exchanger.Exchange(ctx, exchange.AuthorizationCode{Code: code, RedirectURI: p.redirectURI})
	if err != nil {
		logging.Error("UserToken", err, "authorization code exchange failed")
		return false
	}

	if err := p.store.Save(p.recordFromToken(tok, "")); err != nil {
		logging.Error("UserToken", err, "failed to persist session")
		return false
	}

	logging.Info("UserToken", "Login complete, scopes=%s", strings.Join(tok.Scope, " "))
	return true
}

// State reports the lifecycle state of the stored session without network calls.
func (p *UserTokenProvider) State() SessionState {
	rec, err := p.store.Load()
	if err != nil || rec == nil {
		return LoggedOut
	}
	return p.stateOf(rec)
}

func (p *UserTokenProvider) stateOf(rec *TokenRecord) SessionState {
	if rec.ExpiresAt.Sub(p.now()) >= RefreshWindow {
		return Valid
	}
	return NearExpiry
}

// Session returns the stored record, or nil when logged out.
func (p *UserTokenProvider) Session() (*TokenRecord, error) {
	return p.store.Load()
}

// IsLoggedIn reports whether a stored, unexpired token passes upstream validation.
func (p *UserTokenProvider) IsLoggedIn(ctx context.Context) bool {
	rec, err := p.store.Load()
	if err != nil || rec == nil {
		return false
	}
	if !rec.ExpiresAt.After(p.now()) {
		return false
	}

	if _, err := p.validator.Validate(ctx, rec.AccessToken); err != nil {
		logging.Debug("UserToken", "Stored token failed validation: %v", err)
		return false
	}
	return true
}

// ValidToken returns a usable user access token.
//
// A token with at least RefreshWindow left is returned as stored. Otherwise one
// refresh is attempted; a missing or rejected refresh token clears the session,
// an interrupted refresh keeps it. ValidToken never starts an interactive login.
func (p *UserTokenProvider) ValidToken(ctx context.Context) (string, bool) {
	rec, err := p.store.Load()
	if err != nil {
		logging.Error("UserToken", err, "failed to load session")
		return "", false
	}
	if rec == nil {
		return "", false
	}

	if p.stateOf(rec) == Valid {
		return rec.AccessToken, true
	}

	// Concurrent callers holding the same refresh token share a single refresh.
	ch := p.refresh.DoChan(rec.RefreshToken, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RefreshTimeout)
		defer cancel()
		return p.refreshSession(refreshCtx, rec)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		logging.Debug("UserToken", "Stopped waiting for refresh: %v", ctx.Err())
		return "", false
	case res = <-ch:
	}

	if res.Err != nil {
		logging.Warn("UserToken", "No user token: %v", res.Err)
		return "", false
	}
	if res.Shared {
		logging.Debug("UserToken", "Joined an in-flight refresh")
	}

	return res.Val.(string), true
}

func (p *UserTokenProvider) refreshSession(ctx context.Context, rec *TokenRecord) (string, error) {
	// Another caller may have refreshed between our load and joining the flight.
	if current, err := p.store.Load(); err == nil && current != nil && p.stateOf(current) == Valid {
		return current.AccessToken, nil
	}

	if rec.RefreshToken == "" {
		p.clear()
		return "", fmt.Errorf("%w: no refresh token stored", ErrRefreshFailed)
	}

	logging.Debug("UserToken", "Token expires in %v, refreshing", rec.ExpiresAt.Sub(p.now()).Round(time.Second))

	tok, err := p.exchanger.Exchange(ctx, exchange.RefreshToken{RefreshToken: rec.RefreshToken})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("refresh interrupted: %w", err)
	}
	if err != nil {
		p.clear()
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	next := p.recordFromToken(tok, rec.RefreshToken)
	if err := p.store.Save(next); err != nil {
		return "", fmt.Errorf("failed to persist refreshed session: %w", err)
	}

	logging.Info("UserToken", "Refreshed user token, new expiry %s", next.ExpiresAt.Format(time.RFC3339))
	return next.AccessToken, nil
}

// Logout clears the stored session. Calling it repeatedly is harmless.
func (p *UserTokenProvider) Logout(_ context.Context) error {
	if err := p.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logging.Info("UserToken", "Logged out")
	return nil
}

func (p *UserTokenProvider) clear() {
	if err := p.store.Clear(); err != nil {
		logging.Error("UserToken", err, "failed to clear session")
	}
}

// recordFromToken converts a grant result into a stored record. The platform may
// omit the refresh token on refresh, in which case previous is kept.
func (p *UserTokenProvider) recordFromToken(tok *oauth.Token, previous string) *TokenRecord {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = previous
	}
	return &TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    tok.ExpiresAt(p.now()),
	}
}
