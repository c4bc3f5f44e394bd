package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBaseURL is the platform's OAuth2 service.
	DefaultBaseURL = "https://id.twitch.tv/oauth2"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 10 * time.Second
)

// Client handles OAuth2 protocol operations against the platform.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBaseURL points the client at a different OAuth2 service root.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewClient creates a new OAuth client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
		baseURL:    DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the OAuth2 service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// endpoint describes the platform's authorize and token URLs. The platform expects
// client credentials in the form body rather than in a Basic auth header.
func (c *Client) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   c.baseURL + "/authorize",
		TokenURL:  c.baseURL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

func (c *Client) config(clientID, clientSecret, redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     c.endpoint(),
		RedirectURL:  redirectURI,
		Scopes:       scopes,
	}
}

// withHTTPClient makes x/oauth2 use our HTTP client for token requests.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// AuthorizationURL builds the interactive authorize URL the user has to visit.
func (c *Client) AuthorizationURL(clientID, redirectURI, state string, scopes []string) string {
	return c.config(clientID, "", redirectURI, scopes).AuthCodeURL(state)
}

// ClientCredentials performs a client-credentials grant and returns an app-only token.
func (c *Client) ClientCredentials(ctx context.Context, clientID, clientSecret string, scopes []string) (*Token, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.endpoint().TokenURL,
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cfg.Token(c.withHTTPClient(ctx))
	return c.convert("client_credentials", tok, err)
}

// ExchangeCode exchanges an authorization code for a user token.
func (c *Client) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*Token, error) {
	tok, err := c.config(clientID, clientSecret, redirectURI, nil).Exchange(c.withHTTPClient(ctx), code)
	return c.convert("authorization_code", tok, err)
}

// RefreshToken obtains a new user token using a refresh token.
func (c *Client) RefreshToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, errors.New("no refresh token available")
	}

	// A token without an access token is never valid, so the source always refreshes.
	stale := &oauth2.Token{RefreshToken: refreshToken}
	tok, err := c.config(clientID, clientSecret, "", nil).TokenSource(c.withHTTPClient(ctx), stale).Token()
	return c.convert("refresh_token", tok, err)
}

// Validate introspects an access token. A revoked or expired token yields an
// *UpstreamError with status 401.
func (c *Client) Validate(ctx context.Context, accessToken string) (*Validation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/validate", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create validate request: %w", err)
	}
	// The validate endpoint uses the "OAuth" scheme rather than "Bearer".
	req.Header.Set("Authorization", "OAuth "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read validate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Token validation failed",
			"status", resp.StatusCode,
			"body", string(body))
		return nil, &UpstreamError{Op: "validate", StatusCode: resp.StatusCode}
	}

	var v Validation
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to parse validate response: %w", err)
	}

	return &v, nil
}

// convert maps an x/oauth2 result onto the platform token payload.
func (c *Client) convert(op string, tok *oauth2.Token, err error) (*Token, error) {
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			c.logger.Debug("Token request failed",
				"grant", op,
				"status", re.Response.StatusCode,
				"error_code", re.ErrorCode)
			return nil, &UpstreamError{Op: op, StatusCode: re.Response.StatusCode, Code: re.ErrorCode}
		}
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    int(tok.ExpiresIn),
		Scope:        scopesFromExtra(tok.Extra("scope")),
	}

	if out.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		out.ExpiresIn = int(time.Until(tok.Expiry).Round(time.Second) / time.Second)
	}

	c.logger.Debug("Token request succeeded",
		"grant", op,
		"expires_in", out.ExpiresIn,
		"scopes", out.Scope)

	return out, nil
}

// scopesFromExtra reads the scope field, which the platform returns as a JSON array.
// A space separated string is accepted as well.
func scopesFromExtra(v interface{}) []string {
	switch s := v.(type) {
	case []interface{}:
		scopes := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				scopes = append(scopes, str)
			}
		}
		return scopes
	case []string:
		return s
	case string:
		return strings.Fields(s)
	default:
		return nil
	}
}
