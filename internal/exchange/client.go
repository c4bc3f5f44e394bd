package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"streamkit/pkg/logging"
	"streamkit/pkg/oauth"
)

// Endpoint paths relative to the exchange base URL.
const (
	CredentialPath = "/credential-exchange"
	UserTokenPath  = "/user-token-exchange"
)

// DefaultTimeout bounds every call to the exchange functions.
const DefaultTimeout = 10 * time.Second

// Client calls the delegated exchange functions.
//
// Thread-safe: Yes.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the exchange functions served under baseURL.
// A nil httpClient uses a client with DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the root the exchange endpoints are served under.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MintAppToken asks the credential-exchange function for an app token.
// The response also carries the public client id.
func (c *Client) MintAppToken(ctx context.Context) (*CredentialResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+CredentialPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential exchange request: %w", err)
	}

	var out CredentialResponse
	if err := c.do(req, CredentialPath, &out); err != nil {
		return nil, err
	}
	if out.ClientID == "" {
		return nil, fmt.Errorf("credential exchange returned no client_id")
	}

	return &out, nil
}

// ExchangeUserToken posts a grant to the user-token-exchange function and returns
// the upstream token payload it forwards.
func (c *Client) ExchangeUserToken(ctx context.Context, grant Grant) (*oauth.Token, error) {
	body, err := json.Marshal(EncodeGrant(grant))
	if err != nil {
		return nil, fmt.Errorf("failed to encode grant: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UserTokenPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create user token exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var tok oauth.Token
	if err := c.do(req, UserTokenPath, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("user token exchange returned no access_token")
	}

	logging.Debug("Exchange", "Delegated %s grant succeeded, expires_in=%d", grant.GrantType(), tok.ExpiresIn)
	return &tok, nil
}

func (c *Client) do(req *http.Request, endpoint string, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		remote := &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		// The error body is best effort; an unparseable one still yields a RemoteError.
		_ = json.Unmarshal(data, &remote.Body)
		logging.Warn("Exchange", "%s failed with status %d", endpoint, resp.StatusCode)
		return remote
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return nil
}
