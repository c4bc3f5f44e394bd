package helix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"streamkit/internal/auth"
	"streamkit/pkg/logging"
)

const (
	// DefaultBaseURL is the platform REST API root.
	DefaultBaseURL = "https://api.twitch.tv/helix"

	// DefaultRequestTimeout bounds each request attempt.
	DefaultRequestTimeout = 10 * time.Second

	// maxResponseBody caps how much of a response is read.
	maxResponseBody = 4 << 20
)

// Selector chooses the token backing an epoch. *auth.Selector satisfies it.
type Selector interface {
	Select(ctx context.Context) (auth.Selection, error)
}

// Response is a successful API response.
type Response struct {
	StatusCode int
	Body       []byte
	Tier       auth.Tier
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Config configures a Client.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

// Client calls the platform REST API with a memoised token selection.
//
// Thread-safe: Yes. Concurrent callers share one selection per epoch.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	selector   Selector

	mu      sync.Mutex
	current *auth.Selection
}

// NewClient creates a client. Zero config values use the defaults.
func NewClient(selector Selector, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    cfg.RequestTimeout,
		httpClient: cfg.HTTPClient,
		selector:   selector,
	}
}

// selection returns the current epoch's selection, selecting one if needed.
// The lock is held across Select so concurrent first calls share one selection.
func (c *Client) selection(ctx context.Context) (auth.Selection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return *c.current, nil
	}

	sel, err := c.selector.Select(ctx)
	if err != nil {
		return auth.Selection{}, err
	}

	c.current = &sel
	logging.Info("Helix", "Started epoch %s with %s tier", sel.Epoch, sel.Tier)
	return sel, nil
}

// endEpoch drops the selection only if it still belongs to epoch.
func (c *Client) endEpoch(epoch string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.Epoch == epoch {
		c.current = nil
		logging.Info("Helix", "Ended epoch %s", epoch)
	}
}

// Invalidate ends the current epoch. The next call selects again.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		logging.Info("Helix", "Epoch %s invalidated", c.current.Epoch)
		c.current = nil
	}
}

// Tier returns the tier of the current epoch, selecting one if needed.
func (c *Client) Tier(ctx context.Context) (auth.Tier, error) {
	sel, err := c.selection(ctx)
	if err != nil {
		return auth.TierApp, err
	}
	return sel.Tier, nil
}

// Call performs a GET request. A 401 ends the epoch and the request is retried
// once with a fresh selection; whatever the retry yields is returned.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	sel, err := c.selection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, sel, endpoint, params)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return c.result(endpoint, resp)
	}

	logging.Warn("Helix", "%s returned 401 under epoch %s, selecting again", endpoint, sel.Epoch)
	c.endEpoch(sel.Epoch)

	sel, err = c.selection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err = c.do(ctx, sel, endpoint, params)
	if err != nil {
		return nil, err
	}
	return c.result(endpoint, resp)
}

// CallNoRetry performs a GET request against an endpoint that may be out of reach
// of the current tier. A 401 or 403 yields (nil, nil) and leaves the epoch intact.
func (c *Client) CallNoRetry(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	sel, err := c.selection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, sel, endpoint, params)
	if err != nil {
		return nil, err
	}
	res, err := c.result(endpoint, resp)
	if errors.Is(err, auth.ErrPrivilegeInsufficient) {
		logging.Debug("Helix", "Not available under %s tier: %v", sel.Tier, err)
		return nil, nil
	}
	return res, err
}

func (c *Client) result(endpoint string, resp *Response) (*Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}
	return resp, nil
}

// do performs one attempt bounded by the request timeout.
func (c *Client) do(ctx context.Context, sel auth.Selection, endpoint string, params url.Values) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+sel.Token.Value())
	req.Header.Set("Client-Id", sel.ClientID)
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: body, Tier: sel.Tier}, nil
}

// errorMessage extracts the message of a platform error body, if any.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Message
	}
	return ""
}
