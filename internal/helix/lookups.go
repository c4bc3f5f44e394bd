package helix

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"streamkit/internal/auth"
)

// User looks up an account by login name.
func (c *Client) User(ctx context.Context, login string) (*User, error) {
	resp, err := c.Call(ctx, "/users", url.Values{"login": {login}})
	if err != nil {
		return nil, err
	}

	var p page[User]
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	if len(p.Data) == 0 {
		return nil, fmt.Errorf("user %s: %w", login, ErrNotFound)
	}
	return &p.Data[0], nil
}

// Stream returns the live stream of login, or nil when the channel is offline.
func (c *Client) Stream(ctx context.Context, login string) (*Stream, error) {
	resp, err := c.Call(ctx, "/streams", url.Values{"user_login": {login}})
	if err != nil {
		return nil, err
	}

	var p page[Stream]
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	if len(p.Data) == 0 {
		return nil, nil
	}
	return &p.Data[0], nil
}

// FollowerCount returns the total number of followers of a broadcaster.
func (c *Client) FollowerCount(ctx context.Context, broadcasterID string) (int, error) {
	resp, err := c.Call(ctx, "/channels/followers", listParams(broadcasterID, 1))
	if err != nil {
		return 0, err
	}

	var p page[Follower]
	if err := resp.Decode(&p); err != nil {
		return 0, err
	}
	return p.Total, nil
}

// RecentFollowers returns up to count of the newest followers.
func (c *Client) RecentFollowers(ctx context.Context, broadcasterID string, count int) ([]Follower, error) {
	resp, err := c.Call(ctx, "/channels/followers", listParams(broadcasterID, count))
	if err != nil {
		return nil, err
	}

	var p page[Follower]
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

// SubscriberCount returns the number of subscribers. Under the app tier the
// endpoint is usually out of reach and 0 is returned.
func (c *Client) SubscriberCount(ctx context.Context, broadcasterID string) (int, error) {
	resp, err := c.privileged(ctx, "/subscriptions", listParams(broadcasterID, 1))
	if err != nil || resp == nil {
		return 0, err
	}

	var p page[Subscriber]
	if err := resp.Decode(&p); err != nil {
		return 0, err
	}
	return p.Total, nil
}

// RecentSubscribers returns up to count subscriptions. Under the app tier the
// endpoint is usually out of reach and nil is returned.
func (c *Client) RecentSubscribers(ctx context.Context, broadcasterID string, count int) ([]Subscriber, error) {
	resp, err := c.privileged(ctx, "/subscriptions", listParams(broadcasterID, count))
	if err != nil || resp == nil {
		return nil, err
	}

	var p page[Subscriber]
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	return p.Data, nil
}

// privileged calls an endpoint that needs the broadcaster's consent. Under the
// user tier a 401 is worth recovering from; under the app tier it is expected.
func (c *Client) privileged(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	tier, err := c.Tier(ctx)
	if err != nil {
		return nil, err
	}
	if tier == auth.TierUser {
		return c.Call(ctx, endpoint, params)
	}
	return c.CallNoRetry(ctx, endpoint, params)
}

func listParams(broadcasterID string, first int) url.Values {
	return url.Values{
		"broadcaster_id": {broadcasterID},
		"first":          {strconv.Itoa(first)},
	}
}
