package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"streamkit/internal/helix"
	"streamkit/pkg/logging"
)

// API is the set of lookups the aggregator composes. *helix.Client satisfies it.
type API interface {
	User(ctx context.Context, login string) (*helix.User, error)
	Stream(ctx context.Context, login string) (*helix.Stream, error)
	FollowerCount(ctx context.Context, broadcasterID string) (int, error)
	RecentFollowers(ctx context.Context, broadcasterID string, count int) ([]helix.Follower, error)
	SubscriberCount(ctx context.Context, broadcasterID string) (int, error)
	RecentSubscribers(ctx context.Context, broadcasterID string, count int) ([]helix.Subscriber, error)
}

// Aggregator builds snapshots from the API.
type Aggregator struct {
	api API
	now func() time.Time
}

// NewAggregator creates an aggregator.
func NewAggregator(api API) *Aggregator {
	return &Aggregator{api: api, now: time.Now}
}

// GetStats resolves username and fetches the rest of the snapshot concurrently.
func (a *Aggregator) GetStats(ctx context.Context, username string) Snapshot {
	user, err := a.api.User(ctx, username)
	if err != nil {
		logging.Warn("Stats", "Could not resolve user %s, using defaults: %v", username, err)
		snap := DefaultSnapshot(username)
		snap.FetchedAt = a.now()
		return snap
	}

	snap := Snapshot{
		UserDisplayName: user.DisplayName,
		ProfileImageURL: user.ProfileImageURL,
	}

	var (
		stream      *helix.Stream
		followers   int
		subscribers int
		recentFol   []helix.Follower
		recentSub   []helix.Subscriber
	)

	// Lookups never fail the group; each error only degrades its own field.
	var g errgroup.Group
	g.Go(func() error {
		stream = absorb(a.api.Stream(ctx, username))("stream")
		return nil
	})
	g.Go(func() error {
		followers = absorb(a.api.FollowerCount(ctx, user.ID))("follower count")
		return nil
	})
	g.Go(func() error {
		subscribers = absorb(a.api.SubscriberCount(ctx, user.ID))("subscriber count")
		return nil
	})
	g.Go(func() error {
		recentFol = absorb(a.api.RecentFollowers(ctx, user.ID, 1))("recent followers")
		return nil
	})
	g.Go(func() error {
		recentSub = absorb(a.api.RecentSubscribers(ctx, user.ID, 1))("recent subscribers")
		return nil
	})
	_ = g.Wait()

	if stream != nil {
		snap.IsLive = true
		snap.ViewerCount = stream.ViewerCount
		snap.StreamTitle = stream.Title
		snap.GameName = stream.GameName
		snap.StartTime = stream.StartedAt
		snap.ThumbnailURL = stream.ThumbnailURL
	}
	snap.FollowerCount = followers
	snap.SubscriberCount = subscribers
	if len(recentFol) > 0 {
		snap.RecentFollower = recentFol[0].UserName
	}
	if len(recentSub) > 0 {
		snap.RecentSubscriber = recentSub[0].UserName
	}
	snap.FetchedAt = a.now()

	return snap
}

// absorb logs a failed lookup and yields the zero value in its place.
func absorb[T any](v T, err error) func(what string) T {
	return func(what string) T {
		if err != nil {
			logging.Warn("Stats", "Lookup of %s failed: %v", what, err)
			var zero T
			return zero
		}
		return v
	}
}
