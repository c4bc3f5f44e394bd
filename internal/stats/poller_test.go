package stats

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher returns snapshots whose ViewerCount is the call number.
// Delays are taken per call from the delays slice.
type scriptedFetcher struct {
	calls  atomic.Int32
	delays []time.Duration
}

func (f *scriptedFetcher) GetStats(ctx context.Context, username string) Snapshot {
	n := int(f.calls.Add(1))
	if n-1 < len(f.delays) {
		select {
		case <-time.After(f.delays[n-1]):
		case <-ctx.Done():
		}
	}
	return Snapshot{UserDisplayName: username, ViewerCount: n}
}

func TestPoller_InitialFetchAndTicks(t *testing.T) {
	fetcher := &scriptedFetcher{}

	var mu sync.Mutex
	var snapshots []Snapshot
	var uptimes atomic.Int32

	p := NewPoller(fetcher, PollerConfig{
		Username:        "streamer",
		RefreshInterval: 30 * time.Millisecond,
		UptimeInterval:  5 * time.Millisecond,
		OnSnapshot: func(s Snapshot) {
			mu.Lock()
			snapshots = append(snapshots, s)
			mu.Unlock()
		},
		OnUptime: func(s Snapshot, uptime string) {
			assert.Equal(t, "00:00:00", uptime)
			uptimes.Add(1)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return fetcher.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return uptimes.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, snapshots)
	assert.Equal(t, 1, snapshots[0].ViewerCount, "the first snapshot comes from the initial fetch")
	for i := 1; i < len(snapshots); i++ {
		assert.Greater(t, snapshots[i].ViewerCount, snapshots[i-1].ViewerCount)
	}
}

func TestPoller_DiscardsOlderRefresh(t *testing.T) {
	// Refresh 1 is slow, refresh 2 is fast and finishes first.
	fetcher := &scriptedFetcher{delays: []time.Duration{150 * time.Millisecond, 0}}
	p := NewPoller(fetcher, PollerConfig{Username: "streamer"})

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.refresh(ctx)
	}()

	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	p.refresh(ctx)
	assert.Equal(t, 2, p.Latest().ViewerCount)

	wg.Wait()
	assert.Equal(t, 2, p.Latest().ViewerCount, "the slower, older refresh must not overwrite the newer one")
}

func TestPoller_RefreshesDoNotWaitForEachOther(t *testing.T) {
	fetcher := &scriptedFetcher{delays: []time.Duration{0, time.Hour, time.Hour}}
	p := NewPoller(fetcher, PollerConfig{
		Username:        "streamer",
		RefreshInterval: 10 * time.Millisecond,
		UptimeInterval:  time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	// Two refreshes stuck for an hour must not stop a third from starting.
	assert.Eventually(t, func() bool { return fetcher.calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop; in-flight refreshes should observe cancellation")
	}
}

func TestPoller_CancelledBeforeStart(t *testing.T) {
	fetcher := &scriptedFetcher{}
	p := NewPoller(fetcher, PollerConfig{Username: "streamer"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, "streamer", p.Latest().UserDisplayName)
	assert.Zero(t, p.Latest().ViewerCount, "a cancelled fetch is not applied")
}

func TestNewPoller_Defaults(t *testing.T) {
	p := NewPoller(&scriptedFetcher{}, PollerConfig{})
	assert.Equal(t, DefaultRefreshInterval, p.cfg.RefreshInterval)
	assert.Equal(t, DefaultUptimeInterval, p.cfg.UptimeInterval)
}
