package stats

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"streamkit/pkg/logging"
)

// Default poller intervals.
const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultUptimeInterval  = time.Second
)

// Fetcher produces snapshots. *Aggregator satisfies it.
type Fetcher interface {
	GetStats(ctx context.Context, username string) Snapshot
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	Username        string
	RefreshInterval time.Duration
	UptimeInterval  time.Duration

	// OnSnapshot is called with every snapshot that becomes the latest.
	OnSnapshot func(Snapshot)

	// OnUptime is called on every uptime tick with the latest snapshot's uptime.
	OnUptime func(snap Snapshot, uptime string)
}

// Poller refreshes a snapshot on one interval and recomputes uptime on another.
//
// Refresh ticks do not wait for an earlier refresh to finish. When refreshes
// complete out of order, the older result is discarded.
type Poller struct {
	fetcher Fetcher
	cfg     PollerConfig
	now     func() time.Time

	mu      sync.RWMutex
	latest  Snapshot
	issued  uint64
	applied uint64

	// emitMu keeps callbacks from interleaving.
	emitMu sync.Mutex
}

// NewPoller creates a poller. Zero intervals use the defaults.
func NewPoller(fetcher Fetcher, cfg PollerConfig) *Poller {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.UptimeInterval <= 0 {
		cfg.UptimeInterval = DefaultUptimeInterval
	}

	return &Poller{
		fetcher: fetcher,
		cfg:     cfg,
		now:     time.Now,
		latest:  DefaultSnapshot(cfg.Username),
	}
}

// Latest returns the most recent snapshot.
func (p *Poller) Latest() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Run fetches once and then runs both ticks until ctx is cancelled. It waits for
// in-flight refreshes before returning.
func (p *Poller) Run(ctx context.Context) error {
	p.refresh(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(p.cfg.UptimeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				p.tickUptime()
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(p.cfg.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				g.Go(func() error {
					p.refresh(ctx)
					return nil
				})
			}
		}
	})

	err := g.Wait()
	logging.Debug("Poller", "Stopped polling %s", p.cfg.Username)
	return err
}

func (p *Poller) refresh(ctx context.Context) {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	snap := p.fetcher.GetStats(ctx, p.cfg.Username)
	if ctx.Err() != nil {
		return
	}

	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	if seq < p.applied {
		p.mu.Unlock()
		logging.Debug("Poller", "Discarding refresh %d, refresh %d already applied", seq, p.applied)
		return
	}
	p.applied = seq
	p.latest = snap
	p.mu.Unlock()

	if p.cfg.OnSnapshot != nil {
		p.cfg.OnSnapshot(snap)
	}
}

func (p *Poller) tickUptime() {
	if p.cfg.OnUptime == nil {
		return
	}

	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	snap := p.Latest()
	p.cfg.OnUptime(snap, snap.Uptime(p.now()))
}
