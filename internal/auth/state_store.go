package auth

import (
	"sync"
	"time"

	"streamkit/pkg/logging"
	"streamkit/pkg/oauth"
)

// DefaultStateExpiry is how long an authorization request stays redeemable.
const DefaultStateExpiry = 10 * time.Minute

// StateStore tracks outstanding authorization requests.
// A state value is valid once, and only within its expiry.
type StateStore struct {
	mu     sync.Mutex
	states map[string]time.Time

	expiry      time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewStateStore creates a new state store and starts its background cleanup.
// Call Stop to release it.
func NewStateStore() *StateStore {
	ss := &StateStore{
		states:      make(map[string]time.Time),
		expiry:      DefaultStateExpiry,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go ss.cleanupLoop()

	return ss
}

// Generate creates and records a fresh state value.
func (ss *StateStore) Generate() (string, error) {
	state, err := oauth.GenerateState()
	if err != nil {
		return "", err
	}

	ss.mu.Lock()
	ss.states[state] = ss.now()
	ss.mu.Unlock()

	return state, nil
}

// Validate consumes state and reports whether it matched an outstanding,
// unexpired request.
func (ss *StateStore) Validate(state string) bool {
	if state == "" {
		return false
	}

	ss.mu.Lock()
	createdAt, exists := ss.states[state]
	delete(ss.states, state)
	ss.mu.Unlock()

	if !exists {
		logging.Warn("UserToken", "Authorization state not recognised")
		return false
	}

	if age := ss.now().Sub(createdAt); age > ss.expiry {
		logging.Warn("UserToken", "Authorization state expired after %v", age.Round(time.Second))
		return false
	}

	return true
}

// Pending returns the number of outstanding requests.
func (ss *StateStore) Pending() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.states)
}

// Stop stops the background cleanup goroutine. It is safe to call more than once.
func (ss *StateStore) Stop() {
	ss.stopOnce.Do(func() {
		close(ss.stopCleanup)
	})
}

func (ss *StateStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ss.cleanup()
		case <-ss.stopCleanup:
			return
		}
	}
}

func (ss *StateStore) cleanup() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	count := 0
	for state, createdAt := range ss.states {
		if ss.now().Sub(createdAt) > ss.expiry {
			delete(ss.states, state)
			count++
		}
	}

	if count > 0 {
		logging.Debug("UserToken", "Cleaned up %d expired authorization states", count)
	}
}
