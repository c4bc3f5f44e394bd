package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUptime(t *testing.T) {
	start := time.Date(2025, 8, 17, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap Snapshot
		now  time.Time
		want string
	}{
		{"offline", Snapshot{}, start, "00:00:00"},
		{"live without start time", Snapshot{IsLive: true}, start, "00:00:00"},
		{"just started", Snapshot{IsLive: true, StartTime: start}, start, "00:00:00"},
		{"seconds", Snapshot{IsLive: true, StartTime: start}, start.Add(9 * time.Second), "00:00:09"},
		{"mixed", Snapshot{IsLive: true, StartTime: start}, start.Add(time.Hour + 2*time.Minute + 3*time.Second), "01:02:03"},
		{"long stream", Snapshot{IsLive: true, StartTime: start}, start.Add(101 * time.Hour), "101:00:00"},
		{"clock skew", Snapshot{IsLive: true, StartTime: start}, start.Add(-time.Minute), "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.Uptime(tt.now))
		})
	}
}

func TestDefaultSnapshot(t *testing.T) {
	s := DefaultSnapshot("x")

	assert.False(t, s.IsLive)
	assert.Zero(t, s.ViewerCount)
	assert.Zero(t, s.FollowerCount)
	assert.Zero(t, s.SubscriberCount)
	assert.Equal(t, "x", s.UserDisplayName)
	assert.Empty(t, s.RecentFollower)
	assert.Empty(t, s.RecentSubscriber)
	assert.Equal(t, "00:00:00", s.Uptime(time.Now()))
}
