package stats

import (
	"fmt"
	"time"
)

// Snapshot is a point-in-time view of a channel.
// RecentFollower and RecentSubscriber are empty when absent.
type Snapshot struct {
	IsLive           bool      `json:"isLive" yaml:"isLive"`
	ViewerCount      int       `json:"viewerCount" yaml:"viewerCount"`
	FollowerCount    int       `json:"followerCount" yaml:"followerCount"`
	SubscriberCount  int       `json:"subscriberCount" yaml:"subscriberCount"`
	StreamTitle      string    `json:"streamTitle" yaml:"streamTitle"`
	GameName         string    `json:"gameName" yaml:"gameName"`
	StartTime        time.Time `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	ThumbnailURL     string    `json:"thumbnailUrl" yaml:"thumbnailUrl"`
	UserDisplayName  string    `json:"userDisplayName" yaml:"userDisplayName"`
	ProfileImageURL  string    `json:"profileImageUrl" yaml:"profileImageUrl"`
	RecentFollower   string    `json:"recentFollower,omitempty" yaml:"recentFollower,omitempty"`
	RecentSubscriber string    `json:"recentSubscriber,omitempty" yaml:"recentSubscriber,omitempty"`
	FetchedAt        time.Time `json:"fetchedAt" yaml:"fetchedAt"`
}

// DefaultSnapshot is returned when the user cannot be resolved.
func DefaultSnapshot(username string) Snapshot {
	return Snapshot{UserDisplayName: username}
}

// Uptime formats the time since the stream started as HH:MM:SS.
// Offline channels report 00:00:00.
func (s Snapshot) Uptime(now time.Time) string {
	if !s.IsLive || s.StartTime.IsZero() {
		return "00:00:00"
	}

	d := now.Sub(s.StartTime)
	if d < 0 {
		d = 0
	}

	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
