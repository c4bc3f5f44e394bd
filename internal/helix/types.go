package helix

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"streamkit/internal/auth"
)

// ErrNotFound is returned by lookups that address a single resource that does not exist.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response other than a recovered 401.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error: %s returned status %d", e.Endpoint, e.StatusCode)
}

// Unwrap reports a 401 or 403 as auth.ErrPrivilegeInsufficient.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return auth.ErrPrivilegeInsufficient
	}
	return nil
}

// User is a platform account.
type User struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name"`
	Type            string    `json:"type"`
	BroadcasterType string    `json:"broadcaster_type"`
	Description     string    `json:"description"`
	ProfileImageURL string    `json:"profile_image_url"`
	OfflineImageURL string    `json:"offline_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// Stream is a live broadcast.
type Stream struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name"`
	GameID       string    `json:"game_id"`
	GameName     string    `json:"game_name"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	ViewerCount  int       `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	Language     string    `json:"language"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsMature     bool      `json:"is_mature"`
}

// Follower is one entry of a channel's follower list.
type Follower struct {
	UserID     string    `json:"user_id"`
	UserLogin  string    `json:"user_login"`
	UserName   string    `json:"user_name"`
	FollowedAt time.Time `json:"followed_at"`
}

// Subscriber is one entry of a channel's subscription list.
type Subscriber struct {
	UserID    string `json:"user_id"`
	UserLogin string `json:"user_login"`
	UserName  string `json:"user_name"`
	Tier      string `json:"tier"`
	IsGift    bool   `json:"is_gift"`
}

// page is the envelope of list endpoints.
type page[T any] struct {
	Total int `json:"total"`
	Data  []T `json:"data"`
}
