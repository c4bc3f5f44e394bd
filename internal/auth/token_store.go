package auth

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Keys of the three persisted fields of a user session.
const (
	KeyAccessToken  = "twitch_access_token"
	KeyRefreshToken = "twitch_refresh_token"
	KeyExpiresAt    = "twitch_expires_at"
)

// TokenRecord is a persisted user token.
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenStore persists the user session.
//
// Load returns (nil, nil) when no usable session is stored. A stored access token
// without a parseable expiry counts as no session.
type TokenStore interface {
	Load() (*TokenRecord, error)
	Save(rec *TokenRecord) error
	Clear() error
}

// recordFromFields decodes the three persisted fields.
func recordFromFields(fields map[string]string) *TokenRecord {
	access := strings.TrimSpace(fields[KeyAccessToken])
	if access == "" {
		return nil
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(fields[KeyExpiresAt]), 10, 64)
	if err != nil || ms <= 0 {
		return nil
	}

	return &TokenRecord{
		AccessToken:  access,
		RefreshToken: fields[KeyRefreshToken],
		ExpiresAt:    time.UnixMilli(ms),
	}
}

// fieldsFromRecord encodes a record as the three persisted fields.
// The expiry is stored as decimal epoch milliseconds.
func fieldsFromRecord(rec *TokenRecord) map[string]string {
	return map[string]string{
		KeyAccessToken:  rec.AccessToken,
		KeyRefreshToken: rec.RefreshToken,
		KeyExpiresAt:    strconv.FormatInt(rec.ExpiresAt.UnixMilli(), 10),
	}
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	fields map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{fields: make(map[string]string)}
}

// Load implements TokenStore.
func (s *MemoryStore) Load() (*TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recordFromFields(s.fields), nil
}

// Save implements TokenStore.
func (s *MemoryStore) Save(rec *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = fieldsFromRecord(rec)
	return nil
}

// Clear implements TokenStore.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = make(map[string]string)
	return nil
}

// Set writes a single raw field.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[key] = value
}

// Get reads a single raw field.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.fields[key]
	return v, ok
}

// Len returns the number of raw fields present.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}
