package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultTokenFile is the session file relative to the user's home directory.
const DefaultTokenFile = ".config/streamkit/session.json"

// FileStore persists the session as a JSON object holding the three fields.
//
// SECURITY: This store handles sensitive OAuth credentials.
//   - The file is created with 0600 permissions (owner read/write only)
//   - The directory is created with 0700 permissions (owner only)
//   - Writes go through a temporary file and an atomic rename
//   - Token values are NEVER logged
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store at path. An empty path uses DefaultTokenFile
// under the home directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, DefaultTokenFile)
	}

	return &FileStore{path: path}, nil
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements TokenStore.
func (s *FileStore) Load() (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G304 -- path comes from configuration, not request input
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		slog.Warn("Ignoring unreadable session file", "path", s.path, "error", err.Error())
		return nil, nil
	}

	return recordFromFields(fields), nil
}

// Save implements TokenStore.
func (s *FileStore) Save(rec *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(rec); err != nil {
		slog.Warn("SECURITY_AUDIT: session storage failed",
			"event", "token_store_failed",
			"path", s.path,
			"error", err.Error(),
		)
		return err
	}

	slog.Info("SECURITY_AUDIT: session stored",
		"event", "token_stored",
		"path", s.path,
		"expiry", rec.ExpiresAt.Format(time.RFC3339),
		"has_refresh_token", rec.RefreshToken != "",
	)
	return nil
}

func (s *FileStore) write(rec *TokenRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(fieldsFromRecord(rec), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// CreateTemp creates the file with mode 0600.
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// Clear implements TokenStore. Clearing an absent session is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("SECURITY_AUDIT: session deletion failed",
			"event", "token_delete_failed",
			"path", s.path,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	slog.Info("SECURITY_AUDIT: session cleared",
		"event", "token_deleted",
		"path", s.path,
	)
	return nil
}
