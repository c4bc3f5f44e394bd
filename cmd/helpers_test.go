package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"streamkit/internal/credentials"
)

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// resetFlags restores every package-level flag to its default.
func resetFlags() {
	configPath = ""
	debug = false
	outputFormat = "table"
	noColor = true
	quiet = false
	loginNoBrowser = true
	loginPaste = false
	loginForce = false
	statusCheck = false
	statsRequireUser = false
}

type result struct {
	stdout *syncBuffer
	stderr *syncBuffer
	err    error
}

// run executes the root command with args and returns its output.
func run(t *testing.T, stdin io.Reader, stdout *syncBuffer, args ...string) result {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	if stdout == nil {
		stdout = &syncBuffer{}
	}
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	stderr := &syncBuffer{}

	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return result{stdout: stdout, stderr: stderr, err: err}
}

// platform fakes the OAuth service under /oauth2 and the REST API under /helix.
type platform struct {
	server *httptest.Server
}

func newPlatform(t *testing.T) *platform {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.PostForm.Get("grant_type") {
		case "client_credentials":
			writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "app-token", "expires_in": 5000000, "token_type": "bearer"})
		case "authorization_code":
			if r.PostForm.Get("code") != "good-code" {
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{"status": 400, "message": "Invalid authorization code"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"access_token":  "user-token",
				"refresh_token": "refresh-token",
				"expires_in":    14400,
				"scope":         []string{"user:read:email", "channel:read:subscriptions", "moderator:read:followers"},
				"token_type":    "bearer",
			})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"status": 400, "message": "Invalid refresh token"})
		}
	})
	mux.HandleFunc("/oauth2/validate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth user-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": 401, "message": "invalid access token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"client_id": "client-id", "login": "streamer", "user_id": "42", "expires_in": 14000})
	})
	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]string{{"id": "42", "login": r.URL.Query().Get("login"), "display_name": "Streamer"}},
		})
	})
	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	})
	mux.HandleFunc("/helix/channels/followers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"total": 1337, "data": []map[string]string{{"user_name": "NewFan"}}})
	})
	mux.HandleFunc("/helix/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"message": "Missing User OAUTH Token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"total": 7, "data": []map[string]string{{"user_name": "Supporter"}}})
	})

	p := &platform{server: httptest.NewServer(mux)}
	t.Cleanup(p.server.Close)
	return p
}

// configDir writes a config.yaml pointing at the platform and returns its directory.
func (p *platform) configDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	content := fmt.Sprintf(`environment: local
channel: streamer
credentials:
  mode: env
oauth:
  baseURL: %s/oauth2
helix:
  baseURL: %s/helix
callback:
  listenAddress: 127.0.0.1:0
`, p.server.URL, p.server.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func withCredentials(t *testing.T) {
	t.Setenv(credentials.EnvClientID, "client-id")
	t.Setenv(credentials.EnvClientSecret, "client-secret")
}

func withoutCredentials(t *testing.T) {
	t.Setenv(credentials.EnvClientID, "")
	t.Setenv(credentials.EnvClientSecret, "")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
