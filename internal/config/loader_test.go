package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamkit/internal/credentials"
)

// withEnv replaces the environment lookup for the duration of a test.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	original := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = original })
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o600))
}

func TestLoad_DefaultsOnly(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	want := Defaults()
	want.TokenStore.Path = filepath.Join(dir, tokenFileName)
	assert.Equal(t, want, cfg)
}

func TestLoad_DefaultDirectory(t *testing.T) {
	withEnv(t, nil)
	home := t.TempDir()

	original := osUserHomeDir
	osUserHomeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { osUserHomeDir = original })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "streamkit", "session.json"), cfg.TokenStore.Path)
}

func TestLoad_HomeDirUnavailable(t *testing.T) {
	original := osUserHomeDir
	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }
	t.Cleanup(func() { osUserHomeDir = original })

	_, err := Load("")
	assert.ErrorContains(t, err, "could not determine user config directory")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()
	writeConfig(t, dir, `
environment: production
channel: somestreamer
logFormat: json
credentials:
  mode: parameter-store
  region: us-east-1
helix:
  requestTimeout: 3s
tokenStore:
  path: /var/lib/streamkit/session.json
stats:
  refreshInterval: 1m
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "somestreamer", cfg.Channel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, credentials.ModeParameterStore, cfg.Credentials.Mode)
	assert.Equal(t, "us-east-1", cfg.Credentials.Region)
	assert.Equal(t, credentials.DefaultClientIDParameter, cfg.Credentials.ClientIDParameter, "unset keys keep their defaults")
	assert.Equal(t, 3*time.Second, cfg.Helix.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.Stats.RefreshInterval)
	assert.Equal(t, time.Second, cfg.Stats.UptimeInterval)
	assert.Equal(t, "/var/lib/streamkit/session.json", cfg.TokenStore.Path)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	withEnv(t, map[string]string{
		EnvEnvironment:     "production",
		EnvCredentialsMode: "delegated",
		EnvChannel:         "fromenv",
		EnvLogLevel:        "debug",
		EnvExchangeURL:     "https://functions.example.com/api",
	})
	dir := t.TempDir()
	writeConfig(t, dir, "channel: fromfile\nlogLevel: warn\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, credentials.ModeDelegated, cfg.Credentials.Mode)
	assert.Equal(t, "fromenv", cfg.Channel)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://functions.example.com/api", cfg.Exchange.BaseURL)
}

func TestLoad_EmptyEnvironmentValueIsIgnored(t *testing.T) {
	withEnv(t, map[string]string{EnvChannel: ""})
	dir := t.TempDir()
	writeConfig(t, dir, "channel: fromfile\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Channel)
}

func TestLoad_DotEnvSeedsEnvironment(t *testing.T) {
	const key = "STREAMKIT_TEST_DOTENV_VALUE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	withEnv(t, nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, envFileName), []byte(key+"=from-dotenv\n"), 0o600))

	_, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", os.Getenv(key))
}

func TestLoad_Errors(t *testing.T) {
	withEnv(t, nil)

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "environment: [unterminated\n")

		_, err := Load(dir)
		assert.ErrorContains(t, err, "error loading config")
	})

	t.Run("invalid values", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "environment: staging\ncredentials:\n  mode: vault\n")

		_, err := Load(dir)
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
		assert.Len(t, verrs, 2)
	})
}

func TestSave_RoundTrip(t *testing.T) {
	withEnv(t, nil)
	dir := filepath.Join(t.TempDir(), "nested")

	cfg := Defaults()
	cfg.Channel = "somestreamer"
	cfg.TokenStore.Path = filepath.Join(dir, "custom.json")
	require.NoError(t, Save(dir, cfg))

	info, err := os.Stat(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestReadFile_IgnoresEnvironment(t *testing.T) {
	withEnv(t, map[string]string{EnvChannel: "fromenv", EnvLogLevel: "debug"})
	dir := t.TempDir()
	writeConfig(t, dir, "channel: fromfile\n")

	cfg, err := ReadFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Channel)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.TokenStore.Path, "derived values are not filled in")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", loaded.Channel)
}

func TestReadFile_Missing(t *testing.T) {
	cfg, err := ReadFile(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestSources(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Sources(dir))

	writeConfig(t, dir, "channel: somestreamer\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, envFileName), []byte("TWITCH_CLIENT_ID=id\n"), 0o600))

	sources := Sources(dir)
	require.GreaterOrEqual(t, len(sources), 2)
	assert.Equal(t, filepath.Join(dir, configFileName), sources[0])
	assert.Equal(t, filepath.Join(dir, envFileName), sources[1])
}
