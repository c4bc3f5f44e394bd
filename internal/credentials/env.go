package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Environment variables read by EnvSource.
const (
	EnvClientID     = "TWITCH_CLIENT_ID"
	EnvClientSecret = "TWITCH_CLIENT_SECRET"
)

// EnvSource reads credentials from the process environment.
// Both values are required since grants are performed locally.
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource creates an EnvSource reading os environment variables.
func NewEnvSource() *EnvSource {
	return &EnvSource{lookup: os.LookupEnv}
}

// NewEnvSourceFromMap creates an EnvSource backed by a fixed map.
func NewEnvSourceFromMap(env map[string]string) *EnvSource {
	return &EnvSource{lookup: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}}
}

// Resolve implements Source. The same credential backs both kinds.
func (s *EnvSource) Resolve(_ context.Context, _ Kind) (Credential, error) {
	id := s.get(EnvClientID)
	secret := s.get(EnvClientSecret)

	if id == "" || secret == "" {
		return Credential{}, fmt.Errorf("%w: %s and %s must be set", ErrNotConfigured, EnvClientID, EnvClientSecret)
	}
	return Credential{ClientID: id, ClientSecret: secret}, nil
}

// ServerCredentials returns the id and secret in the shape the exchange handlers expect.
func (s *EnvSource) ServerCredentials(ctx context.Context) (string, string, error) {
	c, err := s.Resolve(ctx, App)
	if err != nil {
		return "", "", err
	}
	return c.ClientID, c.ClientSecret, nil
}

func (s *EnvSource) get(key string) string {
	v, _ := s.lookup(key)
	return strings.TrimSpace(v)
}
