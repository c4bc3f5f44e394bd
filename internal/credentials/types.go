package credentials

import (
	"context"
	"errors"
)

// Kind identifies the grant a credential is resolved for.
type Kind int

const (
	// App is the client-credentials grant.
	App Kind = iota
	// User is the authorization-code grant.
	User
)

func (k Kind) String() string {
	switch k {
	case App:
		return "app"
	case User:
		return "user"
	default:
		return "unknown"
	}
}

// Credential is a platform client id and, when available, its secret.
// An empty ClientSecret means the secret is withheld and grants must be delegated.
type Credential struct {
	ClientID     string
	ClientSecret string
}

// HasSecret reports whether the secret is available locally.
func (c Credential) HasSecret() bool {
	return c.ClientSecret != ""
}

// ErrNotConfigured is returned when no credential can be resolved from the configured backend.
var ErrNotConfigured = errors.New("credentials not configured")

// Source resolves credentials for a grant kind.
type Source interface {
	Resolve(ctx context.Context, kind Kind) (Credential, error)
}

// Mode names the configured credential backend.
const (
	ModeParameterStore = "parameter-store"
	ModeDelegated      = "delegated"
	ModeEnv            = "env"
)

// Modes lists every supported mode.
var Modes = []string{ModeParameterStore, ModeDelegated, ModeEnv}
