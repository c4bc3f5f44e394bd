package credentials

import (
	"context"
	"fmt"
	"sync"

	"streamkit/internal/exchange"
	"streamkit/pkg/logging"
)

// AppTokenMinter calls the credential-exchange function. *exchange.Client satisfies it.
type AppTokenMinter interface {
	MintAppToken(ctx context.Context) (*exchange.CredentialResponse, error)
}

// DelegatedSource learns the client id from the credential-exchange function.
// The secret is never returned; grants must go through the exchange functions.
type DelegatedSource struct {
	minter AppTokenMinter

	mu       sync.Mutex
	clientID string
}

// NewDelegatedSource creates a delegated source.
func NewDelegatedSource(minter AppTokenMinter) *DelegatedSource {
	return &DelegatedSource{minter: minter}
}

// Resolve implements Source. The client id is memoised after the first success.
func (s *DelegatedSource) Resolve(ctx context.Context, kind Kind) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clientID != "" {
		return Credential{ClientID: s.clientID}, nil
	}
	if s.minter == nil {
		return Credential{}, fmt.Errorf("%w: no exchange endpoint configured", ErrNotConfigured)
	}

	resp, err := s.minter.MintAppToken(ctx)
	if err != nil {
		logging.Warn("Credentials", "Credential exchange failed for %s credential: %v", kind, err)
		return Credential{}, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	s.clientID = resp.ClientID
	return Credential{ClientID: s.clientID}, nil
}
