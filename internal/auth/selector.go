package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"streamkit/internal/credentials"
	"streamkit/pkg/logging"
)

// Tier is the trust level of a selected token.
type Tier int

const (
	// TierApp is an app-only token.
	TierApp Tier = iota
	// TierUser is a broadcaster token.
	TierUser
)

func (t Tier) String() string {
	switch t {
	case TierApp:
		return "APP"
	case TierUser:
		return "USER"
	default:
		return "UNKNOWN"
	}
}

// Selection is the token backing one API client epoch.
type Selection struct {
	// Epoch identifies the selection in logs.
	Epoch    string
	Token    RedactedToken
	ClientID string
	Tier     Tier
}

// UserTokens is the part of UserTokenProvider the selector needs.
type UserTokens interface {
	ValidToken(ctx context.Context) (string, bool)
}

// Selector decides which tier backs an API session. A valid user token always
// wins; the app tier is the fallback.
type Selector struct {
	user  UserTokens
	app   AppTokenProvider
	creds credentials.Source
}

// NewSelector creates a selector.
func NewSelector(user UserTokens, app AppTokenProvider, creds credentials.Source) *Selector {
	return &Selector{user: user, app: app, creds: creds}
}

// Select picks a token. The app provider is consulted only when no user token is
// available or the user client id cannot be resolved.
func (s *Selector) Select(ctx context.Context) (Selection, error) {
	if token, ok := s.user.ValidToken(ctx); ok {
		cred, err := s.creds.Resolve(ctx, credentials.User)
		if err == nil {
			sel := Selection{
				Epoch:    uuid.NewString(),
				Token:    NewRedactedToken(token),
				ClientID: cred.ClientID,
				Tier:     TierUser,
			}
			logging.Debug("Selector", "Selected %s tier, epoch=%s", sel.Tier, sel.Epoch)
			return sel, nil
		}
		logging.Warn("Selector", "User token available but client id unresolved, falling back to app tier: %v", err)
	}

	tok, err := s.app.Mint(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %w", ErrNoCredentialsAvailable, err)
	}

	sel := Selection{
		Epoch:    uuid.NewString(),
		Token:    tok.AccessToken,
		ClientID: tok.ClientID,
		Tier:     TierApp,
	}
	logging.Debug("Selector", "Selected %s tier, epoch=%s", sel.Tier, sel.Epoch)
	return sel, nil
}
