package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"streamkit/internal/credentials"
	"streamkit/internal/exchange"
	"streamkit/pkg/oauth"
)

// staticSource resolves a fixed credential, or err when set.
type staticSource struct {
	cred credentials.Credential
	err  error
}

func (s staticSource) Resolve(context.Context, credentials.Kind) (credentials.Credential, error) {
	if s.err != nil {
		return credentials.Credential{}, s.err
	}
	return s.cred, nil
}

var testCreds = staticSource{cred: credentials.Credential{ClientID: "client-id", ClientSecret: "client-secret"}}

// fakeExchanger counts grants and answers them from a function.
type fakeExchanger struct {
	mu     sync.Mutex
	grants []exchange.Grant
	ctxErr []error
	calls  atomic.Int32
	delay  time.Duration
	answer func(exchange.Grant) (*oauth.Token, error)
}

func (f *fakeExchanger) Exchange(ctx context.Context, grant exchange.Grant) (*oauth.Token, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.grants = append(f.grants, grant)
	f.ctxErr = append(f.ctxErr, ctx.Err())
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.answer == nil {
		return nil, errors.New("no answer configured")
	}
	return f.answer(grant)
}

func refreshedToken(exchange.Grant) (*oauth.Token, error) {
	return &oauth.Token{AccessToken: "fresh-token", RefreshToken: "refresh-2", ExpiresIn: 14400}, nil
}

// fakeValidator accepts exactly one token.
type fakeValidator struct {
	valid string
	calls atomic.Int32
}

func (f *fakeValidator) Validate(_ context.Context, token string) (*oauth.Validation, error) {
	f.calls.Add(1)
	if token != f.valid {
		return nil, &oauth.UpstreamError{Op: "validate", StatusCode: 401}
	}
	return &oauth.Validation{ClientID: "client-id", Login: "streamer"}, nil
}

// fakeMinter is an AppTokenProvider that counts calls.
type fakeMinter struct {
	calls atomic.Int32
	err   error
}

func (f *fakeMinter) Mint(context.Context) (*AppToken, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &AppToken{AccessToken: NewRedactedToken("app-token"), ClientID: "client-id"}, nil
}

type fixedUser struct {
	token string
	ok    bool
}

func (f fixedUser) ValidToken(context.Context) (string, bool) { return f.token, f.ok }

// newTestProvider builds a provider over a memory store with a fixed clock.
func newTestProvider(ex *fakeExchanger, now time.Time) (*UserTokenProvider, *MemoryStore, *StateStore) {
	store := NewMemoryStore()
	states := NewStateStore()
	p := NewUserTokenProvider(UserProviderConfig{
		Credentials: testCreds,
		Exchanger:   ex,
		URLBuilder:  oauth.NewClient(oauth.WithBaseURL("https://id.example.com/oauth2")),
		Validator:   &fakeValidator{valid: "stored-token"},
		Store:       store,
		States:      states,
		RedirectURI: LocalRedirectURI,
	})
	p.now = func() time.Time { return now }
	states.now = p.now
	return p, store, states
}
