package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"streamkit/internal/auth"
	"streamkit/internal/callback"
	"streamkit/internal/config"
	"streamkit/internal/credentials"
	"streamkit/internal/exchange"
	"streamkit/internal/helix"
	"streamkit/internal/stats"
	"streamkit/pkg/logging"
	"streamkit/pkg/oauth"
)

// Services holds one instance of every component.
type Services struct {
	Credentials credentials.Source
	OAuth       *oauth.Client

	// Exchange is set in delegated mode only.
	Exchange *exchange.Client

	Store     *auth.FileStore
	States    *auth.StateStore
	User      *auth.UserTokenProvider
	AppTokens auth.AppTokenProvider
	Selector  *auth.Selector
	Helix     *helix.Client
	Stats     *stats.Aggregator

	cfg config.Config

	mu      sync.Mutex
	watcher *auth.StoreWatcher
}

// NewServices builds the component graph for cfg.
func NewServices(ctx context.Context, cfg config.Config, opts Options) (*Services, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Helix.RequestTimeout}
	}

	oauthClient := oauth.NewClient(
		oauth.WithHTTPClient(httpClient),
		oauth.WithBaseURL(cfg.OAuth.BaseURL),
		oauth.WithLogger(logging.Logger()),
	)

	delegated := cfg.Credentials.Mode == credentials.ModeDelegated

	var exchangeClient *exchange.Client
	if delegated {
		exchangeClient = exchange.NewClient(cfg.Exchange.BaseURL, httpClient)
	}

	creds, err := credentials.New(ctx, credentials.Options{
		Mode:                  cfg.Credentials.Mode,
		Region:                cfg.Credentials.Region,
		ClientIDParameter:     cfg.Credentials.ClientIDParameter,
		ClientSecretParameter: cfg.Credentials.ClientSecretParameter,
		Exchange:              exchangeClient,
		ParameterAPI:          opts.ParameterAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credential source: %w", err)
	}

	var (
		appTokens auth.AppTokenProvider
		exchanger auth.Exchanger
	)
	if delegated {
		appTokens = auth.NewDelegatedAppProvider(exchangeClient)
		exchanger = auth.NewDelegatedExchanger(exchangeClient)
	} else {
		appTokens = auth.NewDirectAppProvider(creds, oauthClient)
		exchanger = auth.NewDirectExchanger(creds, oauthClient)
	}

	store, err := auth.NewFileStore(cfg.TokenStore.Path)
	if err != nil {
		return nil, err
	}

	redirectURI, err := auth.RedirectURI(cfg.Environment)
	if err != nil {
		return nil, err
	}

	states := auth.NewStateStore()
	user := auth.NewUserTokenProvider(auth.UserProviderConfig{
		Credentials: creds,
		Exchanger:   exchanger,
		URLBuilder:  oauthClient,
		Validator:   oauthClient,
		Store:       store,
		States:      states,
		RedirectURI: redirectURI,
	})

	selector := auth.NewSelector(user, appTokens, creds)
	helixClient := helix.NewClient(selector, helix.Config{
		BaseURL:        cfg.Helix.BaseURL,
		RequestTimeout: cfg.Helix.RequestTimeout,
		HTTPClient:     httpClient,
	})

	return &Services{
		Credentials: creds,
		OAuth:       oauthClient,
		Exchange:    exchangeClient,
		Store:       store,
		States:      states,
		User:        user,
		AppTokens:   appTokens,
		Selector:    selector,
		Helix:       helixClient,
		Stats:       stats.NewAggregator(helixClient),
		cfg:         cfg,
	}, nil
}

// WatchSession ends the API client's selection epoch whenever the session file
// changes on disk. It is a no-op when already watching.
func (s *Services) WatchSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.Store.Path()), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	w := auth.NewStoreWatcher(s.Store.Path(), func() {
		logging.Info("Bootstrap", "Session changed on disk, reselecting token")
		s.Helix.Invalidate()
	})
	if err := w.Start(); err != nil {
		return err
	}

	s.watcher = w
	return nil
}

// NewCallbackServer creates the login redirect receiver, wired to the user provider.
func (s *Services) NewCallbackServer() *callback.Server {
	return callback.NewServer(callback.Config{
		ListenAddress: s.cfg.Callback.ListenAddress,
		Path:          callbackPath(s.User.RedirectURI()),
		TLSCertFile:   s.cfg.Callback.TLSCertFile,
		TLSKeyFile:    s.cfg.Callback.TLSKeyFile,
		SelfSigned:    strings.HasPrefix(s.User.RedirectURI(), "https://"),
	}, s.User.HandleRedirect)
}

// NewPoller creates a poller for channel using the configured intervals.
func (s *Services) NewPoller(channel string, onSnapshot func(stats.Snapshot), onUptime func(stats.Snapshot, string)) *stats.Poller {
	return stats.NewPoller(s.Stats, stats.PollerConfig{
		Username:        channel,
		RefreshInterval: s.cfg.Stats.RefreshInterval,
		UptimeInterval:  s.cfg.Stats.UptimeInterval,
		OnSnapshot:      onSnapshot,
		OnUptime:        onUptime,
	})
}

// Close stops the state store sweeper and the session watcher.
func (s *Services) Close() {
	s.States.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			logging.Warn("Bootstrap", "Failed to stop session watcher: %v", err)
		}
		s.watcher = nil
	}
}

// callbackPath is the path component of the registered redirect URI.
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
