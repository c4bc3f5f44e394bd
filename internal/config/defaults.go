package config

import (
	"streamkit/internal/auth"
	"streamkit/internal/callback"
	"streamkit/internal/credentials"
	"streamkit/internal/helix"
	"streamkit/internal/stats"
	"streamkit/pkg/logging"
	"streamkit/pkg/oauth"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Environment: auth.EnvironmentLocal,
		LogLevel:    "info",
		LogFormat:   string(logging.FormatText),
		Credentials: CredentialsConfig{
			Mode:                  credentials.ModeEnv,
			Region:                credentials.DefaultRegion,
			ClientIDParameter:     credentials.DefaultClientIDParameter,
			ClientSecretParameter: credentials.DefaultClientSecretParameter,
		},
		OAuth: OAuthConfig{
			BaseURL: oauth.DefaultBaseURL,
		},
		Helix: HelixConfig{
			BaseURL:        helix.DefaultBaseURL,
			RequestTimeout: helix.DefaultRequestTimeout,
		},
		Callback: CallbackConfig{
			ListenAddress: callback.DefaultListenAddress,
		},
		Stats: StatsConfig{
			RefreshInterval: stats.DefaultRefreshInterval,
			UptimeInterval:  stats.DefaultUptimeInterval,
		},
	}
}
