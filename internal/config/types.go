package config

import "time"

// Config is the top-level configuration structure for streamkit.
type Config struct {
	// Environment selects the registered redirect URI: local or production.
	Environment string `yaml:"environment"`

	// Channel is the default channel for stats and watch.
	Channel string `yaml:"channel,omitempty"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	Credentials CredentialsConfig `yaml:"credentials"`
	OAuth       OAuthConfig       `yaml:"oauth"`
	Helix       HelixConfig       `yaml:"helix"`
	Exchange    ExchangeConfig    `yaml:"exchange"`
	TokenStore  TokenStoreConfig  `yaml:"tokenStore"`
	Callback    CallbackConfig    `yaml:"callback"`
	Stats       StatsConfig       `yaml:"stats"`
}

// CredentialsConfig selects where client credentials come from.
type CredentialsConfig struct {
	Mode                  string `yaml:"mode"`                            // parameter-store, delegated or env
	Region                string `yaml:"region,omitempty"`                // AWS region for parameter-store
	ClientIDParameter     string `yaml:"clientIdParameter,omitempty"`     // SSM parameter holding the client id
	ClientSecretParameter string `yaml:"clientSecretParameter,omitempty"` // SSM parameter holding the client secret
}

// OAuthConfig points at the platform's OAuth2 service.
type OAuthConfig struct {
	BaseURL string `yaml:"baseURL"`
}

// HelixConfig configures the platform API client.
type HelixConfig struct {
	BaseURL        string        `yaml:"baseURL"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// ExchangeConfig points at the backing functions used in delegated mode.
type ExchangeConfig struct {
	BaseURL string `yaml:"baseURL,omitempty"`
}

// TokenStoreConfig locates the persisted user session.
type TokenStoreConfig struct {
	// Path defaults to ~/.config/streamkit/session.json.
	Path string `yaml:"path,omitempty"`
}

// CallbackConfig configures the local login redirect receiver.
type CallbackConfig struct {
	ListenAddress string `yaml:"listenAddress"`
	TLSCertFile   string `yaml:"tlsCertFile,omitempty"`
	TLSKeyFile    string `yaml:"tlsKeyFile,omitempty"`
}

// StatsConfig configures the watch poller.
type StatsConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	UptimeInterval  time.Duration `yaml:"uptimeInterval"`
}
