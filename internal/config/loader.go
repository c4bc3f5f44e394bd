package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/streamkit"
	configFileName = "config.yaml"
	envFileName    = ".env"
	tokenFileName  = "session.json"
)

// Environment variables that override config.yaml.
const (
	EnvEnvironment     = "STREAMKIT_ENV"
	EnvCredentialsMode = "STREAMKIT_CREDENTIALS_MODE"
	EnvChannel         = "STREAMKIT_CHANNEL"
	EnvLogLevel        = "STREAMKIT_LOG_LEVEL"
	EnvExchangeURL     = "STREAMKIT_EXCHANGE_URL"
)

var (
	osUserHomeDir = os.UserHomeDir
	lookupEnv     = os.LookupEnv
)

// DefaultConfigDir returns ~/.config/streamkit.
func DefaultConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Load builds the configuration from configDir, the .env files and the environment.
// An empty configDir means DefaultConfigDir. A missing config.yaml is not an error.
// Load does not log; Sources lists what it read once logging is set up.
func Load(configDir string) (Config, error) {
	configDir, err := resolveDir(configDir)
	if err != nil {
		return Config{}, err
	}

	cfg, err := ReadFile(configDir)
	if err != nil {
		return Config{}, err
	}

	if err := loadEnvFiles(envFiles(configDir)...); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	if cfg.TokenStore.Path == "" {
		cfg.TokenStore.Path = filepath.Join(configDir, tokenFileName)
	}

	if errs := Validate(cfg); errs.HasErrors() {
		return Config{}, errs
	}

	return cfg, nil
}

// ReadFile returns the defaults overlaid with config.yaml from configDir, without
// environment overrides or derived values. It is the starting point for Save.
func ReadFile(configDir string) (Config, error) {
	configDir, err := resolveDir(configDir)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	configFilePath := filepath.Join(configDir, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	return cfg, nil
}

// Sources lists the files Load reads from configDir that exist, in load order.
func Sources(configDir string) []string {
	configDir, err := resolveDir(configDir)
	if err != nil {
		return nil
	}

	var found []string
	for _, path := range append([]string{filepath.Join(configDir, configFileName)}, envFiles(configDir)...) {
		if _, err := os.Stat(path); err == nil {
			found = append(found, path)
		}
	}
	return found
}

func resolveDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return DefaultConfigDir()
}

// envFiles are the .env files in precedence order: the config directory, then
// the working directory. godotenv never overrides a variable already set.
func envFiles(configDir string) []string {
	return []string{filepath.Join(configDir, envFileName), envFileName}
}

// loadEnvFiles seeds the environment from the .env files that exist.
func loadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("error loading %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		name   string
		target *string
	}{
		{EnvEnvironment, &cfg.Environment},
		{EnvCredentialsMode, &cfg.Credentials.Mode},
		{EnvChannel, &cfg.Channel},
		{EnvLogLevel, &cfg.LogLevel},
		{EnvExchangeURL, &cfg.Exchange.BaseURL},
	}

	for _, o := range overrides {
		if v, ok := lookupEnv(o.name); ok && v != "" {
			*o.target = v
		}
	}
}

// Save writes cfg as config.yaml into configDir. An empty configDir means DefaultConfigDir.
func Save(configDir string, cfg Config) error {
	configDir, err := resolveDir(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(configDir, configFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
