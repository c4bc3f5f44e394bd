package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"streamkit/internal/config"
	"streamkit/pkg/logging"
)

// Application is a bootstrapped streamkit process: its configuration and services.
type Application struct {
	Config   config.Config
	Services *Services
}

// New loads configuration, configures logging and builds the services.
//
// Example:
//
//	application, err := app.New(ctx, app.Options{ConfigPath: configPath})
//	if err != nil {
//	    return err
//	}
//	defer application.Close()
func New(ctx context.Context, opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := initLogging(cfg, opts); err != nil {
		return nil, err
	}
	logSources(opts.ConfigPath)

	services, err := NewServices(ctx, cfg, opts)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logging.Debug("Bootstrap", "Initialized services: environment=%s credentials=%s", cfg.Environment, cfg.Credentials.Mode)

	return &Application{
		Config:   cfg,
		Services: services,
	}, nil
}

// Close releases background resources.
func (a *Application) Close() {
	a.Services.Close()
}

// logSources reports the files configuration came from. It runs after initLogging
// so the lines follow --debug and the configured format.
func logSources(configDir string) {
	sources := config.Sources(configDir)
	if len(sources) == 0 {
		logging.Debug("Config", "No config.yaml or .env found, using defaults")
		return
	}
	for _, source := range sources {
		logging.Debug("Config", "Loaded configuration from %s", source)
	}
}

func initLogging(cfg config.Config, opts Options) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if opts.Debug {
		level = logging.LevelDebug
	}

	var out io.Writer = os.Stderr
	if opts.LogOutput != nil {
		out = opts.LogOutput
	}

	logging.Init(level, logging.Format(cfg.LogFormat), out)
	return nil
}
