package app

import (
	"io"
	"net/http"

	"streamkit/internal/credentials"
)

// Options holds the bootstrap settings that come from the command line rather
// than from config.yaml.
type Options struct {
	// ConfigPath is the configuration directory. Empty means ~/.config/streamkit.
	ConfigPath string

	// Debug forces debug-level logging.
	Debug bool

	// LogOutput receives log lines. Nil means os.Stderr.
	LogOutput io.Writer

	// HTTPClient overrides the client shared by every outbound call.
	HTTPClient *http.Client

	// ParameterAPI overrides the SSM client in parameter-store mode.
	ParameterAPI credentials.ParameterAPI
}
