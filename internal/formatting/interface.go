// Package formatting renders streamkit output for the terminal.
//
// Every command that prints data goes through a Formatter so that --output
// switches between a table for people and JSON or YAML for scripts.
package formatting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"streamkit/internal/stats"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists every supported output format.
var Formats = []OutputFormat{FormatTable, FormatJSON, FormatYAML}

// ParseFormat parses an --output value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
}

// Status describes the local authentication state for the status command.
type Status struct {
	Environment     string    `json:"environment" yaml:"environment"`
	CredentialsMode string    `json:"credentialsMode" yaml:"credentialsMode"`
	Credentials     bool      `json:"credentialsConfigured" yaml:"credentialsConfigured"`
	Session         string    `json:"session" yaml:"session"`
	LoggedIn        bool      `json:"loggedIn" yaml:"loggedIn"`
	ExpiresAt       time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Tier            string    `json:"tier,omitempty" yaml:"tier,omitempty"`
	SessionFile     string    `json:"sessionFile" yaml:"sessionFile"`
}

// Formatter writes snapshots and status in one output format.
type Formatter interface {
	FormatSnapshot(w io.Writer, snap stats.Snapshot, now time.Time) error
	FormatStatus(w io.Writer, status Status) error
}

// New creates the formatter for options.Format.
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return NewTableFormatter(options)
	}
}
