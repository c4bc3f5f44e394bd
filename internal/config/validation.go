package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"streamkit/internal/auth"
	"streamkit/internal/credentials"
	"streamkit/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks cfg and returns every problem found.
func Validate(cfg Config) ValidationErrors {
	var errs ValidationErrors

	errs.oneOf("environment", cfg.Environment, []string{auth.EnvironmentLocal, auth.EnvironmentProduction})
	errs.oneOf("credentials.mode", cfg.Credentials.Mode, credentials.Modes)

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs.Add("logLevel", err.Error(), cfg.LogLevel)
	}
	errs.oneOf("logFormat", cfg.LogFormat, []string{string(logging.FormatText), string(logging.FormatJSON)})

	errs.absoluteURL("oauth.baseURL", cfg.OAuth.BaseURL, true)
	errs.absoluteURL("helix.baseURL", cfg.Helix.BaseURL, true)
	errs.absoluteURL("exchange.baseURL", cfg.Exchange.BaseURL, cfg.Credentials.Mode == credentials.ModeDelegated)

	if cfg.Credentials.Mode == credentials.ModeParameterStore {
		errs.required("credentials.clientIdParameter", cfg.Credentials.ClientIDParameter)
		errs.required("credentials.clientSecretParameter", cfg.Credentials.ClientSecretParameter)
	}

	errs.positive("helix.requestTimeout", cfg.Helix.RequestTimeout)
	errs.positive("stats.refreshInterval", cfg.Stats.RefreshInterval)
	errs.positive("stats.uptimeInterval", cfg.Stats.UptimeInterval)

	errs.required("callback.listenAddress", cfg.Callback.ListenAddress)
	if (cfg.Callback.TLSCertFile == "") != (cfg.Callback.TLSKeyFile == "") {
		errs.Add("callback", "tlsCertFile and tlsKeyFile must be set together")
	}

	return errs
}

func (ve *ValidationErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required", value)
	}
}

func (ve *ValidationErrors) oneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	ve.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")), value)
}

func (ve *ValidationErrors) positive(field string, d time.Duration) {
	if d <= 0 {
		ve.Add(field, "must be a positive duration", d)
	}
}

func (ve *ValidationErrors) absoluteURL(field, value string, required bool) {
	if value == "" {
		if required {
			ve.Add(field, "is required")
		}
		return
	}

	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		ve.Add(field, "must be an absolute http or https URL", value)
	}
}
