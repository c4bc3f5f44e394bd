package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "unknown environment",
			mutate: func(c *Config) { c.Environment = "staging" },
			fields: []string{"environment"},
		},
		{
			name:   "unknown log level and format",
			mutate: func(c *Config) { c.LogLevel = "verbose"; c.LogFormat = "xml" },
			fields: []string{"logLevel", "logFormat"},
		},
		{
			name:   "delegated mode needs an exchange URL",
			mutate: func(c *Config) { c.Credentials.Mode = "delegated" },
			fields: []string{"exchange.baseURL"},
		},
		{
			name: "delegated mode with an exchange URL",
			mutate: func(c *Config) {
				c.Credentials.Mode = "delegated"
				c.Exchange.BaseURL = "https://functions.example.com/api"
			},
		},
		{
			name:   "relative exchange URL",
			mutate: func(c *Config) { c.Exchange.BaseURL = "/api" },
			fields: []string{"exchange.baseURL"},
		},
		{
			name: "parameter-store needs parameter names",
			mutate: func(c *Config) {
				c.Credentials.Mode = "parameter-store"
				c.Credentials.ClientSecretParameter = " "
			},
			fields: []string{"credentials.clientSecretParameter"},
		},
		{
			name: "non-positive durations",
			mutate: func(c *Config) {
				c.Helix.RequestTimeout = 0
				c.Stats.RefreshInterval = -1
			},
			fields: []string{"helix.requestTimeout", "stats.refreshInterval"},
		},
		{
			name:   "half configured TLS",
			mutate: func(c *Config) { c.Callback.TLSKeyFile = "key.pem" },
			fields: []string{"callback"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)

			errs := Validate(cfg)

			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tc.fields, fields)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "no validation errors", errs.Error())
	assert.False(t, errs.HasErrors())

	errs.Add("environment", "must be one of: local, production", "staging")
	assert.Equal(t, "field 'environment': must be one of: local, production", errs.Error())

	errs.Add("", "tls misconfigured")
	assert.Equal(t, "validation failed: field 'environment': must be one of: local, production; tls misconfigured", errs.Error())
	assert.True(t, errs.HasErrors())
}
