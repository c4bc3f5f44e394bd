// Package config provides configuration management for streamkit.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/streamkit; commands accept --config to point elsewhere.
//
// # Sources
//
// Values are layered, later sources winning:
//  1. built-in defaults (Defaults)
//  2. config.yaml in the configuration directory
//  3. the process environment, optionally seeded from .env files in the
//     configuration directory and the working directory
//
// The environment overrides are:
//
//	STREAMKIT_ENV               environment (local or production)
//	STREAMKIT_CREDENTIALS_MODE  credentials.mode
//	STREAMKIT_CHANNEL           channel
//	STREAMKIT_LOG_LEVEL         logLevel
//	STREAMKIT_EXCHANGE_URL      exchange.baseURL
//
// .env files are also the usual home of TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET
// for the env credential mode. Variables already present in the environment are
// never overwritten by a .env file.
//
// # Example
//
//	environment: local
//	channel: somestreamer
//	credentials:
//	  mode: parameter-store
//	  region: ap-southeast-2
//	helix:
//	  requestTimeout: 10s
//	stats:
//	  refreshInterval: 30s
//
// Load validates the result and reports every problem at once as ValidationErrors.
package config
