// Package app provides application bootstrap and dependency wiring for streamkit.
//
// Every component is constructed exactly once per process, here, and handed to
// its consumers explicitly. Nothing else in the module holds package-level
// instances.
//
// # Bootstrap
//
// New performs the complete bootstrap sequence:
//
//  1. Loads configuration (config.Load) from the --config directory or ~/.config/streamkit
//  2. Configures logging from logLevel/logFormat, with --debug forcing debug level
//  3. Builds the services (NewServices)
//
// # Services
//
// The dependency graph, leaves first:
//
//	credentials.Source ─┬─> auth.AppTokenProvider ─┐
//	                    └─> auth.UserTokenProvider ─┴─> auth.Selector ─> helix.Client ─> stats.Aggregator
//
// In delegated mode the credential source, the app token provider and the user
// token exchanger all talk to the exchange functions through one exchange.Client.
// In the other modes they use pkg/oauth directly with the resolved secret.
//
// The user session lives in an auth.FileStore. WatchSession starts an
// auth.StoreWatcher on it so a login or logout from another process ends the
// API client's current selection epoch.
package app
