// Package logging provides subsystem-tagged logging for streamkit on top of log/slog.
//
// Every entry carries a "subsystem" attribute naming the component that produced it
// (UserToken, Helix, Stats, ...), which keeps the token lifecycle readable when several
// components log about the same request.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("UserToken", "Refreshed broadcaster token (expires %s)", expiresAt)
//	logging.Debug("Helix", "GET %s (tier=%s)", endpoint, tier)
//	logging.Warn("Selector", "No broadcaster token, falling back to app token")
//	logging.Error("Stats", err, "Follower lookup failed for %s", userID)
//
// Token values must never be passed to these functions. Use auth.RedactedToken when a
// token has to travel through code that might print it.
//
// Packages that accept an explicit *slog.Logger (pkg/oauth) can be handed Logger().
package logging
