package app

import (
	"errors"
	"strings"
)

// ErrNoChannel is returned when neither an argument nor config names a channel.
var ErrNoChannel = errors.New("no channel given: pass one as an argument or set channel in config.yaml")

// Channel returns the channel to query: the first argument when present,
// otherwise the configured default. Logins are case-insensitive upstream.
func (a *Application) Channel(args []string) (string, error) {
	channel := a.Config.Channel
	if len(args) > 0 {
		channel = args[0]
	}

	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == "" {
		return "", ErrNoChannel
	}
	return channel, nil
}
