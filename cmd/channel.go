package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"streamkit/internal/config"
)

func newChannelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channel [name]",
		Short: "Show or set the default channel",
		Long: `Show or set the channel stats and watch use when none is given.

With a name the channel is saved to config.yaml. STREAMKIT_CHANNEL still
takes precedence when set.

Examples:
  streamkit channel
  streamkit channel somestreamer`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChannel,
	}
}

func runChannel(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Channel == "" {
			printf(cmd, "No default channel set.\n")
			return nil
		}
		printf(cmd, "%s\n", cfg.Channel)
		return nil
	}

	channel := strings.ToLower(strings.TrimSpace(args[0]))
	if channel == "" {
		return errors.New("channel name cannot be empty")
	}

	cfg, err := config.ReadFile(configPath)
	if err != nil {
		return err
	}
	cfg.Channel = channel

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	printf(cmd, "Default channel set to %s.\n", channel)
	return nil
}
