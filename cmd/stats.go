package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"streamkit/internal/auth"
	"streamkit/internal/cli"
	"streamkit/pkg/logging"
)

var statsRequireUser bool

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [channel]",
		Short: "Show a channel's current statistics",
		Long: `Show a channel's live status, viewers, followers and subscribers.

The channel defaults to the one set in config.yaml. Subscriber data needs a
broadcaster login; without one it is reported as zero.

Examples:
  streamkit stats somestreamer
  streamkit stats -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStats,
	}

	cmd.Flags().BoolVar(&statsRequireUser, "require-login", false, "Fail with exit code 2 instead of falling back to the app token")
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	application, err := loadApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	channel, err := application.Channel(args)
	if err != nil {
		return err
	}
	svc := application.Services

	progress := cli.StartProgress(cmd.ErrOrStderr(), fmt.Sprintf("Fetching stats for %s...", channel), !showProgress())

	tier, err := svc.Helix.Tier(ctx)
	switch {
	case errors.Is(err, auth.ErrNoCredentialsAvailable):
		logging.Warn("Stats", "No credentials available, showing defaults for %s", channel)
	case err != nil:
		logging.Warn("Stats", "Token selection failed: %v", err)
	case tier == auth.TierApp && statsRequireUser:
		progress.Stop("")
		return &cli.AuthRequiredError{Reason: "subscriber data needs the broadcaster's token"}
	}

	snap := svc.Stats.GetStats(ctx, channel)
	progress.Stop("")

	return formatter.FormatSnapshot(cmd.OutOrStdout(), snap, time.Now())
}
