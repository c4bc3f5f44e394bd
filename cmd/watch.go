package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"streamkit/internal/formatting"
	"streamkit/internal/stats"
	"streamkit/pkg/logging"
)

const clearScreen = "\033[H\033[2J"

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [channel]",
		Short: "Keep a channel's statistics up to date",
		Long: `Refresh a channel's statistics on an interval until interrupted.

Stats are refetched every stats.refreshInterval (30s by default) and the
uptime line is redrawn every stats.uptimeInterval (1s). A login or logout
from another terminal takes effect on the next refresh.

With -o json or -o yaml every refresh is written as one document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Services.WatchSession(); err != nil {
		logging.Warn("Watch", "Session changes from other processes will not be noticed: %v", err)
	}

	out := cmd.OutOrStdout()
	interactive := outputFormat == string(formatting.FormatTable)

	onSnapshot := func(snap stats.Snapshot) {
		if interactive && !noColor {
			fmt.Fprint(out, clearScreen)
		}
		if err := formatter.FormatSnapshot(out, snap, time.Now()); err != nil {
			logging.Error("Watch", err, "failed to render snapshot")
		}
	}

	onUptime := func(snap stats.Snapshot, uptime string) {
		if !interactive || quiet {
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%s (updated %s)   ", formatting.UptimeLine(snap, uptime), formatting.Since(snap.FetchedAt, time.Now()))
	}

	poller := application.Services.NewPoller(channel, onSnapshot, onUptime)
	if err := poller.Run(ctx); err != nil {
		return err
	}

	if interactive {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	return nil
}
