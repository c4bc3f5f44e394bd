package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"streamkit/internal/app"
	"streamkit/internal/cli"
	"streamkit/internal/formatting"
)

// Global flags shared by every command.
var (
	configPath   string
	debug        bool
	outputFormat string
	noColor      bool
	quiet        bool
)

// rootCmd represents the base command for the streamkit application.
var rootCmd = &cobra.Command{
	Use:   "streamkit",
	Short: "Channel stats for Twitch broadcasters",
	Long: `streamkit fetches live channel statistics from the Twitch API.

Without a login it uses an app token and shows public data: live status,
viewers, followers. After "streamkit login" it acts as the broadcaster and
also shows subscriber data.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "streamkit version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration directory (default is $HOME/.config/streamkit)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newChannelCmd())
}

// loadApplication bootstraps the application for a command.
func loadApplication(cmd *cobra.Command) (*app.Application, error) {
	return app.New(cmd.Context(), app.Options{
		ConfigPath: configPath,
		Debug:      debug,
		LogOutput:  cmd.ErrOrStderr(),
	})
}

// newFormatter creates the formatter selected by --output.
func newFormatter() (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return formatting.New(formatting.Options{Format: format, Color: !noColor}), nil
}

// showProgress reports whether spinners should be drawn.
func showProgress() bool {
	return !quiet && outputFormat == string(formatting.FormatTable)
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
