package cmd

import (
	"github.com/spf13/cobra"

	"streamkit/internal/cli"
	"streamkit/internal/credentials"
	"streamkit/internal/formatting"
)

var statusCheck bool

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show credential and session status",
		Long: `Show whether client credentials resolve, the state of the stored
broadcaster session, and the API tier requests would use.

With --check the command exits with code 2 when no valid session exists,
which is convenient in scripts.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}

	cmd.Flags().BoolVar(&statusCheck, "check", false, "Exit with code 2 when not logged in")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
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
	svc := application.Services

	status := formatting.Status{
		Environment:     application.Config.Environment,
		CredentialsMode: application.Config.Credentials.Mode,
		Session:         svc.User.State().String(),
		SessionFile:     svc.Store.Path(),
	}

	if _, err := svc.Credentials.Resolve(ctx, credentials.User); err == nil {
		status.Credentials = true
	}

	rec, err := svc.User.Session()
	if err != nil {
		return err
	}
	if rec != nil {
		status.ExpiresAt = rec.ExpiresAt
		status.LoggedIn = svc.User.IsLoggedIn(ctx)
	}

	if status.Credentials {
		if tier, err := svc.Helix.Tier(ctx); err == nil {
			status.Tier = tier.String()
		}
	}

	if err := formatter.FormatStatus(cmd.OutOrStdout(), status); err != nil {
		return err
	}

	if statusCheck && !status.LoggedIn {
		return &cli.AuthRequiredError{Reason: "no valid broadcaster session"}
	}
	return nil
}
