package cmd

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored broadcaster session",
		Long: `Remove the stored broadcaster session.

Requests fall back to the app token until the next login. Running logout
when already logged out is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Services.User.Logout(cmd.Context()); err != nil {
				return err
			}

			printf(cmd, "Logged out.\n")
			return nil
		},
	}
}
