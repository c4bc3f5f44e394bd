package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"streamkit/internal/app"
	"streamkit/internal/auth"
	"streamkit/internal/callback"
	"streamkit/internal/cli"
	"streamkit/pkg/logging"
)

// Login-specific flags
var (
	loginNoBrowser bool
	loginPaste     bool
	loginForce     bool
)

// pageGracePeriod bounds how long login waits for the browser to load the outcome page.
const pageGracePeriod = 3 * time.Second

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the broadcaster",
		Long: `Log in as the broadcaster to unlock subscriber data.

In the local environment a receiver is started on the registered redirect
URI (https://localhost:3000 by default) and the authorize page is opened in
the browser. Elsewhere, or with --paste, open the printed URL yourself and
paste the address you were redirected to.

Examples:
  streamkit login
  streamkit login --no-browser
  streamkit login --paste`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorize URL without opening a browser")
	cmd.Flags().BoolVar(&loginPaste, "paste", false, "Complete the login by pasting the redirected URL")
	cmd.Flags().BoolVar(&loginForce, "force", false, "Log in again even when a valid session exists")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, err := loadApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	user := application.Services.User
	if !loginForce && user.IsLoggedIn(ctx) {
		printf(cmd, "Already logged in. Use --force to log in again.\n")
		return nil
	}

	authURL, err := user.AuthorizationURL(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsMissing) {
			return &cli.SetupRequiredError{Reason: err}
		}
		return err
	}

	if loginPaste || application.Config.Environment != auth.EnvironmentLocal {
		return loginWithPastedURL(cmd, user, authURL)
	}
	return loginWithCallback(cmd, application, authURL)
}

func loginWithCallback(cmd *cobra.Command, application *app.Application, authURL string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), callback.Timeout)
	defer cancel()

	server := application.Services.NewCallbackServer()
	receiverURL, err := server.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start the login receiver: %w", err)
	}
	defer server.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Open this URL to authorize streamkit:\n\n  %s\n\n", authURL)
	fmt.Fprintf(out, "Waiting for the redirect on %s\n", receiverURL)
	if server.SelfSigned() {
		fmt.Fprintf(out, "The receiver uses a temporary certificate; accept the browser warning for localhost to finish.\n"+
			"Set callback.tlsCertFile and callback.tlsKeyFile to use your own, or run with --paste.\n")
	}
	if !loginNoBrowser {
		if err := callback.OpenBrowser(authURL); err != nil {
			logging.Warn("Login", "Could not open a browser: %v", err)
		}
	}

	progress := cli.StartProgress(cmd.ErrOrStderr(), "Waiting for authorization...", !showProgress())
	res, err := server.Wait(ctx)
	if err != nil {
		progress.Stop("")
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.New("timed out waiting for the authorization redirect")
		}
		return &cli.AuthFailedError{Reason: err}
	}

	select {
	case <-server.Done():
	case <-time.After(pageGracePeriod):
	}

	if !res.OK {
		progress.Stop("")
		return &cli.AuthFailedError{Reason: redirectFailure(res.Error, res.ErrorDescription)}
	}

	progress.Stop("✓ Logged in")
	return nil
}

func loginWithPastedURL(cmd *cobra.Command, user *auth.UserTokenProvider, authURL string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Open this URL to authorize streamkit:\n\n  %s\n\n", authURL)
	fmt.Fprintf(out, "Then paste the full address of the page you were redirected to:\n> ")

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err == nil {
			err = errors.New("no redirect URL given")
		}
		return &cli.AuthFailedError{Reason: err}
	}

	redirected, err := url.Parse(line)
	if err != nil {
		return &cli.AuthFailedError{Reason: fmt.Errorf("invalid redirect URL: %w", err)}
	}

	query := redirected.Query()
	if !user.HandleRedirect(cmd.Context(), query) {
		return &cli.AuthFailedError{Reason: redirectFailure(query.Get("error"), query.Get("error_description"))}
	}

	printf(cmd, "✓ Logged in\n")
	return nil
}

func redirectFailure(code, description string) error {
	switch {
	case code != "" && description != "":
		return fmt.Errorf("%s: %s", code, description)
	case code != "":
		return errors.New(code)
	default:
		return errors.New("the authorization could not be completed, run with --debug for details")
	}
}
