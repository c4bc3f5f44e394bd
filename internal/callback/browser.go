package callback

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// browserLauncher starts the command; tests replace it.
var browserLauncher = func(cmd *exec.Cmd) error {
	return cmd.Start()
}

// OpenBrowser opens rawURL in the default web browser on Linux, macOS and Windows.
// Only http and https URLs are accepted.
func OpenBrowser(rawURL string) error {
	if rawURL == "" {
		return errors.New("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q: only http and https are allowed", u.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := browserLauncher(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
