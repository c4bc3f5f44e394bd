// Package cli holds the pieces shared by the streamkit commands: the error
// types that map onto process exit codes, and the progress spinner.
package cli
