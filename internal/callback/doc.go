// Package callback receives the interactive login redirect on the local machine.
//
// A Server listens on the address registered as the redirect URI, hands the
// query of the first redirect to a Handler, and answers with a 303 to the bare
// path so the one-time code and state are not left in the browser's address bar.
// A reload of the bare path only renders the outcome page again.
//
// OpenBrowser launches the platform's default browser on the authorize URL.
package callback
