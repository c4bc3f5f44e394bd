package formatting

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"streamkit/internal/stats"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) *TableFormatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatSnapshot renders a snapshot as a two column table.
func (f *TableFormatter) FormatSnapshot(w io.Writer, snap stats.Snapshot, now time.Time) error {
	t := f.createTable(w)
	t.SetTitle(f.paint(text.FgHiMagenta, snap.UserDisplayName))

	status := f.paint(text.FgHiBlack, "OFFLINE")
	if snap.IsLive {
		status = f.paint(text.FgHiRed, "● LIVE")
	}

	t.AppendRow(table.Row{f.key("Status"), status})
	if snap.IsLive {
		t.AppendRow(table.Row{f.key("Title"), Truncate(snap.StreamTitle, 60)})
		t.AppendRow(table.Row{f.key("Category"), snap.GameName})
		t.AppendRow(table.Row{f.key("Viewers"), FormatCount(snap.ViewerCount)})
	}
	t.AppendRow(table.Row{f.key("Uptime"), snap.Uptime(now)})
	t.AppendSeparator()
	t.AppendRow(table.Row{f.key("Followers"), FormatCount(snap.FollowerCount)})
	t.AppendRow(table.Row{f.key("Subscribers"), FormatCount(snap.SubscriberCount)})
	t.AppendRow(table.Row{f.key("Latest follower"), orDash(snap.RecentFollower)})
	t.AppendRow(table.Row{f.key("Latest subscriber"), orDash(snap.RecentSubscriber)})

	t.Render()
	return nil
}

// FormatStatus renders the authentication status.
func (f *TableFormatter) FormatStatus(w io.Writer, status Status) error {
	t := f.createTable(w)
	t.SetTitle("Authentication")

	creds := f.paint(text.FgRed, "missing")
	if status.Credentials {
		creds = f.paint(text.FgGreen, "configured")
	}

	session := status.Session
	switch {
	case status.LoggedIn:
		session = f.paint(text.FgGreen, session)
	case status.ExpiresAt.IsZero():
		session = f.paint(text.FgYellow, session)
	default:
		session = f.paint(text.FgRed, session+" (rejected upstream)")
	}

	t.AppendRow(table.Row{f.key("Environment"), status.Environment})
	t.AppendRow(table.Row{f.key("Credentials"), fmt.Sprintf("%s (%s)", creds, status.CredentialsMode)})
	t.AppendRow(table.Row{f.key("Session"), session})
	if !status.ExpiresAt.IsZero() {
		t.AppendRow(table.Row{f.key("Expires"), status.ExpiresAt.Local().Format(time.RFC1123)})
	}
	if status.Tier != "" {
		t.AppendRow(table.Row{f.key("API tier"), status.Tier})
	}
	t.AppendRow(table.Row{f.key("Session file"), status.SessionFile})

	t.Render()
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if f.options.Color {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func (f *TableFormatter) key(s string) string {
	return f.paint(text.FgHiCyan, s)
}

func (f *TableFormatter) paint(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + FormatCount(-n)
	}

	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
