package formatting

import (
	"fmt"
	"time"

	"streamkit/internal/stats"
)

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 4 {
		return s
	}
	return string(r[:max-3]) + "..."
}

// UptimeLine is the single status line the watch command rewrites every second.
func UptimeLine(snap stats.Snapshot, uptime string) string {
	if !snap.IsLive {
		return fmt.Sprintf("%s is offline", snap.UserDisplayName)
	}
	return fmt.Sprintf("%s is live: %s viewers, up %s", snap.UserDisplayName, FormatCount(snap.ViewerCount), uptime)
}

// Since formats the age of a snapshot for the watch footer.
func Since(fetchedAt, now time.Time) string {
	if fetchedAt.IsZero() {
		return "never"
	}
	return now.Sub(fetchedAt).Round(time.Second).String() + " ago"
}
