package formatting

import (
	"encoding/json"
	"io"
	"time"

	"streamkit/internal/stats"
)

// JSONFormatter writes indented JSON.
type JSONFormatter struct{}

// snapshotView adds the derived uptime to a snapshot for machine output.
type snapshotView struct {
	stats.Snapshot `yaml:",inline"`
	Uptime         string `json:"uptime" yaml:"uptime"`
}

// FormatSnapshot writes the snapshot and its uptime.
func (f *JSONFormatter) FormatSnapshot(w io.Writer, snap stats.Snapshot, now time.Time) error {
	return f.write(w, snapshotView{Snapshot: snap, Uptime: snap.Uptime(now)})
}

// FormatStatus writes the status.
func (f *JSONFormatter) FormatStatus(w io.Writer, status Status) error {
	return f.write(w, status)
}

func (f *JSONFormatter) write(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
