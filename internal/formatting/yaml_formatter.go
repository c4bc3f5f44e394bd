package formatting

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"streamkit/internal/stats"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct{}

// FormatSnapshot writes the snapshot and its uptime.
func (f *YAMLFormatter) FormatSnapshot(w io.Writer, snap stats.Snapshot, now time.Time) error {
	return f.write(w, snapshotView{Snapshot: snap, Uptime: snap.Uptime(now)})
}

// FormatStatus writes the status.
func (f *YAMLFormatter) FormatStatus(w io.Writer, status Status) error {
	return f.write(w, status)
}

func (f *YAMLFormatter) write(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
