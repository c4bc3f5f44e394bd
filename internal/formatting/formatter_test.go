package formatting

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"streamkit/internal/stats"
)

var now = time.Date(2025, 8, 17, 22, 10, 0, 0, time.UTC)

func liveSnapshot() stats.Snapshot {
	return stats.Snapshot{
		IsLive:           true,
		ViewerCount:      1234,
		FollowerCount:    56789,
		SubscriberCount:  42,
		StreamTitle:      "Any% practice",
		GameName:         "Celeste",
		StartTime:        now.Add(-(time.Hour + 2*time.Minute + 3*time.Second)),
		UserDisplayName:  "Streamer",
		RecentFollower:   "NewFan",
		RecentSubscriber: "",
		FetchedAt:        now,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tc := range tests {
		got, err := ParseFormat(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}
}

func TestNew(t *testing.T) {
	assert.IsType(t, &TableFormatter{}, New(Options{}))
	assert.IsType(t, &TableFormatter{}, New(Options{Format: FormatTable}))
	assert.IsType(t, &JSONFormatter{}, New(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, New(Options{Format: FormatYAML}))
}

func TestTableFormatter_Snapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{}).FormatSnapshot(&buf, liveSnapshot(), now))

	out := buf.String()
	for _, want := range []string{"Streamer", "LIVE", "Any% practice", "Celeste", "1,234", "56,789", "01:02:03", "NewFan"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestTableFormatter_OfflineSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{}).FormatSnapshot(&buf, stats.DefaultSnapshot("somebody"), now))

	out := buf.String()
	assert.Contains(t, out, "OFFLINE")
	assert.Contains(t, out, "00:00:00")
	assert.NotContains(t, out, "Viewers")
}

func TestTableFormatter_Status(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   []string
	}{
		{
			name: "logged in",
			status: Status{
				Environment:     "local",
				CredentialsMode: "env",
				Credentials:     true,
				Session:         "valid",
				LoggedIn:        true,
				ExpiresAt:       now.Add(3 * time.Hour),
				Tier:            "USER",
				SessionFile:     "/home/me/.config/streamkit/session.json",
			},
			want: []string{"configured (env)", "valid", "USER", "session.json", "Expires"},
		},
		{
			name: "logged out without credentials",
			status: Status{
				Environment:     "production",
				CredentialsMode: "parameter-store",
				Session:         "logged out",
				SessionFile:     "/tmp/session.json",
			},
			want: []string{"missing (parameter-store)", "logged out"},
		},
		{
			name: "stored token rejected",
			status: Status{
				Environment:     "local",
				CredentialsMode: "env",
				Credentials:     true,
				Session:         "near expiry",
				ExpiresAt:       now.Add(30 * time.Minute),
			},
			want: []string{"near expiry (rejected upstream)"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewTableFormatter(Options{}).FormatStatus(&buf, tc.status))
			for _, want := range tc.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestTableFormatter_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{Color: true}).FormatSnapshot(&buf, liveSnapshot(), now))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestJSONFormatter_Snapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).FormatSnapshot(&buf, liveSnapshot(), now))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["isLive"])
	assert.Equal(t, float64(1234), decoded["viewerCount"])
	assert.Equal(t, "01:02:03", decoded["uptime"])
	assert.NotContains(t, decoded, "recentSubscriber")
}

func TestYAMLFormatter_Snapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).FormatSnapshot(&buf, liveSnapshot(), now))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["isLive"])
	assert.Equal(t, 56789, decoded["followerCount"])
	assert.Equal(t, "01:02:03", decoded["uptime"])
}

func TestMachineFormatters_Status(t *testing.T) {
	status := Status{Environment: "local", CredentialsMode: "env", Session: "logged out", SessionFile: "/tmp/s.json"}

	var jsonBuf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).FormatStatus(&jsonBuf, status))
	assert.Contains(t, jsonBuf.String(), `"session": "logged out"`)
	assert.Contains(t, jsonBuf.String(), `"credentialsConfigured": false`)

	var yamlBuf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).FormatStatus(&yamlBuf, status))
	assert.Contains(t, yamlBuf.String(), "session: logged out")
	assert.NotContains(t, yamlBuf.String(), "tier:")
}
