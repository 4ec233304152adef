package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	assert.NotNil(t, cfg.Feeds)
}

func TestNormalizeFeeds(t *testing.T) {
	cfg := &Config{
		DefaultColor: "#123",
		Feeds: []FeedConfig{
			{URL: "https://a.example/cal.ics", Name: "work"},
			{URL: "https://b.example/cal.ics", Color: "#c22"},
		},
	}
	cfg.Normalize()

	assert.Equal(t, "work", cfg.Feeds[0].ID, "ID falls back to Name")
	assert.Equal(t, "#123", cfg.Feeds[0].Color, "color falls back to default")
	assert.Equal(t, "https://b.example/cal.ics", cfg.Feeds[1].ID, "ID falls back to URL")
	assert.Equal(t, "#c22", cfg.Feeds[1].Color, "explicit color kept")
}

func TestNormalizeWeekStart(t *testing.T) {
	for in, want := range map[string]string{
		"sunday": "sunday",
		"monday": "monday",
		"":       "monday",
		"friday": "monday",
	} {
		cfg := &Config{WeekStart: in}
		cfg.Normalize()
		assert.Equal(t, want, cfg.WeekStart, "input %q", in)
	}
}

func TestFirstDayOfWeek(t *testing.T) {
	assert.Equal(t, 0, (&Config{WeekStart: "sunday"}).FirstDayOfWeek())
	assert.Equal(t, 1, (&Config{WeekStart: "monday"}).FirstDayOfWeek())
}

func TestLoadFirstRunCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "monday", cfg.WeekStart)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	orig := DefaultConfig()
	orig.WeekStart = "sunday"
	orig.Feeds = []FeedConfig{{URL: "https://a.example/cal.ics", ID: "a", Color: "#c22"}}
	require.NoError(t, Save(path, orig))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sunday", loaded.WeekStart)
	require.Len(t, loaded.Feeds, 1)
	assert.Equal(t, "#c22", loaded.Feeds[0].Color)
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}
