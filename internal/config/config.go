package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes one ICS subscription.
type FeedConfig struct {
	// URL is the ICS endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging; defaults
	// to Name or URL when empty.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Color is the CSS color events from this feed render in.
	Color string `yaml:"color" json:"color"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web surface.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// RenderConfig holds grid sizing and behavior. Zero values select the
// grid package defaults.
type RenderConfig struct {
	Width           int  `yaml:"width" json:"width"`
	Height          int  `yaml:"height" json:"height"`
	DayNamesHeight  int  `yaml:"day_names_height" json:"day_names_height"`
	DayNumsHeight   int  `yaml:"day_nums_height" json:"day_nums_height"`
	EventHeight     int  `yaml:"event_height" json:"event_height"`
	EventMargin     int  `yaml:"event_margin" json:"event_margin"`
	EventPaddingTop int  `yaml:"event_padding_top" json:"event_padding_top"`
	AbbrevDayNames  bool `yaml:"abbrev_day_names" json:"abbrev_day_names"`
	ShowToday       bool `yaml:"show_today" json:"show_today"`
	ShowHeader      bool `yaml:"show_header" json:"show_header"`
	UseAllDay       bool `yaml:"use_all_day" json:"use_all_day"`
	SpanHighlight   bool `yaml:"span_highlight" json:"span_highlight"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first day of the week in calendar views:
	// "sunday" or "monday" (default).
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron schedule for periodic re-render/capture.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DefaultColor is used for feeds without an explicit color.
	DefaultColor string `yaml:"default_color" json:"default_color"`

	Render RenderConfig `yaml:"render" json:"render"`

	// Feeds is the list of subscribed ICS sources.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// BasicAuth, if non-nil, protects all endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns the in-memory defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "Local",
		WeekStart:    "monday",
		RefreshCron:  "*/15 * * * *",
		DefaultColor: "#4a7dc0",
		Render: RenderConfig{
			ShowToday:     true,
			ShowHeader:    true,
			UseAllDay:     true,
			SpanHighlight: true,
		},
		Feeds: []FeedConfig{},
	}
}

// Normalize fills missing/zero values so partially-filled configs behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.DefaultColor == "" {
		c.DefaultColor = "#4a7dc0"
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
	for i := range c.Feeds {
		if c.Feeds[i].ID == "" {
			if c.Feeds[i].Name != "" {
				c.Feeds[i].ID = c.Feeds[i].Name
			} else {
				c.Feeds[i].ID = c.Feeds[i].URL
			}
		}
		if c.Feeds[i].Color == "" {
			c.Feeds[i].Color = c.DefaultColor
		}
	}
}

// FirstDayOfWeek maps WeekStart onto the grid convention (0=Sunday).
func (c *Config) FirstDayOfWeek() int {
	if c.WeekStart == "sunday" {
		return 0
	}
	return 1
}

// Load loads configuration from the given YAML path. A missing file is a
// first run: a default config is written (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory as needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
