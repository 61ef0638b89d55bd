// Package config loads the watcher client's configuration from an
// optional TOML file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/yourorg/meteo-alertes/internal/model"
)

// Config holds the watcher's settings.
type Config struct {
	ServerURL      string `toml:"server_url"`
	UseWebSocket   bool   `toml:"use_websocket"`
	PollSeconds    int    `toml:"poll_interval_seconds"`
	TimeoutSeconds int    `toml:"request_timeout_seconds"`

	Notifications NotificationConfig `toml:"notifications"`
}

// NotificationConfig controls desktop notifications.
type NotificationConfig struct {
	SystemNotify bool   `toml:"system_notify"`
	MinLevel     string `toml:"min_level"` // yellow, orange or red
}

func defaults() Config {
	return Config{
		UseWebSocket:   false,
		PollSeconds:    30,
		TimeoutSeconds: 10,
		Notifications: NotificationConfig{
			SystemNotify: true,
			MinLevel:     string(model.LevelYellow),
		},
	}
}

// Load reads the TOML file at path (missing file is fine), then applies
// environment overrides. ServerURL is the only required setting.
func Load(path string) (*Config, error) {
	c := defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
			log.Printf("INFO: config file %s not found, using defaults and environment", path)
		}
	}

	if v := os.Getenv("ALERTS_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("ALERTS_USE_WEBSOCKET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UseWebSocket = b
		} else {
			log.Printf("WARNING: invalid boolean for ALERTS_USE_WEBSOCKET: %q, keeping %t", v, c.UseWebSocket)
		}
	}
	if v := os.Getenv("ALERTS_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PollSeconds = n
		} else {
			log.Printf("WARNING: invalid integer for ALERTS_POLL_INTERVAL_SECONDS: %q, keeping %d", v, c.PollSeconds)
		}
	}

	if c.ServerURL == "" {
		return nil, errors.New("server_url (or ALERTS_SERVER_URL) is required")
	}
	if c.PollSeconds <= 0 {
		c.PollSeconds = 30
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if lvl := model.Level(c.Notifications.MinLevel); !lvl.Valid() || lvl == model.LevelNone {
		log.Printf("WARNING: invalid notifications.min_level %q, keeping %q", c.Notifications.MinLevel, model.LevelYellow)
		c.Notifications.MinLevel = string(model.LevelYellow)
	}

	return &c, nil
}

// PollInterval returns the polling period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// levelRank orders severities for the notification threshold.
var levelRank = map[model.Level]int{
	model.LevelNone:   0,
	model.LevelYellow: 1,
	model.LevelOrange: 2,
	model.LevelRed:    3,
}

// ShouldNotify reports whether a record meets the configured criteria
// for a desktop notification.
func (c *Config) ShouldNotify(rec model.AlertRecord) bool {
	if !c.Notifications.SystemNotify || !rec.Active {
		return false
	}
	return levelRank[rec.Level] >= levelRank[model.Level(c.Notifications.MinLevel)]
}
