package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"hoteldesk/internal/api"
	"hoteldesk/internal/live"
	"hoteldesk/internal/logging"
	"hoteldesk/internal/model"

	"gopkg.in/yaml.v3"
)

// DefaultBackendURL is the backend used when nothing else is configured.
const DefaultBackendURL = "http://localhost:5000"

// Config is the contents of config.yaml.
type Config struct {
	Backend        BackendConfig            `yaml:"backend"`
	Live           live.Config              `yaml:"live"`
	Refresh        map[string]time.Duration `yaml:"refresh"`
	SearchDebounce time.Duration            `yaml:"search_debounce"`
	ExportDir      string                   `yaml:"export_dir"`
	DBPath         string                   `yaml:"db_path"`
	Log            logging.Config           `yaml:"log"`

	// Path is the file the config was loaded from (not serialized).
	Path string `yaml:"-"`
}

// BackendConfig points at the hotel REST backend.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration for a fresh install rooted at
// dir, usually ~/.hoteldesk.
func DefaultConfig(dir string) *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
			Timeout: api.DefaultTimeout,
		},
		Live: live.DefaultConfig(),
		Refresh: map[string]time.Duration{
			string(model.ViewQueries): 30 * time.Second,
			string(model.ViewAccess):  60 * time.Second,
		},
		SearchDebounce: 300 * time.Millisecond,
		ExportDir:      filepath.Join(dir, "exports"),
		DBPath:         filepath.Join(dir, "hoteldesk.db"),
		Log: logging.Config{
			Level:      "info",
			Format:     "console",
			Filename:   filepath.Join(dir, "hoteldesk.log"),
			MaxSize:    10,
			MaxDays:    14,
			MaxBackups: 3,
		},
	}
}

// LoadConfig reads path over the defaults for its directory. found is false
// when the file does not exist; the defaults are returned then.
func LoadConfig(path string) (cfg *Config, found bool, err error) {
	cfg = DefaultConfig(filepath.Dir(path))
	cfg.Path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return nil, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, true, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, true, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	for name, d := range c.Refresh {
		if !model.View(name).Valid() {
			return fmt.Errorf("refresh.%s: unknown view", name)
		}
		if d < 0 {
			return fmt.Errorf("refresh.%s must not be negative", name)
		}
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search_debounce must not be negative")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	return nil
}

// RefreshIntervals returns the per-view auto refresh intervals. Views not
// listed keep their built-in interval.
func (c *Config) RefreshIntervals() map[model.View]time.Duration {
	out := make(map[model.View]time.Duration, len(c.Refresh))
	for name, d := range c.Refresh {
		out[model.View(name)] = d
	}
	return out
}
