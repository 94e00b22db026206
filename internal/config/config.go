package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all client configuration.
type Config struct {
	Server struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"server"`
	Poll struct {
		Foreground time.Duration `yaml:"foreground"`
		Background time.Duration `yaml:"background"`
	} `yaml:"poll"`
	Sync struct {
		Interval time.Duration `yaml:"interval"`
		Cooldown time.Duration `yaml:"cooldown"`
		Pacing   time.Duration `yaml:"pacing"`
	} `yaml:"sync"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	LogFile string `yaml:"log_file"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("FLEETWATCH_SERVER"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("FLEETWATCH_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FLEETWATCH_LOG"); v != "" {
		cfg.LogFile = v
	}

	// Defaults
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://127.0.0.1:5000"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 15 * time.Second
	}
	if cfg.Poll.Foreground == 0 {
		cfg.Poll.Foreground = 2 * time.Second
	}
	if cfg.Poll.Background == 0 {
		cfg.Poll.Background = 60 * time.Second
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 5 * time.Minute
	}
	if cfg.Sync.Cooldown == 0 {
		cfg.Sync.Cooldown = 30 * time.Minute
	}
	if cfg.Sync.Pacing == 0 {
		cfg.Sync.Pacing = 1200 * time.Millisecond
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDBPath()
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "fleetwatch.log"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if c.Poll.Foreground <= 0 || c.Poll.Background <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.Poll.Foreground > c.Poll.Background {
		return fmt.Errorf("poll.foreground must not exceed poll.background")
	}
	if c.Sync.Cooldown <= 0 {
		return fmt.Errorf("sync.cooldown must be positive")
	}
	return nil
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fleetwatch.db"
	}
	return dir + "/fleetwatch/fleetwatch.db"
}
