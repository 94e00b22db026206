package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ============================================================
// Loading
// ============================================================

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "http://127.0.0.1:5000" {
		t.Fatalf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 15*time.Second {
		t.Fatalf("timeout = %v", cfg.Server.Timeout)
	}
	if cfg.Poll.Foreground != 2*time.Second || cfg.Poll.Background != 60*time.Second {
		t.Fatalf("poll = %v/%v", cfg.Poll.Foreground, cfg.Poll.Background)
	}
	if cfg.Sync.Interval != 5*time.Minute {
		t.Fatalf("sync interval = %v", cfg.Sync.Interval)
	}
	if cfg.Sync.Cooldown != 30*time.Minute {
		t.Fatalf("cooldown = %v", cfg.Sync.Cooldown)
	}
	if cfg.Sync.Pacing != 1200*time.Millisecond {
		t.Fatalf("pacing = %v", cfg.Sync.Pacing)
	}
	if cfg.Database.Path == "" {
		t.Fatal("database path should default to a non-empty value")
	}
	if cfg.LogFile != "fleetwatch.log" {
		t.Fatalf("log file = %q", cfg.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: http://10.0.0.5:8080
  timeout: 5s
poll:
  foreground: 3s
  background: 90s
sync:
  interval: 10m
  cooldown: 1h
  pacing: 500ms
database:
  path: /tmp/fw.db
log_file: /tmp/fw.log
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "http://10.0.0.5:8080" || cfg.Server.Timeout != 5*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Poll.Foreground != 3*time.Second || cfg.Poll.Background != 90*time.Second {
		t.Fatalf("poll = %+v", cfg.Poll)
	}
	if cfg.Sync.Interval != 10*time.Minute || cfg.Sync.Cooldown != time.Hour || cfg.Sync.Pacing != 500*time.Millisecond {
		t.Fatalf("sync = %+v", cfg.Sync)
	}
	if cfg.Database.Path != "/tmp/fw.db" || cfg.LogFile != "/tmp/fw.log" {
		t.Fatalf("paths = %q %q", cfg.Database.Path, cfg.LogFile)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: http://10.0.0.5:8080
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "http://10.0.0.5:8080" {
		t.Fatalf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Poll.Foreground != 2*time.Second {
		t.Fatalf("unspecified poll.foreground should default, got %v", cfg.Poll.Foreground)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: http://from-file
database:
  path: /from/file.db
`)
	t.Setenv("FLEETWATCH_SERVER", "http://from-env")
	t.Setenv("FLEETWATCH_DB", "/from/env.db")
	t.Setenv("FLEETWATCH_LOG", "/from/env.log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "http://from-env" {
		t.Fatalf("env should override file: %q", cfg.Server.BaseURL)
	}
	if cfg.Database.Path != "/from/env.db" || cfg.LogFile != "/from/env.log" {
		t.Fatalf("paths = %q %q", cfg.Database.Path, cfg.LogFile)
	}
}

// ============================================================
// Validation
// ============================================================

func TestValidateOK(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateForegroundSlowerThanBackground(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Poll.Foreground = 2 * time.Minute
	cfg.Poll.Background = time.Minute
	if err := cfg.Validate(); err == nil {
		t.Fatal("foreground interval above background should fail validation")
	}
}

func TestValidateNegativeIntervals(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Poll.Foreground = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative poll interval should fail validation")
	}
}

func TestValidateMissingBaseURL(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Server.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty base URL should fail validation")
	}
}
