package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Database != "verdicts.db" {
		t.Errorf("expected database 'verdicts.db', got %q", cfg.Database)
	}
	if !cfg.Scrape.Enabled {
		t.Error("expected scraping to be enabled")
	}
	if cfg.Scrape.BatchDelay != 200*time.Millisecond {
		t.Errorf("expected batch delay 200ms, got %s", cfg.Scrape.BatchDelay)
	}
	if cfg.Scrape.MinYear != 2018 {
		t.Errorf("expected min year 2018, got %d", cfg.Scrape.MinYear)
	}
	if cfg.Scrape.UserAgent == "" {
		t.Error("expected user agent to be set")
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
database: /srv/domar/dómar.db
scrape:
  enabled: false
  batch_size: 4
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Scrape.Enabled {
		t.Error("expected scraping to be disabled")
	}
	if cfg.Scrape.BatchSize != 4 {
		t.Errorf("expected batch size 4, got %d", cfg.Scrape.BatchSize)
	}
	if cfg.DatabasePath() != "/srv/domar/dómar.db" {
		t.Errorf("expected absolute database path, got %q", cfg.DatabasePath())
	}
	// Defaults should still be set for unspecified fields
	if cfg.Scrape.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %s", cfg.Scrape.Timeout)
	}
	if cfg.AppealLinksCache != "appeal_links.json" {
		t.Errorf("expected default link cache, got %q", cfg.AppealLinksCache)
	}
}

func TestParseInvalidConfig(t *testing.T) {
	if _, err := parse([]byte("scrape: [1, 2")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Scrape.BatchSize != 10 {
		t.Errorf("expected batch size 10 from file, got %d", cfg.Scrape.BatchSize)
	}

	resolved, err := ResolveConfigPath(path)
	if err != nil || resolved != path {
		t.Errorf("expected explicit path to resolve, got %q, %v", resolved, err)
	}
	if _, err := ResolveConfigPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
	if got := cfg.DatabasePath(); got != filepath.Join("/custom/path", "verdicts.db") {
		t.Errorf("unexpected database path %q", got)
	}
	if got := cfg.LinkCachePath(); got != filepath.Join("/custom/path", "appeal_links.json") {
		t.Errorf("unexpected link cache path %q", got)
	}
	if got := cfg.AliasesPath(); got != filepath.Join("/custom/path", "name_aliases.json") {
		t.Errorf("unexpected aliases path %q", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("DOMAR_DATA_DIR=/from/env\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvDatabase, "other.db")
	os.Unsetenv(EnvDataDir)

	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("failed to load env file: %v", err)
	}
	if err := LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("expected missing env file to be ignored, got %v", err)
	}

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.DataDir != "/from/env" {
		t.Errorf("expected data dir from .env, got %q", cfg.DataDir)
	}
	if cfg.DatabasePath() != filepath.Join("/from/env", "other.db") {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
}
