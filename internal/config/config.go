package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Environment variables that override the config file.
const (
	EnvDataDir  = "DOMAR_DATA_DIR"
	EnvDatabase = "DOMAR_DATABASE"
)

type Config struct {
	DataDir          string  `yaml:"data_dir"`
	Database         string  `yaml:"database"`
	AppealLinksCache string  `yaml:"appeal_links_cache"`
	NameAliases      string  `yaml:"name_aliases"`
	Scrape           Scrape  `yaml:"scrape"`
	Logging          Logging `yaml:"logging"`
}

type Scrape struct {
	Enabled            bool          `yaml:"enabled"`
	BatchSize          int           `yaml:"batch_size"`
	BatchDelay         time.Duration `yaml:"batch_delay"`
	Timeout            time.Duration `yaml:"timeout"`
	UserAgent          string        `yaml:"user_agent"`
	MinYear            int           `yaml:"min_year"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for domar.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "domar")
}

// DataDir returns the XDG data directory for domar.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "domar")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/domar/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'domar init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg, err := parse(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Database:         "verdicts.db",
		AppealLinksCache: "appeal_links.json",
		NameAliases:      "name_aliases.json",
		Scrape: Scrape{
			Enabled:    true,
			BatchSize:  10,
			BatchDelay: 200 * time.Millisecond,
			Timeout:    30 * time.Second,
			MinYear:    2018,
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadEnv reads KEY=value pairs from a .env file into the process
// environment without overriding variables that are already set. A
// missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from DOMAR_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return DataDir()
}

// DatabasePath returns the verdict database path. Relative paths are
// resolved against the data directory.
func (c *Config) DatabasePath() string {
	return c.inDataDir(c.Database, "verdicts.db")
}

// LinkCachePath returns the appeal link cache path.
func (c *Config) LinkCachePath() string {
	return c.inDataDir(c.AppealLinksCache, "appeal_links.json")
}

// AliasesPath returns the lawyer name alias table path.
func (c *Config) AliasesPath() string {
	return c.inDataDir(c.NameAliases, "name_aliases.json")
}

func (c *Config) inDataDir(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.GetDataDir(), path)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
