// Package config loads and persists the application configuration from
// a TOML file under the user's home directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Data directory configuration
	Data DataConfig `toml:"data"`

	// Remote catalog configuration
	Catalog CatalogConfig `toml:"catalog"`

	// Price history configuration
	History HistoryConfig `toml:"history"`

	// Backup configuration
	Backup BackupConfig `toml:"backup"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// DataConfig contains data directory settings.
type DataConfig struct {
	Dir         string `toml:"dir"`          // Root data directory ("" = ~/.duelkeeper)
	WatchFiles  bool   `toml:"watch_files"`  // Invalidate caches on file system events
	Collections string `toml:"collections"`  // Collections subdirectory name
	CatalogsDir string `toml:"catalogs_dir"` // Catalog snapshots subdirectory name
}

// CatalogConfig contains remote catalog settings.
type CatalogConfig struct {
	BaseURL      string   `toml:"base_url"`      // Card API endpoint ("" = default)
	Languages    []string `toml:"languages"`     // Catalog languages to sync
	Timeout      string   `toml:"timeout"`       // HTTP timeout (e.g., "30s")
	RateInterval string   `toml:"rate_interval"` // Minimum delay between requests
	MaxRetries   int      `toml:"max_retries"`   // Retries on busy responses (0 = none)
}

// HistoryConfig contains price history settings.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"` // Record price samples on sync
	DBFile  string `toml:"db_file"` // SQLite file name inside the data dir
}

// BackupConfig contains backup settings.
type BackupConfig struct {
	Dir     string `toml:"dir"`     // Backup directory ("" = <collections>/backups)
	Encrypt bool   `toml:"encrypt"` // Encrypt backups with a passphrase
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:         "",
			WatchFiles:  true,
			Collections: "collections",
			CatalogsDir: "catalogs",
		},
		Catalog: CatalogConfig{
			BaseURL:      "",
			Languages:    []string{"en"},
			Timeout:      "30s",
			RateInterval: "100ms",
			MaxRetries:   3,
		},
		History: HistoryConfig{
			Enabled: true,
			DBFile:  "price_history.db",
		},
		Backup: BackupConfig{
			Dir:     "",
			Encrypt: false,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".duelkeeper")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the default path. Returns the default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path. Returns the
// default config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Catalog.Timeout); err != nil {
		return fmt.Errorf("invalid catalog timeout %q: %w", c.Catalog.Timeout, err)
	}

	if _, err := time.ParseDuration(c.Catalog.RateInterval); err != nil {
		return fmt.Errorf("invalid rate interval %q: %w", c.Catalog.RateInterval, err)
	}

	if len(c.Catalog.Languages) == 0 {
		return fmt.Errorf("at least one catalog language required")
	}

	if c.Catalog.MaxRetries < 0 {
		return fmt.Errorf("catalog max retries cannot be negative: %d", c.Catalog.MaxRetries)
	}

	return nil
}

// DataDir returns the resolved root data directory.
func (c *Config) DataDir() (string, error) {
	if c.Data.Dir != "" {
		return c.Data.Dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".duelkeeper"), nil
}

// CollectionsDir returns the resolved collections directory.
func (c *Config) CollectionsDir() (string, error) {
	dataDir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, c.Data.Collections), nil
}

// CatalogsDir returns the resolved catalog snapshots directory.
func (c *Config) CatalogsDir() (string, error) {
	dataDir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, c.Data.CatalogsDir), nil
}

// HistoryDBPath returns the resolved price history database path.
func (c *Config) HistoryDBPath() (string, error) {
	dataDir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, c.History.DBFile), nil
}

// GetCatalogTimeout returns the catalog HTTP timeout as a duration.
func (c *Config) GetCatalogTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Catalog.Timeout)
}

// GetRateInterval returns the catalog rate interval as a duration.
func (c *Config) GetRateInterval() (time.Duration, error) {
	return time.ParseDuration(c.Catalog.RateInterval)
}
