// Manages data-directory configuration stored in config.json.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config stores the settings for one data directory.
// Loaded from config.json, created with defaults if missing.
type Config struct {
	// Codec selects the collection serialization: "json" or "yaml".
	Codec string `json:"codec"`

	// Verbose enables debug logging and the collection dump diagnostics.
	Verbose bool `json:"verbose"`

	// NotifyRatePerSec caps change-notification delivery. 0 means unlimited.
	// Consumed by embedders constructing a notification bus; the CLI
	// delivers no notifications.
	NotifyRatePerSec float64 `json:"notify_rate_per_sec"`

	// Backup configures git snapshots of the data directory.
	Backup BackupConfig `json:"backup"`
}

// BackupConfig configures the snapshot repository.
type BackupConfig struct {
	// Enabled turns on snapshot-on-change.
	Enabled bool `json:"enabled"`

	// AuthorName and AuthorEmail sign snapshot commits.
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Codec:            "json",
		NotifyRatePerSec: 0,
		Backup: BackupConfig{
			AuthorName:  "recstore",
			AuthorEmail: "recstore@localhost",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Codec {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown codec: %q", c.Codec)
	}
	if c.NotifyRatePerSec < 0 {
		return errors.New("notify_rate_per_sec must be non-negative")
	}
	return nil
}

// Load loads configuration from dataDir/config.json.
// Creates the file with defaults if it doesn't exist.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, "config.json")

	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir, not user input
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config.json: %w", err)
		}
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config.json: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config.json: %w", err)
	}
	return &cfg, nil
}

// Save saves configuration to dataDir/config.json.
func (c *Config) Save(dataDir string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dataDir, "config.json"), data, 0o644); err != nil { //nolint:gosec // G306: config holds no secrets
		return fmt.Errorf("failed to write config.json: %w", err)
	}
	return nil
}
