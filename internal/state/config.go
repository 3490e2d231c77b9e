package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/steviee/ytinu/internal/catalog"
)

const (
	// DefaultCatalogURL is the published catalog document.
	DefaultCatalogURL = catalog.DefaultURL

	// DefaultGameModsURL is the directory of per-game catalog documents.
	DefaultGameModsURL = catalog.DefaultGameModsURL
)

// Config represents the user configuration for ytinu.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
	Mods    ModsConfig    `yaml:"mods" json:"mods"`
	Updates UpdatesConfig `yaml:"updates" json:"updates"`
	History HistoryConfig `yaml:"history" json:"history"`
	TUI     TUIConfig     `yaml:"tui" json:"tui"`
	Backups BackupsConfig `yaml:"backups" json:"backups"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CatalogConfig holds where and how the mod catalog is fetched.
type CatalogConfig struct {
	URL         string        `yaml:"url" json:"url"`
	GameModsURL string        `yaml:"game_mods_url" json:"game_mods_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	// MaxSize caps a catalog response, in human readable units ("8MiB").
	MaxSize string `yaml:"max_size" json:"max_size"`
	// RateLimit is the number of catalog requests allowed per minute.
	RateLimit int `yaml:"rate_limit" json:"rate_limit"`
}

// ModsConfig holds mod listing preferences.
type ModsConfig struct {
	ShowDevMods bool `yaml:"show_dev_mods" json:"show_dev_mods"`
}

// UpdatesConfig holds manager update checks.
type UpdatesConfig struct {
	CheckForUpdates bool `yaml:"check_for_updates" json:"check_for_updates"`
}

// HistoryConfig holds the audit trail database settings.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Path overrides the database location. Empty uses the config directory.
	Path string `yaml:"path" json:"path"`
}

// BackupsConfig holds where state archives are kept.
type BackupsConfig struct {
	// Dir overrides the archive directory. Empty uses the config directory.
	Dir  string `yaml:"dir" json:"dir"`
	Keep int    `yaml:"keep" json:"keep"`
}

// TUIConfig holds TUI configuration.
type TUIConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval"`
	Theme           string        `yaml:"theme" json:"theme"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// File additionally writes logs to this path when set.
	File string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			URL:         DefaultCatalogURL,
			GameModsURL: DefaultGameModsURL,
			Timeout:     30 * time.Second,
			MaxSize:     "8MiB",
			RateLimit:   60,
		},
		Mods: ModsConfig{
			ShowDevMods: false,
		},
		Updates: UpdatesConfig{
			CheckForUpdates: true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		TUI: TUIConfig{
			RefreshInterval: 2 * time.Second,
			Theme:           "default",
		},
		Backups: BackupsConfig{
			Keep: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from path, or from the default config
// path when path is empty. Keys missing from the file keep their defaults.
// A missing file is created with defaults. A file that is not valid YAML is
// moved aside to path.corrupted and replaced with defaults.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(ctx, path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	//nolint:gosec // G304: config path is controlled by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backupPath, backupErr := QuarantineFile(path)
		if backupErr != nil {
			return nil, fmt.Errorf("config file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}

		cfg := DefaultConfig()
		if saveErr := SaveConfig(ctx, path, cfg); saveErr != nil {
			return nil, fmt.Errorf("config file was corrupted (backed up to %s), failed to save fresh config: %w (original error: %v)", backupPath, saveErr, err)
		}
		return cfg, nil
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveConfig validates cfg and writes it to path atomically.
func SaveConfig(_ context.Context, path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateURL(cfg.Catalog.URL); err != nil {
		return fmt.Errorf("invalid catalog url: %w", err)
	}
	if err := ValidateURL(cfg.Catalog.GameModsURL); err != nil {
		return fmt.Errorf("invalid catalog game_mods_url: %w", err)
	}
	if cfg.Catalog.Timeout < time.Second {
		return fmt.Errorf("catalog timeout must be >= 1s, got %v", cfg.Catalog.Timeout)
	}
	if _, err := ValidateByteSize(cfg.Catalog.MaxSize); err != nil {
		return fmt.Errorf("invalid catalog max_size: %w", err)
	}
	if cfg.Catalog.RateLimit < 1 {
		return fmt.Errorf("catalog rate_limit must be >= 1, got %d", cfg.Catalog.RateLimit)
	}

	if cfg.TUI.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("TUI refresh interval must be >= 100ms, got %v", cfg.TUI.RefreshInterval)
	}

	if cfg.Backups.Keep < 1 {
		return fmt.Errorf("backups keep must be >= 1, got %d", cfg.Backups.Keep)
	}

	if err := ValidateLogLevel(cfg.Logging.Level); err != nil {
		return err
	}

	return nil
}

// HistoryPath returns the configured history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	return GetHistoryPath()
}

// BackupsDir returns the configured archive directory.
func (c *Config) BackupsDir() (string, error) {
	if c.Backups.Dir != "" {
		return c.Backups.Dir, nil
	}
	return GetBackupsDir()
}

// CatalogMaxSize returns Catalog.MaxSize in bytes.
func (c *Config) CatalogMaxSize() int64 {
	n, err := ValidateByteSize(c.Catalog.MaxSize)
	if err != nil {
		return 0
	}
	return n
}
