// Package daemon holds host-process configuration: API binding, economy
// tuning, and storage location. Config lives at ~/.hearth/config.toml;
// every field is optional and absent fields keep their defaults.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hearth-app/hearth/internal/domain"
	"github.com/hearth-app/hearth/internal/economy"
)

// Config is the full daemon configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Economy EconomyConfig `toml:"economy"`
	Storage StorageConfig `toml:"storage"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// EconomyConfig tunes the accrual engine. Durations are strings in
// time.ParseDuration syntax ("1s", "500ms", "2m").
type EconomyConfig struct {
	TickPeriod       string          `toml:"tick_period"`
	AutosaveInterval string          `toml:"autosave_interval"`
	Upgrades         []UpgradeConfig `toml:"upgrade"`
}

// UpgradeConfig is one entry of the upgrade table override.
type UpgradeConfig struct {
	ID        string `toml:"id"`
	Name      string `toml:"name"`
	Cost      int64  `toml:"cost"`
	Increment int64  `toml:"increment"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    7433,
			Metrics: true,
		},
		Economy: EconomyConfig{
			TickPeriod:       "1s",
			AutosaveInterval: "30s",
		},
		Storage: StorageConfig{
			Path: filepath.Join(homeDir(), ".hearth", "hearth.db"),
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".hearth", "config.toml")
}

// LoadConfig reads the TOML config at path, falling back to defaults for
// absent fields. A missing file is not an error — defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// TickPeriodDuration parses the accrual interval, defaulting to 1s.
func (c EconomyConfig) TickPeriodDuration() time.Duration {
	return parseDuration(c.TickPeriod, time.Second)
}

// AutosaveIntervalDuration parses the autosave interval, defaulting to 30s.
func (c EconomyConfig) AutosaveIntervalDuration() time.Duration {
	return parseDuration(c.AutosaveInterval, 30*time.Second)
}

// EngineConfig converts the daemon config into an engine config.
// An empty upgrade table keeps the engine's built-in defaults.
func (c Config) EngineConfig() economy.Config {
	cfg := economy.Config{
		TickPeriod:       c.Economy.TickPeriodDuration(),
		AutosaveInterval: c.Economy.AutosaveIntervalDuration(),
	}
	for _, u := range c.Economy.Upgrades {
		if u.ID == "" {
			continue
		}
		cfg.Upgrades = append(cfg.Upgrades, domain.UpgradeRecord{
			ID:        u.ID,
			Name:      u.Name,
			Cost:      u.Cost,
			Increment: u.Increment,
		})
	}
	return cfg
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
