package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultTimezone is used when none is configured.
const DefaultTimezone = "America/Denver"

// Config holds all thenumber preferences. The budget itself lives in the
// database, not here.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Timezone           string `toml:"timezone" env:"THENUMBER_TIMEZONE"`
	RecentTransactions int    `toml:"recent_transactions" env:"THENUMBER_RECENT_TRANSACTIONS"`
}

// StorageConfig locates the ledger database.
type StorageConfig struct {
	DBPath string `toml:"db_path,omitempty" env:"THENUMBER_DB_PATH"`
}

// DaemonConfig holds background daemon settings.
type DaemonConfig struct {
	Addr        string `toml:"addr" env:"THENUMBER_DAEMON_ADDR"`
	IntervalSec int    `toml:"interval_sec" env:"THENUMBER_DAEMON_INTERVAL"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"THENUMBER_THEME"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"THENUMBER_LOG_LEVEL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Timezone:           DefaultTimezone,
			RecentTransactions: 10,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8787",
			IntervalSec: 60,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "thenumber")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "thenumber")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultDBPath returns the default ledger database location.
func DefaultDBPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "thenumber", "thenumber.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "thenumber", "thenumber.db")
}

// DBPath returns the configured database path or the default.
func (c Config) DBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return DefaultDBPath()
}

// Location resolves the configured timezone, falling back to the default
// and then to UTC.
func (c Config) Location() (*time.Location, error) {
	name := c.General.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// Interval returns the daemon refresh interval.
func (c Config) Interval() time.Duration {
	if c.Daemon.IntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.Daemon.IntervalSec) * time.Second
}

// Load reads the config file, returning defaults if it doesn't exist.
// THENUMBER_* environment variables override the file.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
