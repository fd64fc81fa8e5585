// Package config loads the mentor application configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage driver names accepted in the config file.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config holds the mentor.toml settings. Credentials never live here;
// they come from the environment.
type Config struct {
	Chat    ChatConfig    `toml:"chat"`
	Outline OutlineConfig `toml:"outline"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
}

// ChatConfig governs conversational generation.
type ChatConfig struct {
	// Model is the generative model for chat replies.
	Model string `toml:"model"`

	// MaxOutputTokens bounds each reply.
	MaxOutputTokens int `toml:"max_output_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature"`
}

// OutlineConfig governs course outline generation.
type OutlineConfig struct {
	// Model is the generative model for outlines.
	Model string `toml:"model"`
}

// StorageConfig selects the identity/session backend.
type StorageConfig struct {
	// Driver is one of memory, file, sqlite.
	Driver string `toml:"driver"`

	// Path is the storage directory (file driver) or database file
	// (sqlite driver). Empty means the standard data directory.
	Path string `toml:"path"`
}

// UIConfig tunes the interactive surfaces.
type UIConfig struct {
	// LatencyMS delays account operations so pending states render.
	// Zero disables the simulation.
	LatencyMS int `toml:"latency_ms"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			Model:           "gemini-2.0-flash",
			MaxOutputTokens: 800,
			Temperature:     0.6,
		},
		Outline: OutlineConfig{
			Model: "gemini-2.0-flash",
		},
		Storage: StorageConfig{
			Driver: DriverFile,
		},
		UI: UIConfig{
			LatencyMS: 600,
		},
	}
}

// DefaultPath returns the standard config file location, e.g.
// ~/.config/mentor/mentor.toml on Linux.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, "mentor", "mentor.toml"), nil
}

// DefaultDataDir returns the standard location for storage drivers when
// storage.path is unset.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, "mentor", "data"), nil
}

// Load reads the config at path, layering it over defaults. A missing
// file yields the defaults; configuration is opt-in.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q: must be %s, %s, or %s",
			c.Storage.Driver, DriverMemory, DriverFile, DriverSQLite)
	}
	if c.Chat.MaxOutputTokens <= 0 {
		return fmt.Errorf("chat.max_output_tokens must be positive")
	}
	if c.UI.LatencyMS < 0 {
		return fmt.Errorf("ui.latency_ms must not be negative")
	}
	return nil
}

// Latency returns the simulated account-operation delay.
func (c *Config) Latency() time.Duration {
	return time.Duration(c.UI.LatencyMS) * time.Millisecond
}
