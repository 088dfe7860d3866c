package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Player   PlayerConfig   `toml:"player"`
	Member   MemberConfig   `toml:"member"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig contains playback engine settings.
//
// FontDirectory, UseWorkers, SoundBankURL and LayoutMode are passed through
// verbatim to the engine; the player does not interpret them.
type PlayerConfig struct {
	Engine          string `toml:"engine"`
	ProbeIntervalMS int    `toml:"probe_interval_ms"`
	ProbeAttempts   int    `toml:"probe_attempts"`
	WatchdogSeconds int    `toml:"watchdog_seconds"`
	FontDirectory   string `toml:"font_directory"`
	UseWorkers      bool   `toml:"use_workers"`
	SoundBankURL    string `toml:"sound_bank_url"`
	LayoutMode      string `toml:"layout_mode"`
}

// MemberConfig identifies the band member using this machine.
type MemberConfig struct {
	Name       string `toml:"name"`
	Instrument string `toml:"instrument"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
