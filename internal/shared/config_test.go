package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./bandassist.db" {
			t.Errorf("expected database path ./bandassist.db, got %s", config.Database.Path)
		}

		if config.Player.Engine != "practice" {
			t.Errorf("expected player engine practice, got %s", config.Player.Engine)
		}

		if config.Player.ProbeIntervalMS != 200 {
			t.Errorf("expected probe interval 200ms, got %d", config.Player.ProbeIntervalMS)
		}

		if config.Player.ProbeAttempts != 50 {
			t.Errorf("expected 50 probe attempts, got %d", config.Player.ProbeAttempts)
		}

		if config.Player.WatchdogSeconds != 15 {
			t.Errorf("expected 15s watchdog, got %d", config.Player.WatchdogSeconds)
		}

		if config.Member.Instrument != "Lead Guitar" {
			t.Errorf("expected member instrument Lead Guitar, got %s", config.Member.Instrument)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		content := `
[database]
path = "/tmp/band.db"

[player]
engine = "alphatab"
watchdog_seconds = 30

[member]
name = "alex"
instrument = "Bass"
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/tmp/band.db" {
			t.Errorf("expected database path /tmp/band.db, got %s", config.Database.Path)
		}

		if config.Player.Engine != "alphatab" {
			t.Errorf("expected engine alphatab, got %s", config.Player.Engine)
		}

		if config.Player.WatchdogSeconds != 30 {
			t.Errorf("expected 30s watchdog, got %d", config.Player.WatchdogSeconds)
		}

		if config.Member.Instrument != "Bass" {
			t.Errorf("expected instrument Bass, got %s", config.Member.Instrument)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("LoadConfig Malformed TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("[database\npath ="), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for malformed TOML")
		}
	})
}
